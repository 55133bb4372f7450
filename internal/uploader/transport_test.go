package uploader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/storage"

	"github.com/stretchr/testify/require"
)

func TestResumableStallAtZeroBytes(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		<-ctx.Done() // never moves a byte
		return ctx.Err()
	}
	u := New(Params{Store: store, StallWindow: 80 * time.Millisecond})

	data := []byte("payload")
	start := time.Now()
	err := u.attemptResumable(context.Background(), "posts/x.jpg", "image/jpeg", data)
	elapsed := time.Since(start)

	var stall *StallError
	require.ErrorAs(t, err, &stall)
	require.Equal(t, int64(0), stall.BytesTransferred)
	require.Equal(t, int64(len(data)), stall.TotalBytes)
	require.Contains(t, err.Error(), "stalled (0/7)")
	// Fired close to the window, not the transfer's own (infinite) duration.
	require.Less(t, elapsed, 2*time.Second)
	require.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
}

func TestResumableProgressResetsStallWindow(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		total := int64(len(data))
		// Each event arrives within the window but the whole transfer takes
		// several windows; advancing bytes must keep resetting the countdown.
		for sent := int64(1); sent <= total; sent++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(40 * time.Millisecond):
			}
			select {
			case progress <- storage.ProgressEvent{BytesTransferred: sent, TotalBytes: total}:
			default:
			}
		}
		store.put(objectKey, fakeObject{contentType: contentType, data: data})
		return nil
	}
	u := New(Params{Store: store, StallWindow: 100 * time.Millisecond})

	err := u.attemptResumable(context.Background(), "posts/x.jpg", "image/jpeg", []byte("12345678"))
	require.NoError(t, err)
	_, stored := store.get("posts/x.jpg")
	require.True(t, stored)
}

func TestResumableStallMidTransferKeepsSnapshot(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		select {
		case progress <- storage.ProgressEvent{BytesTransferred: 10, TotalBytes: int64(len(data))}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	u := New(Params{Store: store, StallWindow: 80 * time.Millisecond})

	err := u.attemptResumable(context.Background(), "posts/x.jpg", "image/jpeg", make([]byte, 100))

	var stall *StallError
	require.ErrorAs(t, err, &stall)
	require.Equal(t, int64(10), stall.BytesTransferred)
	require.Equal(t, int64(100), stall.TotalBytes)
	require.Contains(t, err.Error(), "stalled (10/100)")
}

func TestResumableRepeatedEventsWithoutAdvanceStall(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		// Heartbeats that never advance must not reset the countdown.
		ticker := time.NewTicker(30 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				select {
				case progress <- storage.ProgressEvent{BytesTransferred: 5, TotalBytes: int64(len(data))}:
				default:
				}
			}
		}
	}
	u := New(Params{Store: store, StallWindow: 120 * time.Millisecond})

	start := time.Now()
	err := u.attemptResumable(context.Background(), "posts/x.jpg", "image/jpeg", make([]byte, 50))

	var stall *StallError
	require.ErrorAs(t, err, &stall)
	require.Equal(t, int64(5), stall.BytesTransferred)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestResumableHardCap(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		total := int64(len(data))
		var sent int64
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(20 * time.Millisecond):
				sent++
				select {
				case progress <- storage.ProgressEvent{BytesTransferred: sent, TotalBytes: total}:
				default:
				}
			}
		}
	}
	// Steady progress defeats the stall window, so only the hard cap can stop it.
	u := New(Params{Store: store, StallWindow: 200 * time.Millisecond, HardCap: 150 * time.Millisecond})

	err := u.attemptResumable(context.Background(), "posts/x.jpg", "image/jpeg", make([]byte, 1<<20))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Contains(t, err.Error(), "timed out")
}

func TestResumableProviderErrorCarriesCode(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		return &codedErr{code: "AccessDenied", msg: "access denied"}
	}
	u := New(Params{Store: store, StallWindow: time.Second})

	err := u.attemptResumable(context.Background(), "posts/x.jpg", "image/jpeg", []byte("data"))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, "AccessDenied", transportErr.Code)
	require.Contains(t, err.Error(), "(AccessDenied)")
}

func TestSingleShotWrapsProviderError(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("connection reset")
	u := New(Params{Store: store})

	err := u.attemptSingleShot(context.Background(), "posts/x.jpg", "image/jpeg", []byte("data"))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Empty(t, transportErr.Code)
}

func TestRESTRequiresTokenSource(t *testing.T) {
	u := New(Params{Store: newFakeStore()})

	_, err := u.attemptREST(context.Background(), "posts/x.jpg", "image/jpeg", []byte("data"))
	require.ErrorIs(t, err, ErrNotSignedIn)
}

func TestRESTUploadsWithBearerAndToken(t *testing.T) {
	store := newFakeStore()
	u := New(Params{
		Store: store,
		Tokens: TokenSourceFunc(func(ctx context.Context) (string, error) {
			return "bearer-abc", nil
		}),
	})

	url, err := u.attemptREST(context.Background(), "posts/x.jpg", "image/jpeg", []byte("data"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/posts/x.jpg", url)

	obj, ok := store.get("posts/x.jpg")
	require.True(t, ok)
	require.Equal(t, "bearer-abc", obj.bearerToken)
	require.NotEmpty(t, obj.downloadToken)
}

func TestRESTFallsBackToConstructedURL(t *testing.T) {
	store := newFakeStore()
	store.publicURLErr = errors.New("still propagating")
	u := New(Params{
		Store: store,
		Tokens: TokenSourceFunc(func(ctx context.Context) (string, error) {
			return "bearer-abc", nil
		}),
	})

	url, err := u.attemptREST(context.Background(), "posts/x.jpg", "image/jpeg", []byte("data"))
	require.NoError(t, err)

	obj, ok := store.get("posts/x.jpg")
	require.True(t, ok)
	require.Equal(t, "https://cdn.test/posts/x.jpg?token="+obj.downloadToken, url)
}

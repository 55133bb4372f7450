package uploader

import (
	"context"
	"encoding/base64"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/storage"

	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, w, h))
}

func TestUploadHappyPath(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	res, err := u.UploadWithResult(context.Background(), DataURL(pngDataURL(t, 100, 80)), "posts")
	require.NoError(t, err)

	require.Regexp(t, regexp.MustCompile(`^posts/\d+-[0-9a-f]{8}\.png$`), res.ObjectPath)
	require.Equal(t, "https://cdn.test/"+res.ObjectPath, res.DownloadURL)
	require.Equal(t, "image/png", res.ContentType)

	obj, ok := store.get(res.ObjectPath)
	require.True(t, ok)
	require.Equal(t, "image/png", obj.contentType)
	require.Equal(t, res.Size, int64(len(obj.data)))
}

func TestUploadDefaultsFolderToPosts(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	res, err := u.UploadWithResult(context.Background(), DataURL(pngDataURL(t, 10, 10)), "")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^posts/`), res.ObjectPath)
}

func TestUploadRejectsOversizedImageBeforeTransport(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	// Declared an image but not decodable, so transcoding cannot shrink it.
	big := make([]byte, maxImageBytes+1)
	_, err := u.Upload(context.Background(), BinaryBlob(big, "image/jpeg", "big.jpg"), "posts")

	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, "Image", policyErr.Kind)
	// Policy rejection happens before any transport call.
	require.Zero(t, store.count(&store.resumableCalls))
	require.Zero(t, store.count(&store.singleShotCalls))
}

func TestUploadOversizedDecodableImageIsDownscaledThrough(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	// Under the size cap but over the dimension cap: transcoded, not rejected.
	res, err := u.UploadWithResult(context.Background(), DataURL(pngDataURL(t, 3200, 1600)), "posts")
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", res.ContentType)
	require.Regexp(t, regexp.MustCompile(`\.jpg$`), res.ObjectPath)
}

func TestUploadProfilesFolderRejectsVideo(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	_, err := u.Upload(context.Background(), BinaryBlob([]byte("videobytes"), "video/mp4", "clip.mp4"), "profiles")
	require.ErrorIs(t, err, ErrProfileNeedsImage)
	require.Zero(t, store.count(&store.resumableCalls))
}

func TestUploadRejectsNonMedia(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	_, err := u.Upload(context.Background(), BinaryBlob([]byte("%PDF-1.4"), "application/pdf", "doc.pdf"), "posts")
	require.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestUploadVideoPassesThroughUntouched(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	videoBytes := []byte("fake mp4 payload")
	res, err := u.UploadWithResult(context.Background(), BinaryBlob(videoBytes, "video/mp4", "clip.mp4"), "posts")
	require.NoError(t, err)
	require.Equal(t, "video/mp4", res.ContentType)

	obj, _ := store.get(res.ObjectPath)
	require.Equal(t, videoBytes, obj.data)
}

func TestUploadZeroByteStallFallsBackToSingleShot(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		<-ctx.Done()
		return ctx.Err()
	}
	u := New(Params{
		Store:        store,
		StallWindow:  60 * time.Millisecond,
		Capabilities: Capabilities{SingleShotFallback: true},
	})

	url, err := u.Upload(context.Background(), DataURL(pngDataURL(t, 10, 10)), "posts")
	require.NoError(t, err)
	require.NotEmpty(t, url)
	require.Equal(t, 1, store.count(&store.resumableCalls))
	require.Equal(t, 1, store.count(&store.singleShotCalls))
}

func TestUploadStallWithProgressDoesNotFallBack(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		select {
		case progress <- storage.ProgressEvent{BytesTransferred: 3, TotalBytes: int64(len(data))}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	u := New(Params{
		Store:        store,
		StallWindow:  60 * time.Millisecond,
		Capabilities: Capabilities{SingleShotFallback: true},
	})

	_, err := u.Upload(context.Background(), DataURL(pngDataURL(t, 10, 10)), "posts")

	// Bytes moved before the stall, so the narrow retry condition does not hold.
	var stall *StallError
	require.ErrorAs(t, err, &stall)
	require.Equal(t, int64(3), stall.BytesTransferred)
	require.Zero(t, store.count(&store.singleShotCalls))
}

func TestUploadZeroByteStallWithoutCapabilitySurfaces(t *testing.T) {
	store := newFakeStore()
	store.resumableFn = func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
		<-ctx.Done()
		return ctx.Err()
	}
	u := New(Params{Store: store, StallWindow: 60 * time.Millisecond})

	_, err := u.Upload(context.Background(), DataURL(pngDataURL(t, 10, 10)), "posts")

	var stall *StallError
	require.ErrorAs(t, err, &stall)
	require.Equal(t, int64(0), stall.BytesTransferred)
	require.Zero(t, store.count(&store.singleShotCalls))
}

func TestUploadURLResolutionFailureIsTerminal(t *testing.T) {
	store := newFakeStore()
	store.publicURLErr = errors.New("provider unavailable")
	u := New(Params{Store: store})

	_, err := u.Upload(context.Background(), DataURL(pngDataURL(t, 10, 10)), "posts")

	var urlErr *URLResolutionError
	require.ErrorAs(t, err, &urlErr)
	require.NotEmpty(t, urlErr.ObjectPath)
}

func TestUploadForceRESTRoutesThroughREST(t *testing.T) {
	store := newFakeStore()
	u := New(Params{
		Store: store,
		Tokens: TokenSourceFunc(func(ctx context.Context) (string, error) {
			return "bearer-xyz", nil
		}),
		Capabilities: Capabilities{RESTFallback: true, ForceREST: true},
	})

	res, err := u.UploadWithResult(context.Background(), DataURL(pngDataURL(t, 10, 10)), "posts")
	require.NoError(t, err)
	require.Equal(t, 1, store.count(&store.restCalls))
	require.Zero(t, store.count(&store.resumableCalls))

	obj, ok := store.get(res.ObjectPath)
	require.True(t, ok)
	require.Equal(t, "bearer-xyz", obj.bearerToken)
}

func TestUploadBatchPreservesOrder(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	srcs := []SourceReference{
		DataURL(pngDataURL(t, 10, 10)),
		DataURL(pngDataURL(t, 20, 20)),
		DataURL(pngDataURL(t, 30, 30)),
	}

	urls, err := u.UploadBatch(context.Background(), srcs, "posts")
	require.NoError(t, err)
	require.Len(t, urls, 3)
	for _, url := range urls {
		require.Regexp(t, regexp.MustCompile(`^https://cdn\.test/posts/`), url)
	}
}

func TestUploadBatchFailFast(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	srcs := []SourceReference{
		DataURL(pngDataURL(t, 10, 10)),
		DataURL("not a data url"),
		DataURL(pngDataURL(t, 30, 30)),
	}

	urls, err := u.UploadBatch(context.Background(), srcs, "posts")
	require.Error(t, err)
	require.Nil(t, urls)
	require.Contains(t, err.Error(), "upload 2 of 3")
	// The third source was never attempted.
	require.Equal(t, 1, store.count(&store.resumableCalls))
}

func TestProbeDisabledWithoutDiagnostics(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store})

	url, err := u.Probe(context.Background())
	require.NoError(t, err)
	require.Empty(t, url)
	require.Zero(t, store.count(&store.resumableCalls))
}

func TestProbeUploadsTinyPNG(t *testing.T) {
	store := newFakeStore()
	u := New(Params{Store: store, Diagnostics: Diagnostics{Enabled: true}})

	url, err := u.Probe(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, url)
	require.Equal(t, 1, store.count(&store.resumableCalls))
}

package uploader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/storage"

	"github.com/google/uuid"
)

// Safety-net ceiling for the non-resumable strategies, which have no
// progress events to supervise.
const veryHighUploadTimeout = 30 * time.Minute

// Capabilities describes which transport strategies the runtime supports.
// Resolved once at startup and injected, so strategy selection branches on
// explicit flags rather than platform probes.
type Capabilities struct {
	// SingleShotFallback permits retrying with a single-shot upload when a
	// resumable attempt stalls at exactly zero bytes transferred. That
	// signature indicates the resumable primitive never started moving data;
	// any other failure surfaces directly to preserve error fidelity.
	SingleShotFallback bool

	// RESTFallback permits the bearer-token REST strategy.
	RESTFallback bool

	// ForceREST routes every upload through the REST strategy. Diagnostic
	// escape hatch for environments with broken resumable uploads.
	ForceREST bool
}

// attemptResumable runs the chunked upload under the stall supervisor: a
// countdown starts at upload start and resets on every progress event that
// advances bytesTransferred. If it elapses with no forward progress the
// in-flight transfer is cancelled and a StallError is raised with the last
// observed snapshot.
func (u *Uploader) attemptResumable(ctx context.Context, objectPath, contentType string, data []byte) error {
	u.diag.log("attempt:start", "method", "resumable", "objectPath", objectPath)
	t0 := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan storage.ProgressEvent, 64)
	done := make(chan error, 1)
	go func() {
		done <- u.store.UploadResumable(runCtx, objectPath, contentType, data, progress)
	}()

	stallTimer := time.NewTimer(u.stallWindow)
	defer stallTimer.Stop()

	var hardC <-chan time.Time
	if u.hardCap > 0 {
		hardTimer := time.NewTimer(u.hardCap)
		defer hardTimer.Stop()
		hardC = hardTimer.C
	}

	last := storage.ProgressEvent{TotalBytes: int64(len(data))}
	for {
		select {
		case err := <-done:
			if err != nil {
				u.logAttemptError("resumable", objectPath, err, t0)
				return normalizeTransportErr(err)
			}
			u.diag.log("attempt:done", "method", "resumable", "objectPath", objectPath, "elapsed", time.Since(t0))
			return nil

		case ev := <-progress:
			u.diag.log("progress",
				"bytesTransferred", ev.BytesTransferred,
				"totalBytes", ev.TotalBytes,
				"pct", percent(ev),
			)
			if ev.BytesTransferred > last.BytesTransferred {
				if !stallTimer.Stop() {
					select {
					case <-stallTimer.C:
					default:
					}
				}
				stallTimer.Reset(u.stallWindow)
			}
			last = ev

		case <-stallTimer.C:
			cancel()
			<-done // wait for the transport to unwind
			stallErr := &StallError{BytesTransferred: last.BytesTransferred, TotalBytes: last.TotalBytes}
			u.diag.log("stall",
				"window", u.stallWindow,
				"lastBytesTransferred", last.BytesTransferred,
				"totalBytes", last.TotalBytes,
			)
			return stallErr

		case <-hardC:
			cancel()
			<-done
			u.diag.log("timeout", "hardCap", u.hardCap, "bytesTransferred", last.BytesTransferred)
			return &TransportError{Err: fmt.Errorf("resumable upload timed out (%d/%d)", last.BytesTransferred, last.TotalBytes)}
		}
	}
}

// attemptSingleShot uploads the whole payload in one request, bounded by the
// very-high absolute timeout rather than progress supervision.
func (u *Uploader) attemptSingleShot(ctx context.Context, objectPath, contentType string, data []byte) error {
	u.diag.log("attempt:start", "method", "single-shot", "objectPath", objectPath)
	t0 := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, veryHighUploadTimeout)
	defer cancel()

	if err := u.store.Upload(runCtx, objectPath, contentType, data); err != nil {
		u.logAttemptError("single-shot", objectPath, err, t0)
		return normalizeTransportErr(err)
	}
	u.diag.log("attempt:done", "method", "single-shot", "objectPath", objectPath, "elapsed", time.Since(t0))
	return nil
}

// attemptREST pushes the payload through the provider's raw HTTP endpoint
// with a fresh bearer token, then resolves the download URL itself: the
// canonical call first, falling back to the token-constructed URL when the
// canonical call fails (e.g. propagation delay right after upload).
func (u *Uploader) attemptREST(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	if u.tokens == nil {
		return "", ErrNotSignedIn
	}
	bearer, err := u.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("uploader: identity token: %w", err)
	}

	u.diag.log("attempt:start", "method", "rest", "objectPath", objectPath)
	t0 := time.Now()

	downloadToken := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString())

	runCtx, cancel := context.WithTimeout(ctx, veryHighUploadTimeout)
	defer cancel()

	if err := u.store.UploadREST(runCtx, objectPath, contentType, bearer, downloadToken, data); err != nil {
		u.logAttemptError("rest", objectPath, err, t0)
		return "", normalizeTransportErr(err)
	}

	// Canonical URL resolution first.
	if downloadURL, err := u.store.PublicURL(ctx, objectPath); err == nil {
		u.diag.log("attempt:done", "method", "rest", "objectPath", objectPath, "downloadURL", downloadURL, "elapsed", time.Since(t0))
		return downloadURL, nil
	}

	if downloadURL := u.store.ObjectURL(objectPath, downloadToken); downloadURL != "" {
		u.diag.log("attempt:done", "method", "rest", "objectPath", objectPath, "downloadURL", downloadURL, "elapsed", time.Since(t0))
		return downloadURL, nil
	}

	return "", &URLResolutionError{ObjectPath: objectPath, Err: fmt.Errorf("no download URL or token available")}
}

func (u *Uploader) logAttemptError(method, objectPath string, err error, t0 time.Time) {
	code := ""
	var coded errorCoder
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	u.diag.log("attempt:error",
		"method", method,
		"objectPath", objectPath,
		"code", code,
		"message", err.Error(),
		"elapsed", time.Since(t0),
	)
}

func percent(ev storage.ProgressEvent) int {
	if ev.TotalBytes <= 0 {
		return 0
	}
	return int(ev.BytesTransferred * 100 / ev.TotalBytes)
}

package uploader

import (
	"errors"
	"fmt"
)

// --- Error Definitions ---
var (
	// ErrEmptyPayload is returned when a source reference resolves to zero bytes.
	ErrEmptyPayload = errors.New("uploader: read returned empty payload (0 bytes)")

	// ErrProfileNeedsImage rejects non-image payloads destined for a profiles folder.
	ErrProfileNeedsImage = errors.New("profile uploads must be an image")

	// ErrUnsupportedKind rejects payloads that are neither image nor video.
	ErrUnsupportedKind = errors.New("please select an image or video file")

	// ErrNotSignedIn is returned by the REST strategy when no identity token is available.
	ErrNotSignedIn = errors.New("uploader: not signed in")
)

// SourceReadError wraps failures turning a source reference into bytes.
// TimedOut distinguishes a read timeout from a generic fetch failure.
type SourceReadError struct {
	TimedOut bool
	Err      error
}

func (e *SourceReadError) Error() string {
	if e.TimedOut {
		return "uploader: source read timed out"
	}
	return fmt.Sprintf("uploader: failed to read source: %v", e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// PolicyError is a client-side size cap violation. The message mirrors what
// the UI shows the user: measured size, the cap, and whether the subject is
// an image or a video.
type PolicyError struct {
	Kind           string // "Image" or "Video"
	SizeBytes      int64
	MaxBytes       int64
	AfterTranscode bool
}

func (e *PolicyError) Error() string {
	if e.AfterTranscode {
		return fmt.Sprintf("%s too large after processing (%sMB). Max allowed is %sMB.",
			e.Kind, mbString(e.SizeBytes), mbString(e.MaxBytes))
	}
	return fmt.Sprintf("%s too large (%sMB). Max allowed is %sMB.",
		e.Kind, mbString(e.SizeBytes), mbString(e.MaxBytes))
}

// StallError is raised when a resumable upload makes no forward progress
// within the stall window. It embeds the last observed transfer snapshot.
type StallError struct {
	BytesTransferred int64
	TotalBytes       int64
}

func (e *StallError) Error() string {
	return fmt.Sprintf("uploader: resumable upload stalled (%d/%d)", e.BytesTransferred, e.TotalBytes)
}

// TransportError is any other provider-reported failure. The provider error
// code, when present, is appended in parentheses so callers can render one
// consistent failure message.
type TransportError struct {
	Code string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("uploader: upload failed: %v (%s)", e.Err, e.Code)
	}
	return fmt.Sprintf("uploader: upload failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// URLResolutionError means bytes were stored but no public URL could be
// produced. A caller without a URL cannot finish its flow, so this is a
// hard failure despite the successful write.
type URLResolutionError struct {
	ObjectPath string
	Err        error
}

func (e *URLResolutionError) Error() string {
	return fmt.Sprintf("uploader: upload succeeded but no download URL could be resolved for %q: %v", e.ObjectPath, e.Err)
}

func (e *URLResolutionError) Unwrap() error { return e.Err }

// errorCoder matches provider errors that carry a short machine code
// (the AWS SDK's smithy.APIError satisfies this).
type errorCoder interface {
	ErrorCode() string
}

// normalizeTransportErr attaches the provider error code when one is present.
func normalizeTransportErr(err error) error {
	if err == nil {
		return nil
	}
	var coded errorCoder
	if errors.As(err, &coded) {
		return &TransportError{Code: coded.ErrorCode(), Err: err}
	}
	return &TransportError{Err: err}
}

package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned download URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ProgressEvent is emitted by a resumable upload as bytes move.
type ProgressEvent struct {
	BytesTransferred int64
	TotalBytes       int64
}

// ObjectStore defines the interface for object storage operations consumed
// by the upload pipeline.
//
// UploadResumable implementations send progress events with non-blocking
// sends: a slow consumer may miss intermediate events but never blocks the
// transfer. The caller owns the channel and must not close it before
// UploadResumable returns.
type ObjectStore interface {
	// UploadResumable stores data in chunks, emitting a progress event after
	// each chunk. Cancelling ctx aborts the in-flight upload and cleans up
	// any partial object state.
	UploadResumable(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- ProgressEvent) error

	// Upload stores data in a single request.
	Upload(ctx context.Context, objectKey, contentType string, data []byte) error

	// UploadREST stores data through the provider's raw HTTP endpoint using a
	// bearer identity token, tagging the object with a download token that
	// authorizes public reads via ObjectURL.
	UploadREST(ctx context.Context, objectKey, contentType, bearerToken, downloadToken string, data []byte) error

	// PublicURL resolves a dereferenceable download URL for a stored object.
	PublicURL(ctx context.Context, objectKey string) (string, error)

	// ObjectURL constructs the provider's public-URL template from the bucket,
	// object key and a download token, without calling the provider.
	ObjectURL(objectKey, downloadToken string) string

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error

	// Bucket reports the configured bucket name.
	Bucket() string
}

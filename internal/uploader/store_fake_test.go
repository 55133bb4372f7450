package uploader

import (
	"context"
	"fmt"
	"sync"

	"github.com/calebc9298-pixel/fencepost/internal/storage"
)

// fakeObject is a stored payload plus the metadata the fake captured with it.
type fakeObject struct {
	contentType   string
	data          []byte
	bearerToken   string
	downloadToken string
}

// fakeStore is an in-memory ObjectStore with per-call hooks so tests can
// script transport behavior (stalls, partial progress, provider errors).
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]fakeObject

	resumableCalls  int
	singleShotCalls int
	restCalls       int

	// resumableFn, when set, replaces the default instantly-successful
	// resumable transfer.
	resumableFn func(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error

	uploadErr    error
	publicURLErr error
	objectURL    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]fakeObject{}}
}

func (f *fakeStore) put(objectKey string, obj fakeObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey] = obj
}

func (f *fakeStore) get(objectKey string) (fakeObject, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[objectKey]
	return obj, ok
}

func (f *fakeStore) count(which *int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *which
}

func (f *fakeStore) UploadResumable(ctx context.Context, objectKey, contentType string, data []byte, progress chan<- storage.ProgressEvent) error {
	f.mu.Lock()
	f.resumableCalls++
	fn := f.resumableFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, objectKey, contentType, data, progress)
	}

	total := int64(len(data))
	select {
	case progress <- storage.ProgressEvent{BytesTransferred: total, TotalBytes: total}:
	default:
	}
	f.put(objectKey, fakeObject{contentType: contentType, data: data})
	return nil
}

func (f *fakeStore) Upload(ctx context.Context, objectKey, contentType string, data []byte) error {
	f.mu.Lock()
	f.singleShotCalls++
	err := f.uploadErr
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.put(objectKey, fakeObject{contentType: contentType, data: data})
	return nil
}

func (f *fakeStore) UploadREST(ctx context.Context, objectKey, contentType, bearerToken, downloadToken string, data []byte) error {
	f.mu.Lock()
	f.restCalls++
	err := f.uploadErr
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.put(objectKey, fakeObject{
		contentType:   contentType,
		data:          data,
		bearerToken:   bearerToken,
		downloadToken: downloadToken,
	})
	return nil
}

func (f *fakeStore) PublicURL(ctx context.Context, objectKey string) (string, error) {
	f.mu.Lock()
	err := f.publicURLErr
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	if _, ok := f.get(objectKey); !ok {
		return "", fmt.Errorf("object %q not stored", objectKey)
	}
	return "https://cdn.test/" + objectKey, nil
}

func (f *fakeStore) ObjectURL(objectKey, downloadToken string) string {
	if f.objectURL != "" {
		return f.objectURL
	}
	return fmt.Sprintf("https://cdn.test/%s?token=%s", objectKey, downloadToken)
}

func (f *fakeStore) DeleteObject(ctx context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectKey)
	return nil
}

func (f *fakeStore) Bucket() string { return "test-bucket" }

// codedErr mimics a provider error carrying a machine code.
type codedErr struct {
	code string
	msg  string
}

func (e *codedErr) Error() string     { return e.msg }
func (e *codedErr) ErrorCode() string { return e.code }

// Package uploader implements the client-side media upload pipeline: it
// normalizes heterogeneous source references into a binary payload, enforces
// size/kind policy, downscales oversized images, uploads through one of
// several transport strategies under a stall-detection supervisor, and
// resolves a public download URL for the stored object.
package uploader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultStallWindow is how long a resumable upload may go without forward
// progress before it is cancelled. Overridable via config (UPLOAD_STALL_MS).
const DefaultStallWindow = 20 * time.Second

// DefaultFetchTimeout bounds reads of remote source URIs.
const DefaultFetchTimeout = 60 * time.Second

// TokenSource issues a fresh bearer token for the current signed-in identity.
// Consumed only by the REST upload strategy.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Diagnostics is the pipeline's debug log sink. When Enabled is false the
// pipeline emits nothing at all.
type Diagnostics struct {
	Enabled bool
	Logger  *log.Logger
}

func (d Diagnostics) log(event string, keyvals ...interface{}) {
	if !d.Enabled || d.Logger == nil {
		return
	}
	d.Logger.Info(event, keyvals...)
}

// Params configures a new Uploader. Store is required; everything else has
// a usable default.
type Params struct {
	Store        storage.ObjectStore
	Tokens       TokenSource // required only when Capabilities enable REST
	Capabilities Capabilities
	StallWindow  time.Duration
	HardCap      time.Duration // optional absolute ceiling on resumable attempts; 0 disables
	FetchTimeout time.Duration
	HTTPClient   *http.Client
	Diagnostics  Diagnostics
}

// Uploader runs the upload pipeline. Safe for concurrent use; each call is
// independent and holds no shared mutable state.
type Uploader struct {
	store        storage.ObjectStore
	tokens       TokenSource
	caps         Capabilities
	stallWindow  time.Duration
	hardCap      time.Duration
	fetchTimeout time.Duration
	httpClient   *http.Client
	diag         Diagnostics
}

// New creates an Uploader from Params, applying defaults.
func New(p Params) *Uploader {
	if p.Store == nil {
		panic("uploader: Params.Store is required")
	}
	if p.StallWindow <= 0 {
		p.StallWindow = DefaultStallWindow
	}
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = DefaultFetchTimeout
	}
	if p.HTTPClient == nil {
		p.HTTPClient = &http.Client{}
	}
	return &Uploader{
		store:        p.Store,
		tokens:       p.Tokens,
		caps:         p.Capabilities,
		stallWindow:  p.StallWindow,
		hardCap:      p.HardCap,
		fetchTimeout: p.FetchTimeout,
		httpClient:   p.HTTPClient,
		diag:         p.Diagnostics,
	}
}

// Result is what a successful pipeline run produced, for callers that want
// to record the upload alongside the URL.
type Result struct {
	DownloadURL string
	ObjectPath  string
	ContentType string
	Size        int64
}

// Upload runs the full pipeline for one source reference and returns the
// public download URL of the stored object.
func (u *Uploader) Upload(ctx context.Context, src SourceReference, folder string) (string, error) {
	res, err := u.UploadWithResult(ctx, src, folder)
	if err != nil {
		return "", err
	}
	return res.DownloadURL, nil
}

// UploadWithResult is Upload plus the object metadata of the stored payload.
func (u *Uploader) UploadWithResult(ctx context.Context, src SourceReference, folder string) (*Result, error) {
	if folder == "" {
		folder = "posts"
	}
	t0 := time.Now()
	u.diag.log("start", "folder", folder)

	// 1. Normalize the source into bytes.
	p, err := u.normalize(ctx, src)
	if err != nil {
		return nil, err
	}

	// 2. Policy gate before any expensive work.
	pol := policyForFolder(folder)
	contentType := inferContentType(p)
	u.diag.log("input",
		"originalSize", p.size(),
		"inferredType", contentType,
		"ruleMaxMb", mbString(pol.ruleMaxBytes),
	)
	if err := checkKind(pol, contentType); err != nil {
		return nil, err
	}
	if err := checkSize(contentType, p.size(), false); err != nil {
		u.diag.log("reject:size", "size", p.size(), "folder", folder)
		return nil, err
	}
	p.contentType = contentType

	// 3. Downscale oversized images; videos pass through unchanged.
	if isImageContentType(p.contentType) {
		before := p.size()
		u.downscaleImage(p)
		u.diag.log("sizes", "originalSize", before, "finalSize", p.size())
	}

	// 4. Second gate: downsampling may not have helped enough.
	if err := checkSize(p.contentType, p.size(), true); err != nil {
		u.diag.log("reject:size", "size", p.size(), "folder", folder, "phase", "after-transform")
		return nil, err
	}

	// 5. Unique object path; never reused, never awaited from the server.
	objectPath := fmt.Sprintf("%s/%d-%s.%s",
		folder, time.Now().UnixMilli(), shortToken(), extForContentType(p.contentType))
	u.diag.log("object", "objectPath", objectPath, "contentType", p.contentType, "size", p.size())

	// 6. Transport. The REST strategy resolves its own URL.
	if u.caps.ForceREST && u.caps.RESTFallback {
		downloadURL, err := u.attemptREST(ctx, objectPath, p.contentType, p.bytes)
		if err != nil {
			return nil, err
		}
		u.diag.log("overall:elapsed", "ms", time.Since(t0).Milliseconds())
		return &Result{DownloadURL: downloadURL, ObjectPath: objectPath, ContentType: p.contentType, Size: p.size()}, nil
	}

	err = u.attemptResumable(ctx, objectPath, p.contentType, p.bytes)
	if err != nil {
		var stall *StallError
		if errors.As(err, &stall) && stall.BytesTransferred == 0 && u.caps.SingleShotFallback {
			// The resumable primitive never started moving data. This exact
			// signature is the only case where retrying is safe; broader retry
			// would mask genuine auth and network failures.
			u.diag.log("fallback", "from", "resumable", "to", "single-shot", "trigger", "stalled-at-zero")
			err = u.attemptSingleShot(ctx, objectPath, p.contentType, p.bytes)
		}
	}
	if err != nil {
		return nil, err
	}

	// 7. Resolve the public URL. Bytes stored without a URL is still a failure.
	downloadURL, err := u.store.PublicURL(ctx, objectPath)
	if err != nil {
		return nil, &URLResolutionError{ObjectPath: objectPath, Err: err}
	}
	if downloadURL == "" {
		return nil, &URLResolutionError{ObjectPath: objectPath, Err: errors.New("provider returned empty URL")}
	}

	u.diag.log("done", "objectPath", objectPath, "downloadURL", downloadURL)
	u.diag.log("overall:elapsed", "ms", time.Since(t0).Milliseconds())
	return &Result{DownloadURL: downloadURL, ObjectPath: objectPath, ContentType: p.contentType, Size: p.size()}, nil
}

// UploadBatch uploads sources sequentially, one fully resolved before the
// next begins. Output URLs preserve input order. The first failure aborts the
// batch: callers get either every URL or an error, never a partial list.
func (u *Uploader) UploadBatch(ctx context.Context, srcs []SourceReference, folder string) ([]string, error) {
	urls := make([]string, 0, len(srcs))
	for i, src := range srcs {
		downloadURL, err := u.Upload(ctx, src, folder)
		if err != nil {
			return nil, fmt.Errorf("upload %d of %d: %w", i+1, len(srcs), err)
		}
		urls = append(urls, downloadURL)
	}
	return urls, nil
}

// A 1x1 transparent PNG used by the connectivity probe.
const tinyPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mP8/wIAAgMBApGxq6QAAAAASUVORK5CYII="

// Probe uploads a tiny PNG through the resumable path to validate storage
// connectivity. Only active when diagnostics are enabled.
func (u *Uploader) Probe(ctx context.Context) (string, error) {
	if !u.diag.Enabled {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(tinyPNGBase64)
	if err != nil {
		return "", err
	}
	return u.Upload(ctx, BinaryBlob(data, "image/png", "probe.png"), "posts")
}

// shortToken is the random component of an object path; paired with a
// millisecond timestamp it makes collisions implausible.
func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

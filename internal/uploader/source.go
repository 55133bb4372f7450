package uploader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

// sourceKind tags the variants of SourceReference.
type sourceKind int

const (
	kindTextURI sourceKind = iota
	kindDataURL
	kindObjectHandle
	kindBinaryBlob
)

// SourceReference is the caller-supplied handle to the media being uploaded.
// Exactly one representation is populated; construct via TextURI, DataURL,
// ObjectHandle or BinaryBlob.
type SourceReference struct {
	kind sourceKind
	uri  string
	data []byte
	mime string
	name string
}

// TextURI references media by URI: http(s) URL, file:// URL, or a local path.
func TextURI(uri string) SourceReference {
	return SourceReference{kind: kindTextURI, uri: uri}
}

// DataURL references media inlined as a data: URL.
func DataURL(raw string) SourceReference {
	return SourceReference{kind: kindDataURL, uri: raw}
}

// ObjectHandle references media through an object wrapper that carries a URI
// (the picker result shape on some client platforms).
func ObjectHandle(uri string) SourceReference {
	return SourceReference{kind: kindObjectHandle, uri: uri}
}

// BinaryBlob references media already held in memory. mimeType and fileName
// may be empty; both are inferred when absent.
func BinaryBlob(data []byte, mimeType, fileName string) SourceReference {
	return SourceReference{kind: kindBinaryBlob, data: data, mime: mimeType, name: fileName}
}

// payload is the normalized binary form every source reference reduces to.
type payload struct {
	bytes       []byte
	contentType string
	fileName    string
	sourceURI   string
}

func (p *payload) size() int64 { return int64(len(p.bytes)) }

// Bound how much we will ever pull into memory from a remote source.
// The policy gate enforces the real caps; this only protects the fetch.
const maxFetchBytes = maxVideoBytes + 1

var dataURLPattern = regexp.MustCompile(`(?is)^data:([^;,]+)?(;base64)?,(.*)$`)

// normalize converts any supported source reference into an in-memory payload
// with an inferred content type. All failures here are terminal for the request.
func (u *Uploader) normalize(ctx context.Context, src SourceReference) (*payload, error) {
	switch src.kind {
	case kindDataURL:
		return decodeDataURL(src.uri)
	case kindTextURI, kindObjectHandle:
		// Data URLs can arrive through the plain-string path too.
		if strings.HasPrefix(strings.ToLower(src.uri), "data:") {
			return decodeDataURL(src.uri)
		}
		return u.fetchURI(ctx, src.uri)
	case kindBinaryBlob:
		if len(src.data) == 0 {
			return nil, ErrEmptyPayload
		}
		return &payload{bytes: src.data, contentType: src.mime, fileName: src.name}, nil
	default:
		return nil, fmt.Errorf("uploader: unsupported source reference")
	}
}

// decodeDataURL parses data:<mime>[;base64],<data> into bytes. Non-base64
// data URLs are percent-encoded text.
func decodeDataURL(raw string) (*payload, error) {
	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil, &SourceReadError{Err: errors.New("invalid data URL")}
	}
	mimeType := strings.TrimSpace(m[1])
	isBase64 := m[2] != ""
	data := m[3]

	var decoded []byte
	if isBase64 {
		cleaned := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, data)
		b, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			return nil, &SourceReadError{Err: fmt.Errorf("decode data URL: %w", err)}
		}
		decoded = b
	} else {
		text, err := url.QueryUnescape(data)
		if err != nil {
			return nil, &SourceReadError{Err: fmt.Errorf("decode data URL: %w", err)}
		}
		decoded = []byte(text)
	}

	if len(decoded) == 0 {
		return nil, ErrEmptyPayload
	}
	return &payload{bytes: decoded, contentType: mimeType}, nil
}

// fetchURI reads a remote or local source under the configured fetch timeout.
func (u *Uploader) fetchURI(ctx context.Context, uri string) (*payload, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return nil, &SourceReadError{Err: errors.New("empty source URI")}
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return u.fetchHTTP(ctx, trimmed)
	}
	return readLocalFile(trimmed)
}

func (u *Uploader) fetchHTTP(ctx context.Context, uri string) (*payload, error) {
	t0 := time.Now()
	u.diag.log("read:start", "uri", truncate(uri, 120), "timeout", u.fetchTimeout)

	reqCtx, cancel := context.WithTimeout(ctx, u.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &SourceReadError{Err: err}
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return nil, &SourceReadError{TimedOut: true, Err: err}
		}
		return nil, &SourceReadError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &SourceReadError{Err: fmt.Errorf("failed to read source (%d)", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return nil, &SourceReadError{TimedOut: true, Err: err}
		}
		return nil, &SourceReadError{Err: err}
	}
	if len(data) == 0 {
		u.diag.log("read:done", "elapsed", time.Since(t0), "size", 0)
		return nil, ErrEmptyPayload
	}

	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	u.diag.log("read:done", "elapsed", time.Since(t0), "size", len(data), "type", contentType)
	return &payload{bytes: data, contentType: contentType, sourceURI: uri}, nil
}

func readLocalFile(uri string) (*payload, error) {
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceReadError{Err: err}
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return &payload{bytes: data, sourceURI: uri}, nil
}

// inferContentType resolves the payload's MIME type: the declared type wins
// when it is an image/video, then extension sniffing on the source URI,
// then image/jpeg (many blob and data URLs do not preserve their type).
func inferContentType(p *payload) string {
	declared := strings.ToLower(strings.TrimSpace(p.contentType))
	if strings.HasPrefix(declared, "image/") || strings.HasPrefix(declared, "video/") {
		return declared
	}

	for _, candidate := range []string{p.fileName, p.sourceURI} {
		lower := strings.ToLower(candidate)
		switch {
		case strings.HasSuffix(lower, ".png"):
			return "image/png"
		case strings.HasSuffix(lower, ".webp"):
			return "image/webp"
		case strings.HasSuffix(lower, ".gif"):
			return "image/gif"
		case strings.HasSuffix(lower, ".heic"), strings.HasSuffix(lower, ".heif"):
			return "image/heic"
		case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
			return "image/jpeg"
		case strings.HasSuffix(lower, ".mp4"), strings.HasSuffix(lower, ".m4v"):
			return "video/mp4"
		case strings.HasSuffix(lower, ".mov"):
			return "video/quicktime"
		case strings.HasSuffix(lower, ".webm"):
			return "video/webm"
		}
	}

	return "image/jpeg"
}

// extForContentType picks the object-path extension.
func extForContentType(contentType string) string {
	switch contentType {
	case "video/mp4":
		return "mp4"
	case "video/quicktime":
		return "mov"
	case "video/webm":
		return "webm"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/heic":
		return "heic"
	default:
		return "jpg"
	}
}

func isVideoContentType(ct string) bool { return strings.HasPrefix(ct, "video/") }
func isImageContentType(ct string) bool { return strings.HasPrefix(ct, "image/") }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

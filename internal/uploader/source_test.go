package uploader

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestUploader(t *testing.T, p Params) (*Uploader, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	if p.Store == nil {
		p.Store = store
	}
	return New(p), store
}

func TestNormalizeDataURLBase64(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	raw := []byte{0x01, 0x02, 0x03, 0xff}
	src := DataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))

	p, err := u.normalize(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, raw, p.bytes)
	require.Equal(t, "image/png", p.contentType)
}

func TestNormalizeDataURLWithWhitespace(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	encoded := base64.StdEncoding.EncodeToString([]byte("payload"))
	src := DataURL("data:image/jpeg;base64," + encoded[:4] + "\n " + encoded[4:])

	p, err := u.normalize(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), p.bytes)
}

func TestNormalizeDataURLPercentEncoded(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	p, err := u.normalize(context.Background(), DataURL("data:text/plain,hello%20world"))
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), p.bytes)
	require.Equal(t, "text/plain", p.contentType)
}

func TestNormalizeDataURLThroughTextURIPath(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	encoded := base64.StdEncoding.EncodeToString([]byte("abc"))
	p, err := u.normalize(context.Background(), TextURI("data:image/gif;base64,"+encoded))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), p.bytes)
	require.Equal(t, "image/gif", p.contentType)
}

func TestNormalizeInvalidDataURL(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	_, err := u.normalize(context.Background(), DataURL("not a data url"))
	var readErr *SourceReadError
	require.ErrorAs(t, err, &readErr)
	require.False(t, readErr.TimedOut)
}

func TestNormalizeEmptyDataURL(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	_, err := u.normalize(context.Background(), DataURL("data:image/png;base64,"))
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestNormalizeEmptyBinaryBlob(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	_, err := u.normalize(context.Background(), BinaryBlob(nil, "image/png", "x.png"))
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestNormalizeFetchHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png; charset=binary")
		_, _ = w.Write([]byte("pngbytes"))
	}))
	defer server.Close()

	u, _ := newTestUploader(t, Params{})

	p, err := u.normalize(context.Background(), TextURI(server.URL+"/pic"))
	require.NoError(t, err)
	require.Equal(t, []byte("pngbytes"), p.bytes)
	// Content type parameters are stripped.
	require.Equal(t, "image/png", p.contentType)
}

func TestNormalizeFetchHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	u, _ := newTestUploader(t, Params{})

	_, err := u.normalize(context.Background(), TextURI(server.URL))
	var readErr *SourceReadError
	require.ErrorAs(t, err, &readErr)
	require.Contains(t, err.Error(), "404")
}

func TestNormalizeFetchHTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	u, _ := newTestUploader(t, Params{FetchTimeout: 50 * time.Millisecond})

	_, err := u.normalize(context.Background(), TextURI(server.URL))
	var readErr *SourceReadError
	require.ErrorAs(t, err, &readErr)
	require.True(t, readErr.TimedOut)
}

func TestNormalizeFetchHTTPEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, _ := newTestUploader(t, Params{})

	_, err := u.normalize(context.Background(), TextURI(server.URL))
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestNormalizeEmptyURI(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	_, err := u.normalize(context.Background(), TextURI("   "))
	var readErr *SourceReadError
	require.ErrorAs(t, err, &readErr)
}

func TestNormalizeMissingLocalFile(t *testing.T) {
	u, _ := newTestUploader(t, Params{})

	_, err := u.normalize(context.Background(), TextURI("file:///does/not/exist.png"))
	var readErr *SourceReadError
	require.ErrorAs(t, err, &readErr)
	require.False(t, readErr.TimedOut)
}

func TestInferContentTypeDeclaredWins(t *testing.T) {
	p := &payload{contentType: "Video/MP4", fileName: "clip.png"}
	require.Equal(t, "video/mp4", inferContentType(p))
}

func TestInferContentTypeFromExtension(t *testing.T) {
	cases := map[string]string{
		"a.png":  "image/png",
		"b.webp": "image/webp",
		"c.gif":  "image/gif",
		"d.heic": "image/heic",
		"e.HEIF": "image/heic",
		"f.jpg":  "image/jpeg",
		"g.jpeg": "image/jpeg",
		"h.mp4":  "video/mp4",
		"i.m4v":  "video/mp4",
		"j.mov":  "video/quicktime",
		"k.webm": "video/webm",
	}
	for name, want := range cases {
		p := &payload{fileName: name}
		require.Equal(t, want, inferContentType(p), "file %s", name)
	}
}

func TestInferContentTypeFromSourceURI(t *testing.T) {
	p := &payload{contentType: "application/octet-stream", sourceURI: "https://example.com/media/farm.mov"}
	require.Equal(t, "video/quicktime", inferContentType(p))
}

func TestInferContentTypeDefaultsToJPEG(t *testing.T) {
	p := &payload{contentType: "application/octet-stream", fileName: "blob"}
	require.Equal(t, "image/jpeg", inferContentType(p))
}

func TestExtForContentType(t *testing.T) {
	require.Equal(t, "mp4", extForContentType("video/mp4"))
	require.Equal(t, "mov", extForContentType("video/quicktime"))
	require.Equal(t, "png", extForContentType("image/png"))
	require.Equal(t, "jpg", extForContentType("image/jpeg"))
	// Unknown types land on jpg, matching the inference default.
	require.Equal(t, "jpg", extForContentType("application/octet-stream"))
}

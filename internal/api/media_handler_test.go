package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/uploader"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubMediaService struct {
	uploads int
}

func (s *stubMediaService) Upload(ctx context.Context, userID primitive.ObjectID, src uploader.SourceReference, folder string) (*uploader.Result, error) {
	s.uploads++
	return &uploader.Result{
		DownloadURL: "https://cdn.test/posts/1-abcd1234.png",
		ObjectPath:  "posts/1-abcd1234.png",
		ContentType: "image/png",
		Size:        4,
	}, nil
}

func (s *stubMediaService) UploadBatch(ctx context.Context, userID primitive.ObjectID, srcs []uploader.SourceReference, folder string) ([]string, error) {
	return nil, nil
}

func (s *stubMediaService) History(ctx context.Context, userID primitive.ObjectID) ([]domain.Upload, error) {
	return nil, nil
}

func newMediaRouter(svc *stubMediaService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewMediaHandler(svc)
	userID := primitive.NewObjectID().Hex()

	router := gin.New()
	router.POST("/media/upload/file", func(c *gin.Context) {
		c.Set(ContextUserIDKey, userID)
	}, handler.UploadFile)
	return router
}

func multipartUpload(t *testing.T, folder string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("folder", folder))
	fw, err := mw.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(file)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadFileAcceptsSmallFile(t *testing.T) {
	svc := &stubMediaService{}
	router := newMediaRouter(svc)

	body, contentType := multipartUpload(t, "posts", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/media/upload/file", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 1, svc.uploads)
}

func TestUploadFileRejectsOversizedBodyBeforeReading(t *testing.T) {
	svc := &stubMediaService{}
	router := newMediaRouter(svc)

	// Just past what any folder policy could accept.
	oversized := make([]byte, int(uploader.MaxUploadBytes)+uploadFormOverhead)
	body, contentType := multipartUpload(t, "posts", oversized)
	req := httptest.NewRequest(http.MethodPost, "/media/upload/file", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Zero(t, svc.uploads)
}

func TestUploadFileRequiresFolder(t *testing.T) {
	svc := &stubMediaService{}
	router := newMediaRouter(svc)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/media/upload/file", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, svc.uploads)
}

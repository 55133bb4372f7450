package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/calebc9298-pixel/fencepost/internal/service"
	"github.com/calebc9298-pixel/fencepost/internal/uploader"

	"github.com/gin-gonic/gin"
)

// MediaHandler holds the media service dependency.
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// --- Request/Response Structs ---

// UploadRequest accepts exactly one of DataURL or URI. Multipart uploads
// use the dedicated form endpoint instead.
type UploadRequest struct {
	Folder  string `json:"folder" binding:"required"`
	DataURL string `json:"dataUrl"`
	URI     string `json:"uri"`
}

type UploadBatchRequest struct {
	Folder   string   `json:"folder" binding:"required"`
	DataURLs []string `json:"dataUrls" binding:"required,min=1"`
}

type UploadResponse struct {
	URL         string `json:"url"`
	ObjectKey   string `json:"objectKey"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// --- Handler Methods ---

// Upload runs a single JSON-described source through the upload pipeline.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	var src uploader.SourceReference
	switch {
	case req.DataURL != "" && req.URI != "":
		abortWithError(c, http.StatusBadRequest, "Provide either dataUrl or uri, not both")
		return
	case req.DataURL != "":
		src = uploader.DataURL(req.DataURL)
	case req.URI != "":
		src = uploader.TextURI(req.URI)
	default:
		abortWithError(c, http.StatusBadRequest, "One of dataUrl or uri is required")
		return
	}

	res, err := h.mediaService.Upload(c.Request.Context(), userID, src, req.Folder)
	if err != nil {
		abortUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapUploadResult(res))
}

// Room for the non-file form fields and multipart framing on top of the
// payload cap.
const uploadFormOverhead = 64 * 1024

// UploadFile runs a multipart form file through the upload pipeline.
// Form fields: "file" (the payload) and "folder" (destination prefix).
func (h *MediaHandler) UploadFile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	// Cap the request before the multipart parser buffers anything; the
	// policy gate enforces the real per-kind limits afterwards. The reader
	// cap backs up the declared-length check for chunked or lying clients.
	if c.Request.ContentLength > uploader.MaxUploadBytes+uploadFormOverhead {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Upload exceeds the 50MB limit")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploader.MaxUploadBytes+uploadFormOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Upload exceeds the 50MB limit")
			return
		}
		abortWithError(c, http.StatusBadRequest, "Form field 'file' is required")
		return
	}

	folder := c.PostForm("folder")
	if folder == "" {
		abortWithError(c, http.StatusBadRequest, "Form field 'folder' is required")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	src := uploader.BinaryBlob(data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)

	res, err := h.mediaService.Upload(c.Request.Context(), userID, src, folder)
	if err != nil {
		abortUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapUploadResult(res))
}

// UploadBatch uploads several data URLs in order; all succeed or none are reported.
func (h *MediaHandler) UploadBatch(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	var req UploadBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	srcs := make([]uploader.SourceReference, len(req.DataURLs))
	for i, raw := range req.DataURLs {
		srcs[i] = uploader.DataURL(raw)
	}

	urls, err := h.mediaService.UploadBatch(c.Request.Context(), userID, srcs, req.Folder)
	if err != nil {
		abortUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}

// History lists the caller's past uploads.
func (h *MediaHandler) History(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user")
		return
	}

	uploads, err := h.mediaService.History(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load upload history")
		return
	}

	c.JSON(http.StatusOK, uploads)
}

func mapUploadResult(res *uploader.Result) UploadResponse {
	return UploadResponse{
		URL:         res.DownloadURL,
		ObjectKey:   res.ObjectPath,
		ContentType: res.ContentType,
		Size:        res.Size,
	}
}

// abortUploadError maps pipeline failures onto HTTP statuses. Policy and
// source problems are the caller's fault; transport and resolution failures
// are upstream's.
func abortUploadError(c *gin.Context, err error) {
	var (
		policyErr *uploader.PolicyError
		readErr   *uploader.SourceReadError
		stallErr  *uploader.StallError
	)
	switch {
	case errors.Is(err, service.ErrUserBanned):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.As(err, &policyErr):
		abortWithError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, uploader.ErrEmptyPayload),
		errors.Is(err, uploader.ErrProfileNeedsImage),
		errors.Is(err, uploader.ErrUnsupportedKind):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &readErr):
		if readErr.TimedOut {
			abortWithError(c, http.StatusGatewayTimeout, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
	case errors.As(err, &stallErr):
		abortWithError(c, http.StatusBadGateway, err.Error())
	default:
		abortWithError(c, http.StatusBadGateway, "Upload failed")
	}
}

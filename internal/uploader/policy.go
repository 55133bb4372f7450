package uploader

import (
	"strconv"
	"strings"
)

// Client-side caps. Intentionally tighter than or equal to the server-side
// storage rules, which enforce their own folder-specific limits independently.
const (
	maxImageBytes int64 = 5 * 1024 * 1024
	maxVideoBytes int64 = 50 * 1024 * 1024
)

// MaxUploadBytes is the largest payload any folder accepts (the video cap).
// Transport surfaces use it to bound request buffering before the policy
// gate sees the payload.
const MaxUploadBytes = maxVideoBytes

// uploadPolicy is resolved per request from the destination folder.
type uploadPolicy struct {
	imagesOnly   bool
	ruleMaxBytes int64 // server-side cap for the folder, logged for diagnostics
}

// policyForFolder keys the policy table by folder prefix. Keep in sync with
// the server-side storage rules.
func policyForFolder(folder string) uploadPolicy {
	if strings.HasPrefix(folder, "profiles") {
		return uploadPolicy{imagesOnly: true, ruleMaxBytes: maxImageBytes}
	}
	return uploadPolicy{imagesOnly: false, ruleMaxBytes: maxVideoBytes}
}

// checkKind rejects payload kinds the destination folder does not allow.
func checkKind(pol uploadPolicy, contentType string) error {
	if pol.imagesOnly {
		if !isImageContentType(contentType) {
			return ErrProfileNeedsImage
		}
		return nil
	}
	if !isImageContentType(contentType) && !isVideoContentType(contentType) {
		return ErrUnsupportedKind
	}
	return nil
}

// checkSize applies the client cap for the payload kind. afterTranscode marks
// the re-check that runs once transcoding had its chance to shrink the payload.
func checkSize(contentType string, sizeBytes int64, afterTranscode bool) error {
	kind, maxBytes := "Image", maxImageBytes
	if isVideoContentType(contentType) {
		kind, maxBytes = "Video", maxVideoBytes
	}
	if sizeBytes > maxBytes {
		return &PolicyError{Kind: kind, SizeBytes: sizeBytes, MaxBytes: maxBytes, AfterTranscode: afterTranscode}
	}
	return nil
}

// mbString renders a byte count in MB with at most one decimal ("6.2", "5").
func mbString(bytes int64) string {
	mb := float64(bytes) / (1024 * 1024)
	rounded := float64(int64(mb*10+0.5)) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

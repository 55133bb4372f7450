package uploader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyForFolder(t *testing.T) {
	require.True(t, policyForFolder("profiles").imagesOnly)
	require.True(t, policyForFolder("profiles/avatars").imagesOnly)
	require.False(t, policyForFolder("posts").imagesOnly)
	require.False(t, policyForFolder("").imagesOnly)
}

func TestCheckKindProfileRejectsVideo(t *testing.T) {
	pol := policyForFolder("profiles")
	require.ErrorIs(t, checkKind(pol, "video/mp4"), ErrProfileNeedsImage)
	require.NoError(t, checkKind(pol, "image/png"))
}

func TestCheckKindRejectsNonMedia(t *testing.T) {
	pol := policyForFolder("posts")
	require.ErrorIs(t, checkKind(pol, "application/pdf"), ErrUnsupportedKind)
	require.NoError(t, checkKind(pol, "image/jpeg"))
	require.NoError(t, checkKind(pol, "video/webm"))
}

func TestCheckSizeImageCap(t *testing.T) {
	require.NoError(t, checkSize("image/jpeg", maxImageBytes, false))

	err := checkSize("image/jpeg", maxImageBytes+1, false)
	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, "Image", policyErr.Kind)
	require.False(t, policyErr.AfterTranscode)
	require.Contains(t, err.Error(), "Image too large (5MB). Max allowed is 5MB.")
}

func TestCheckSizeVideoCap(t *testing.T) {
	require.NoError(t, checkSize("video/mp4", maxVideoBytes, false))

	err := checkSize("video/mp4", 52*1024*1024, false)
	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.Equal(t, "Video", policyErr.Kind)
	require.Contains(t, err.Error(), "Video too large (52MB). Max allowed is 50MB.")
}

func TestCheckSizeAfterTranscodeMessage(t *testing.T) {
	err := checkSize("image/jpeg", 6*1024*1024+512*1024, true)
	var policyErr *PolicyError
	require.ErrorAs(t, err, &policyErr)
	require.True(t, policyErr.AfterTranscode)
	require.Contains(t, err.Error(), "Image too large after processing (6.5MB). Max allowed is 5MB.")
}

func TestMBStringTrimsTrailingZero(t *testing.T) {
	require.Equal(t, "5", mbString(5*1024*1024))
	require.Equal(t, "6.2", mbString(6*1024*1024+200*1024))
	require.Equal(t, "0.1", mbString(100*1024))
}

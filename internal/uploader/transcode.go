package uploader

import (
	"bytes"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Image payloads larger than this on their longest side get downscaled and
// re-encoded as JPEG before upload.
const (
	maxDimension = 1600
	jpegQuality  = 75
)

// downscaleImage bounds the payload's pixel dimensions. Dimensions come from
// a header-only decode first so small images pass through byte-identical.
// Any decode or encode failure leaves the payload untouched: transcoding is
// an upload-size optimization and must never block the upload itself.
func (u *Uploader) downscaleImage(p *payload) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.bytes))
	if err != nil {
		u.diag.log("downscale:skip", "reason", err.Error())
		return
	}

	maxSide := cfg.Width
	if cfg.Height > maxSide {
		maxSide = cfg.Height
	}
	if maxSide <= 0 || maxSide <= maxDimension {
		return
	}

	img, err := imaging.Decode(bytes.NewReader(p.bytes))
	if err != nil {
		u.diag.log("downscale:skip", "reason", err.Error())
		return
	}

	scale := float64(maxDimension) / float64(maxSide)
	targetW := int(math.Round(float64(cfg.Width) * scale))
	targetH := int(math.Round(float64(cfg.Height) * scale))
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}

	resized := imaging.Resize(img, targetW, targetH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		u.diag.log("downscale:skip", "reason", err.Error())
		return
	}

	u.diag.log("downscale",
		"originalDims", [2]int{cfg.Width, cfg.Height},
		"targetDims", [2]int{targetW, targetH},
		"originalSize", len(p.bytes),
		"finalSize", buf.Len(),
	)

	// The transcoded output is always JPEG, regardless of the source format.
	p.bytes = buf.Bytes()
	p.contentType = "image/jpeg"
}

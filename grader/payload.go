package grader

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"

	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const payloadQuality = 90

// preparePayload normalizes a page image into JPEG bytes for upload,
// downscaling so the longer edge stays within maxEdge when set. JPEG
// input passes through untouched unless it needs resizing.
func preparePayload(data []byte, maxEdge int) ([]byte, error) {
	isJPEG := len(data) >= 2 && data[0] == 0xff && data[1] == 0xd8
	if isJPEG && maxEdge <= 0 {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if maxEdge > 0 {
		b := img.Bounds()
		if b.Dx() > maxEdge || b.Dy() > maxEdge {
			img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
		} else if isJPEG {
			return data, nil
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: payloadQuality}); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return buf.Bytes(), nil
}

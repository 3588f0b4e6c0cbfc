package builder

import (
	"image"
	"image/draw"

	"github.com/gradesheet/gradesheet/ir/semantic"
)

// FromImage converts a decoded image into raw RGB samples, attaching an
// alpha soft mask only when the source actually uses transparency. Raw
// samples leave Filter empty so the serializer can compress them itself.
func FromImage(src image.Image) *semantic.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Non-premultiplied alpha keeps the raw color values intact.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             pixels,
	}
	if hasAlpha {
		img.SMask = &semantic.Image{
			Width:            w,
			Height:           h,
			ColorSpace:       "DeviceGray",
			BitsPerComponent: 8,
			Data:             alpha,
		}
	}
	return img
}

// FromJPEG wraps already-encoded JPEG bytes for DCTDecode pass-through, so
// photographed pages embed without a decode and re-encode cycle.
func FromJPEG(data []byte, width, height int) *semantic.Image {
	return &semantic.Image{
		Width:            width,
		Height:           height,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             data,
		Filter:           "DCTDecode",
	}
}

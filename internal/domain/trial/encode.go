package trial

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// toRaster converts decoder outputs that PNG would re-sample pixel by pixel
// (JPEG's YCbCr and CMYK) into NRGBA. Other models are encoded as decoded.
func toRaster(src image.Image) image.Image {
	switch src.(type) {
	case *image.YCbCr, *image.CMYK:
		b := src.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	default:
		return src
	}
}

// placeholderMask returns a w×h gray image with every pixel set to MaskValue.
func placeholderMask(w, h int) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(mask, mask.Bounds(), image.NewUniform(color.Gray{Y: MaskValue}), image.Point{}, draw.Src)
	return mask
}

// pngBase64 encodes img as PNG and returns the standard base64 text.
func pngBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

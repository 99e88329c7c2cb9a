package image

import (
	"bytes"
	"fmt"
	stdimage "image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// Square decodes data (JPEG, PNG, GIF or WebP), crops the centered square
// and scales it to size x size. The result is JPEG encoded.
func Square(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid target size %d", size)
	}

	src, _, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	edge := min(b.Dx(), b.Dy())
	if edge == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	x0 := b.Min.X + (b.Dx()-edge)/2
	y0 := b.Min.Y + (b.Dy()-edge)/2
	crop := stdimage.Rect(x0, y0, x0+edge, y0+edge)

	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Package photo normalizes uploaded equipment photos.
package photo

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/sitestock/internal/apperr"
)

const (
	// MaxDimension bounds the width and height of stored photos.
	MaxDimension = 800
	// MaxUploadBytes bounds the size of an accepted upload.
	MaxUploadBytes = 10 << 20
	// Quality is the JPEG quality of stored photos.
	Quality = 82
	// MIME is the type every stored photo has.
	MIME = "image/jpeg"
)

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Normalize reads an uploaded photo, checks its format from the bytes
// themselves, fits it within MaxDimension and re-encodes it as JPEG.
// Transparent areas are flattened onto white. Bad input fails with
// InvalidRequest.
func Normalize(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, apperr.New(apperr.InvalidRequest, "photo exceeds %d MB", MaxUploadBytes>>20)
	}

	detected := http.DetectContentType(data)
	if !accepted[detected] {
		return nil, apperr.New(apperr.InvalidRequest, "unsupported photo format %s, use JPEG or PNG", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidRequest, err, "photo could not be decoded")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxDimension), &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down, keeping its aspect ratio, so that neither side
// exceeds maxDim, and paints it over a white canvas.
func fit(img image.Image, maxDim int) image.Image {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()

	if w > maxDim || h > maxDim {
		if w > h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	}
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}

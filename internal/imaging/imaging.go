// Package imaging produces downscaled previews of stored item images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxThumbnail is the largest preview edge that may be requested.
const MaxThumbnail = 1024

// JPEGQuality is the compression quality for previews.
const JPEGQuality = 85

// decodable lists the content types a preview can be made from.
var decodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result is an encoded preview.
type Result struct {
	Data []byte
	MIME string
}

// ContentType sniffs the real type of a stored blob. Blobs always carry a
// .png suffix, so the name says nothing about the content.
func ContentType(data []byte) string {
	return http.DetectContentType(data)
}

// Thumbnail decodes the image in r, downscales it so neither side exceeds
// size, and re-encodes it as JPEG. Images already within bounds are not
// upscaled.
func Thumbnail(r io.Reader, size int) (*Result, error) {
	if size < 1 || size > MaxThumbnail {
		return nil, fmt.Errorf("thumbnail size %d out of range 1..%d", size, MaxThumbnail)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	detected := ContentType(data)
	if !decodable[detected] {
		return nil, fmt.Errorf("cannot preview %s (only JPEG and PNG)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, size)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{
		Data: buf.Bytes(),
		MIME: "image/jpeg",
	}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim, using
// Catmull-Rom interpolation.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}

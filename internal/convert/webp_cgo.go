//go:build cgo

package convert

import (
	"image"
	"io"

	"github.com/chai2010/webp"
)

const webpSupported = true

func encodeWebP(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{
		Lossless: quality >= 100,
		Quality:  float32(quality),
	})
}

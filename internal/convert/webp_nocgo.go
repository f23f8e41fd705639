//go:build !cgo

package convert

import (
	"image"
	"io"
)

const webpSupported = false

func encodeWebP(_ io.Writer, _ image.Image, _ int) error {
	return ErrWebPUnavailable
}

//go:build govips && cgo && !libheif

package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
)

const heifBackend = "govips"

var errNotHEIF = errors.New("payload is not a heif container")

type govipsHEIFDecoder struct{}

func newHEIFDecoder() (HEIFDecoder, error) {
	if err := Startup(); err != nil {
		return nil, err
	}
	return govipsHEIFDecoder{}, nil
}

func (govipsHEIFDecoder) DecodeHEIF(ctx context.Context, input []byte) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if vips.DetermineImageType(input) != vips.ImageTypeHEIF {
		return nil, errNotHEIF
	}

	img, err := vips.NewImageFromBuffer(input)
	if err != nil {
		return nil, fmt.Errorf("load heif: %w", err)
	}
	defer img.Close()

	params := vips.NewJpegExportParams()
	params.Quality = intermediateQuality
	data, _, err := img.ExportJpeg(params)
	if err != nil {
		return nil, fmt.Errorf("encode intermediate jpeg: %w", err)
	}
	return data, nil
}

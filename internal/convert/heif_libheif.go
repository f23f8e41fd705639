//go:build libheif && cgo

package convert

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/strukturag/libheif/go/heif"
)

const heifBackend = "libheif"

type libheifDecoder struct{}

func newHEIFDecoder() (HEIFDecoder, error) {
	return libheifDecoder{}, nil
}

func (libheifDecoder) DecodeHEIF(ctx context.Context, input []byte) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	hctx, err := heif.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create heif context: %w", err)
	}
	if err := hctx.ReadFromMemory(input); err != nil {
		return nil, fmt.Errorf("read heif container: %w", err)
	}

	handle, err := hctx.GetPrimaryImageHandle()
	if err != nil {
		return nil, fmt.Errorf("read primary image: %w", err)
	}

	decoded, err := handle.DecodeImage(heif.ColorspaceUndefined, heif.ChromaUndefined, nil)
	if err != nil {
		return nil, fmt.Errorf("decode primary image: %w", err)
	}

	img, err := decoded.GetImage()
	if err != nil {
		return nil, fmt.Errorf("convert primary image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: intermediateQuality}); err != nil {
		return nil, fmt.Errorf("encode intermediate jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

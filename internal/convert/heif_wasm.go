//go:build !cgo || (!libheif && !govips)

package convert

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/heic"
)

const heifBackend = "wasm"

// wasmHEIFDecoder runs libheif compiled to WebAssembly, or the system
// libheif.so when one can be loaded, so it needs no cgo.
type wasmHEIFDecoder struct{}

func newHEIFDecoder() (HEIFDecoder, error) {
	return wasmHEIFDecoder{}, nil
}

func (wasmHEIFDecoder) DecodeHEIF(ctx context.Context, input []byte) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	img, err := heic.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("decode heic: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: intermediateQuality}); err != nil {
		return nil, fmt.Errorf("encode intermediate jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

package convert

import (
	"context"
	"errors"

	"github.com/gilangaryo/converter-files/internal/domain"
)

const (
	// intermediateQuality is used when a HEIF payload is flattened to JPEG
	// before being re-encoded into the requested format.
	intermediateQuality = 100

	// DefaultMaxPixels bounds decoded images to roughly 200MB of RGBA.
	DefaultMaxPixels = 50_000_000
)

var (
	ErrImageTooLarge   = errors.New("image dimensions exceed the pixel limit")
	ErrWebPUnavailable = errors.New("webp export requires cgo")
)

// Encoder decodes a directly decodable raster payload and re-encodes it into
// format. The format passed in is already normalized.
type Encoder interface {
	Encode(ctx context.Context, input []byte, format domain.Format, quality int) ([]byte, error)
}

// HEIFDecoder flattens a HEIC/HEIF payload into full quality JPEG bytes.
type HEIFDecoder interface {
	DecodeHEIF(ctx context.Context, input []byte) ([]byte, error)
}

type Capabilities struct {
	Backend     string `json:"backend"`
	HEIF        bool   `json:"heif"`
	HEIFBackend string `json:"heif_backend"`
	WebP        bool   `json:"webp"`
}

func CurrentCapabilities() Capabilities {
	return Capabilities{
		Backend:     backendName,
		HEIF:        heifBackend != "",
		HEIFBackend: heifBackend,
		WebP:        webpSupported,
	}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

//go:build !govips || !cgo

package convert

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/gilangaryo/converter-files/internal/domain"
	"golang.org/x/image/webp"
)

func TestStdlibEncoderOutputs(t *testing.T) {
	source := buildTestPNG(t, 10, 10)
	encoder := stdlibEncoder{}

	out, err := encoder.Encode(context.Background(), source, domain.FormatJPEG, 75)
	if err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode jpeg output: %v", err)
	}
	assertSize(t, img, 10, 10)

	if !webpSupported {
		if _, err := encoder.Encode(context.Background(), source, domain.FormatWebP, 80); !errors.Is(err, ErrWebPUnavailable) {
			t.Fatalf("expected ErrWebPUnavailable, got %v", err)
		}
		return
	}

	for _, quality := range []int{80, 100} {
		out, err = encoder.Encode(context.Background(), source, domain.FormatWebP, quality)
		if err != nil {
			t.Fatalf("encode webp q=%d: %v", quality, err)
		}
		img, err = webp.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("decode webp output q=%d: %v", quality, err)
		}
		assertSize(t, img, 10, 10)
	}
}

func TestStdlibEncoderDecodesWebPInput(t *testing.T) {
	if !webpSupported {
		t.Skip("webp export unavailable in this build")
	}

	encoder := stdlibEncoder{}
	webpBytes, err := encoder.Encode(context.Background(), buildTestPNG(t, 16, 8), domain.FormatWebP, 90)
	if err != nil {
		t.Fatalf("encode webp: %v", err)
	}

	out, err := encoder.Encode(context.Background(), webpBytes, domain.FormatPNG, 90)
	if err != nil {
		t.Fatalf("convert webp to png: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png output: %v", err)
	}
	assertSize(t, img, 16, 8)
}

func TestStdlibEncoderRejectsCorruptInput(t *testing.T) {
	_, err := stdlibEncoder{}.Encode(context.Background(), []byte("not an image"), domain.FormatPNG, 90)
	if err == nil {
		t.Fatal("expected decode error for corrupt input")
	}
}

func TestStdlibEncoderUnsupportedFormat(t *testing.T) {
	_, err := stdlibEncoder{}.Encode(context.Background(), buildTestPNG(t, 2, 2), domain.Format("gif"), 90)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestStdlibEncoderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (stdlibEncoder{}).Encode(ctx, buildTestPNG(t, 2, 2), domain.FormatPNG, 90); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func assertSize(t *testing.T, img image.Image, w, h int) {
	t.Helper()
	if got := img.Bounds(); got.Dx() != w || got.Dy() != h {
		t.Fatalf("expected %dx%d, got %dx%d", w, h, got.Dx(), got.Dy())
	}
}

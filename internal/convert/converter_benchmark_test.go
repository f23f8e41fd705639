package convert

import (
	"context"
	"testing"

	"github.com/gilangaryo/converter-files/internal/domain"
	"go.uber.org/zap"
)

func BenchmarkConvertPNGToJPEG(b *testing.B) {
	benchmarkConvert(b, domain.FormatJPEG)
}

func BenchmarkConvertPNGToPNG(b *testing.B) {
	benchmarkConvert(b, domain.FormatPNG)
}

func BenchmarkConvertPNGToWebP(b *testing.B) {
	if !webpSupported {
		b.Skip("webp export unavailable in this build")
	}
	benchmarkConvert(b, domain.FormatWebP)
}

func benchmarkConvert(b *testing.B, format domain.Format) {
	converter, err := New(zap.NewNop(), Config{MaxPixels: DefaultMaxPixels})
	if err != nil {
		b.Fatalf("new converter: %v", err)
	}

	req := domain.ConversionRequest{
		Data:     buildTestPNG(b, 1920, 1080),
		FileName: "bench.png",
		Format:   format,
		Quality:  82,
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := converter.Convert(context.Background(), req); err != nil {
			b.Fatalf("convert: %v", err)
		}
	}
}

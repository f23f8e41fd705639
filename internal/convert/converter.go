package convert

import (
	"context"
	"fmt"

	"github.com/gilangaryo/converter-files/internal/domain"
	"github.com/gilangaryo/converter-files/internal/logging"
	"go.uber.org/zap"
)

type Config struct {
	// MaxPixels caps width*height of any decoded image. Zero disables it.
	MaxPixels int64
}

type Converter struct {
	logger    *zap.Logger
	decoder   HEIFDecoder
	encoder   Encoder
	maxPixels int64
}

// New wires the codecs selected by the build tags.
func New(logger *zap.Logger, cfg Config) (*Converter, error) {
	encoder, err := newEncoder()
	if err != nil {
		return nil, fmt.Errorf("build encoder: %w", err)
	}
	decoder, err := newHEIFDecoder()
	if err != nil {
		return nil, fmt.Errorf("build heif decoder: %w", err)
	}
	return NewWithCodecs(logger, cfg, decoder, encoder), nil
}

func NewWithCodecs(logger *zap.Logger, cfg Config, decoder HEIFDecoder, encoder Encoder) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		logger:    logger,
		decoder:   decoder,
		encoder:   encoder,
		maxPixels: cfg.MaxPixels,
	}
}

// Convert returns *domain.Error on failure. Failures are left to the caller
// to log.
func (c *Converter) Convert(ctx context.Context, req domain.ConversionRequest) (domain.ConversionResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ConversionResult{}, err
	}

	logger := logging.WithTrace(ctx, c.logger).With(
		zap.String("file_name", req.FileName),
		zap.String("format", req.Format.Extension()),
		zap.Int("quality", req.Quality),
		zap.Int("input_bytes", len(req.Data)),
	)

	if req.IsHEIF() {
		output, err := c.convertHEIF(ctx, req)
		if err != nil {
			return domain.ConversionResult{}, domain.NewDecodeError(err)
		}
		logger.Debug("converted heif image", zap.Int("output_bytes", len(output)))
		return buildResult(req, output), nil
	}

	output, err := c.encode(ctx, req.Data, req)
	if err != nil {
		return domain.ConversionResult{}, domain.NewEncodeError(err)
	}
	logger.Debug("converted image", zap.Int("output_bytes", len(output)))
	return buildResult(req, output), nil
}

// convertHEIF covers both the HEIF decode and the re-encode of the
// intermediate JPEG; a failure in either is reported as a decode failure.
func (c *Converter) convertHEIF(ctx context.Context, req domain.ConversionRequest) ([]byte, error) {
	if err := checkPixels(req.Data, c.maxPixels); err != nil {
		return nil, err
	}

	intermediate, err := c.decoder.DecodeHEIF(ctx, req.Data)
	if err != nil {
		return nil, fmt.Errorf("decode heif: %w", err)
	}

	output, err := c.encode(ctx, intermediate, req)
	if err != nil {
		return nil, fmt.Errorf("encode heif intermediate: %w", err)
	}
	return output, nil
}

func (c *Converter) encode(ctx context.Context, input []byte, req domain.ConversionRequest) ([]byte, error) {
	if err := checkPixels(input, c.maxPixels); err != nil {
		return nil, err
	}
	return c.encoder.Encode(ctx, input, req.Format.Normalize(), req.Quality)
}

func buildResult(req domain.ConversionRequest, output []byte) domain.ConversionResult {
	return domain.ConversionResult{
		Data:        output,
		ContentType: req.Format.ContentType(),
		FileName:    req.SuggestedFileName(),
	}
}

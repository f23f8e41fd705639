package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gilangaryo/converter-files/internal/convert"
	"github.com/gilangaryo/converter-files/internal/domain"
	"github.com/gilangaryo/converter-files/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	ConvertPath = "/api/convert"

	defaultMaxUploadBytes = 50 << 20
	// multipartMemory is how much of a form is buffered in memory before
	// the multipart reader spills file parts to disk.
	multipartMemory = 32 << 20
)

type imageConverter interface {
	Convert(ctx context.Context, req domain.ConversionRequest) (domain.ConversionResult, error)
}

type Options struct {
	MaxUploadBytes         int64
	RateLimiter            RateLimiter
	RateLimitSubjectHeader string
	Capabilities           convert.Capabilities
}

type Server struct {
	logger                 *zap.Logger
	converter              imageConverter
	maxUploadBytes         int64
	rateLimiter            RateLimiter
	rateLimitSubjectHeader string
	capabilities           convert.Capabilities
	metrics                *metrics
	tracer                 trace.Tracer
	mux                    *http.ServeMux
}

func NewServer(logger *zap.Logger, converter imageConverter, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		logger:                 logger,
		converter:              converter,
		maxUploadBytes:         opts.MaxUploadBytes,
		rateLimiter:            opts.RateLimiter,
		rateLimitSubjectHeader: opts.RateLimitSubjectHeader,
		capabilities:           opts.Capabilities,
		metrics:                newMetrics(),
		tracer:                 otel.Tracer("converter/api"),
		mux:                    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.withRateLimit(h)
	h = s.withTracing(h)
	h = s.metrics.withHTTPMetrics(h)
	h = s.withAccessLog(h)
	h = s.withRequestID(h)
	h = s.withRecovery(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.metricsHandler())
	s.mux.HandleFunc("POST "+ConvertPath, s.handleConvert)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"backend":      s.capabilities.Backend,
		"heif":         s.capabilities.HEIF,
		"heif_backend": s.capabilities.HEIFBackend,
		"webp":         s.capabilities.WebP,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithTrace(r.Context(), s.logger).With(zap.String("request_id", requestIDFrom(r.Context())))

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := parseForm(r); err != nil {
		logger.Error("parse form failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, domain.MessageInternal)
		return
	}
	if r.MultipartForm != nil {
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				logger.Warn("remove multipart temp files failed", zap.Error(err))
			}
		}()
	}

	req, err := readConversionRequest(r)
	if err != nil {
		s.writeConversionError(w, logger, err)
		return
	}

	source := sourceLabel(req)
	target := req.Format.Normalize().Extension()
	start := time.Now()

	result, err := s.converter.Convert(r.Context(), req)
	s.metrics.observeConversion(source, target, outcomeLabel(err), time.Since(start), len(req.Data), len(result.Data))
	if err != nil {
		s.writeConversionError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		logger.Warn("write conversion response failed", zap.Error(err))
	}
}

// parseForm accepts multipart and urlencoded bodies. A urlencoded body has no
// file part and is rejected later as missing input.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) && isURLEncoded(r) {
		return nil
	}
	return err
}

func isURLEncoded(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

func readConversionRequest(r *http.Request) (domain.ConversionRequest, error) {
	if r.MultipartForm == nil {
		return domain.ConversionRequest{}, domain.NewValidationError(http.ErrMissingFile)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.ConversionRequest{}, domain.NewValidationError(err)
		}
		return domain.ConversionRequest{}, domain.NewUnexpectedError(fmt.Errorf("open form file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.ConversionRequest{}, domain.NewUnexpectedError(fmt.Errorf("read form file: %w", err))
	}

	format, err := domain.ParseFormat(r.FormValue("format"))
	if err != nil {
		return domain.ConversionRequest{}, domain.NewValidationError(err)
	}

	req := domain.ConversionRequest{
		Data:     data,
		FileName: header.Filename,
		Format:   format,
		Quality:  domain.ParseQuality(r.FormValue("quality")),
	}
	if err := req.Validate(); err != nil {
		return domain.ConversionRequest{}, err
	}
	return req, nil
}

func (s *Server) writeConversionError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var convErr *domain.Error
	if !errors.As(err, &convErr) {
		convErr = domain.NewUnexpectedError(err)
	}

	if convErr.Kind == domain.KindValidation {
		logger.Info("rejected conversion request", zap.String("reason", convErr.Message), zap.Error(convErr.Err))
	} else {
		logger.Error("conversion request failed", zap.Stringer("kind", convErr.Kind), zap.Error(err))
	}
	writeError(w, convErr.HTTPStatus(), convErr.Message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

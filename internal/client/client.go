package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gilangaryo/converter-files/internal/domain"
	"go.uber.org/zap"
)

const convertPath = "/api/convert"

type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

type File struct {
	Name string
	Data []byte
}

type Options struct {
	Format  domain.Format
	Quality int
}

type Converted struct {
	OriginalName  string
	ConvertedName string
	Format        domain.Format
	Data          []byte
	Size          int
	OriginalSize  int
	ContentType   string
}

// APIError is a non-2xx answer from the converter service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("converter returned status=%d", e.StatusCode)
	}
	return fmt.Sprintf("converter returned status=%d: %s", e.StatusCode, e.Message)
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:  logger,
	}
}

func (c *Client) Convert(ctx context.Context, file File, opts Options) (Converted, error) {
	format := opts.Format
	if format == "" {
		format = domain.DefaultFormat
	}

	body, contentType, err := encodeForm(file, format, opts.Quality)
	if err != nil {
		return Converted{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, body)
	if err != nil {
		return Converted{}, fmt.Errorf("build convert request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Converted{}, fmt.Errorf("send convert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Converted{}, classifyResponse(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Converted{}, fmt.Errorf("read converted image: %w", err)
	}

	return Converted{
		OriginalName:  file.Name,
		ConvertedName: ConvertedName(file.Name, format),
		Format:        format,
		Data:          data,
		Size:          len(data),
		OriginalSize:  len(file.Data),
		ContentType:   resp.Header.Get("Content-Type"),
	}, nil
}

// ConvertAll converts files one request at a time, in order. progress, when
// set, is called with loading=true before and loading=false after each file.
// Failed files are skipped; their errors are joined into the returned error
// alongside the successful results.
func (c *Client) ConvertAll(ctx context.Context, files []File, opts Options, progress func(index int, loading bool)) ([]Converted, error) {
	results := make([]Converted, 0, len(files))
	var errs []error

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if progress != nil {
			progress(i, true)
		}

		converted, err := c.Convert(ctx, file, opts)
		if err != nil {
			c.logger.Warn("conversion failed", zap.String("file", file.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", file.Name, err))
		} else {
			results = append(results, converted)
		}

		if progress != nil {
			progress(i, false)
		}
	}

	return results, errors.Join(errs...)
}

// ConvertedName keeps the text before the first dot of original and appends
// the requested format, so "photo.final.heic" becomes "photo.jpg".
func ConvertedName(original string, format domain.Format) string {
	base, _, _ := strings.Cut(original, ".")
	return base + "." + format.Extension()
}

func encodeForm(file File, format domain.Format, quality int) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := writer.WriteField("format", string(format)); err != nil {
		return nil, "", fmt.Errorf("write format field: %w", err)
	}
	if quality != 0 {
		if err := writer.WriteField("quality", strconv.Itoa(quality)); err != nil {
			return nil, "", fmt.Errorf("write quality field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart form: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

func classifyResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

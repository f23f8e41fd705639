package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	FormatJPG  Format = "jpg"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"

	DefaultFormat  = FormatJPEG
	DefaultQuality = 90
	MinQuality     = 1
	MaxQuality     = 100

	convertedBaseName = "converted"
)

// Format is the requested output encoding. The "jpg" spelling is kept as
// requested so it can be echoed back in the suggested file name.
type Format string

func ParseFormat(raw string) (Format, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return DefaultFormat, nil
	}

	switch f := Format(value); f {
	case FormatJPG, FormatJPEG, FormatPNG, FormatWebP:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

func (f Format) Normalize() Format {
	if f == FormatJPG {
		return FormatJPEG
	}
	return f
}

func (f Format) Extension() string {
	return string(f)
}

func (f Format) ContentType() string {
	return "image/" + string(f.Normalize())
}

// ParseQuality reads the leading integer of raw. Missing, non-numeric and
// zero values fall back to DefaultQuality; anything else is clamped into
// [MinQuality, MaxQuality].
func ParseQuality(raw string) int {
	value := strings.TrimSpace(raw)

	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return DefaultQuality
	}

	quality, err := strconv.Atoi(value[:end])
	if err != nil {
		// overflow
		if value[0] == '-' {
			return MinQuality
		}
		return MaxQuality
	}
	if quality == 0 {
		return DefaultQuality
	}
	return clamp(quality, MinQuality, MaxQuality)
}

type ConversionRequest struct {
	Data     []byte
	FileName string
	Format   Format
	Quality  int
}

type ConversionResult struct {
	Data        []byte
	ContentType string
	FileName    string
}

func (r ConversionRequest) Validate() error {
	if len(r.Data) == 0 || r.Format == "" {
		return NewValidationError(nil)
	}
	return nil
}

// Extension is the lowercase text after the final dot of the file name, or
// empty when the name has no dot.
func (r ConversionRequest) Extension() string {
	idx := strings.LastIndex(r.FileName, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(r.FileName[idx+1:])
}

func (r ConversionRequest) IsHEIF() bool {
	switch r.Extension() {
	case "heic", "heif":
		return true
	default:
		return false
	}
}

func (r ConversionRequest) SuggestedFileName() string {
	return convertedBaseName + "." + r.Format.Extension()
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

package domain

import (
	"errors"
	"net/http"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":       FormatJPEG,
		"jpg":    FormatJPG,
		"jpeg":   FormatJPEG,
		" PNG ":  FormatPNG,
		"webp":   FormatWebP,
		"WebP\n": FormatWebP,
	}
	for raw, want := range cases {
		got, err := ParseFormat(raw)
		if err != nil {
			t.Fatalf("ParseFormat(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", raw, got, want)
		}
	}

	for _, raw := range []string{"gif", "avif", "tiff", "jpe"} {
		if _, err := ParseFormat(raw); !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("ParseFormat(%q) expected ErrUnsupportedFormat, got %v", raw, err)
		}
	}
}

func TestFormatContentTypeNormalizesJPG(t *testing.T) {
	if FormatJPG.ContentType() != "image/jpeg" {
		t.Fatalf("expected image/jpeg for jpg, got %s", FormatJPG.ContentType())
	}
	if FormatJPEG.ContentType() != FormatJPG.ContentType() {
		t.Fatal("expected jpg and jpeg to share a content type")
	}
	if FormatWebP.ContentType() != "image/webp" {
		t.Fatalf("expected image/webp, got %s", FormatWebP.ContentType())
	}
	if FormatPNG.ContentType() != "image/png" {
		t.Fatalf("expected image/png, got %s", FormatPNG.ContentType())
	}
	if FormatJPG.Normalize() != FormatJPEG {
		t.Fatalf("expected jpg to normalize to jpeg, got %s", FormatJPG.Normalize())
	}
}

func TestParseQuality(t *testing.T) {
	cases := map[string]int{
		"":                     DefaultQuality,
		"abc":                  DefaultQuality,
		"0":                    DefaultQuality,
		"80":                   80,
		" 42 ":                 42,
		"75.9":                 75,
		"80abc":                80,
		"150":                  MaxQuality,
		"-5":                   MinQuality,
		"+10":                  10,
		"99999999999999999999": MaxQuality,
	}
	for raw, want := range cases {
		if got := ParseQuality(raw); got != want {
			t.Fatalf("ParseQuality(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestConversionRequestExtension(t *testing.T) {
	cases := map[string]string{
		"photo.HEIC":       "heic",
		"archive.tar.heif": "heif",
		"image.png":        "png",
		"noextension":      "",
		"trailing.":        "",
		"":                 "",
	}
	for name, want := range cases {
		req := ConversionRequest{FileName: name}
		if got := req.Extension(); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", name, got, want)
		}
	}

	if !(ConversionRequest{FileName: "IMG_0001.HEIC"}).IsHEIF() {
		t.Fatal("expected .HEIC to be treated as HEIF")
	}
	if (ConversionRequest{FileName: "heic"}).IsHEIF() {
		t.Fatal("expected a dotless name to skip HEIF decoding")
	}
}

func TestConversionRequestValidate(t *testing.T) {
	valid := ConversionRequest{Data: []byte{1}, FileName: "a.png", Format: FormatPNG, Quality: 90}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got error: %v", err)
	}

	for _, invalid := range []ConversionRequest{
		{Format: FormatPNG},
		{Data: []byte{1}},
	} {
		err := invalid.Validate()
		var convErr *Error
		if !errors.As(err, &convErr) {
			t.Fatalf("expected *Error, got %v", err)
		}
		if convErr.Message != MessageMissingInput {
			t.Fatalf("expected %q, got %q", MessageMissingInput, convErr.Message)
		}
		if convErr.HTTPStatus() != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", convErr.HTTPStatus())
		}
	}
}

func TestSuggestedFileNameKeepsRequestedSpelling(t *testing.T) {
	if got := (ConversionRequest{Format: FormatJPG}).SuggestedFileName(); got != "converted.jpg" {
		t.Fatalf("expected converted.jpg, got %s", got)
	}
	if got := (ConversionRequest{Format: FormatWebP}).SuggestedFileName(); got != "converted.webp" {
		t.Fatalf("expected converted.webp, got %s", got)
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")

	cases := []struct {
		err    *Error
		status int
		msg    string
	}{
		{NewValidationError(nil), http.StatusBadRequest, MessageMissingInput},
		{NewValidationError(ErrUnsupportedFormat), http.StatusBadRequest, MessageUnsupportedFormat},
		{NewDecodeError(cause), http.StatusInternalServerError, MessageDecodeFailed},
		{NewEncodeError(cause), http.StatusInternalServerError, MessageConvertFailed},
		{NewUnexpectedError(cause), http.StatusInternalServerError, MessageInternal},
	}
	for _, tc := range cases {
		if tc.err.HTTPStatus() != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.err.Kind, tc.status, tc.err.HTTPStatus())
		}
		if tc.err.Message != tc.msg {
			t.Fatalf("%s: expected message %q, got %q", tc.err.Kind, tc.msg, tc.err.Message)
		}
	}

	if !errors.Is(NewDecodeError(cause), cause) {
		t.Fatal("expected decode error to unwrap to its cause")
	}
}

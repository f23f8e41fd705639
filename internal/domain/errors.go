package domain

import (
	"errors"
	"net/http"
)

const (
	MessageMissingInput      = "File and format are required"
	MessageUnsupportedFormat = "Unsupported output format"
	MessageDecodeFailed      = "Failed to decode HEIC/HEIF"
	MessageConvertFailed     = "Failed to convert image"
	MessageInternal          = "Internal Server Error"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindDecode
	KindEncode
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return "unexpected"
	}
}

// Error is a conversion failure carrying the message that is safe to show to
// the caller. The wrapped cause is only ever logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	if e.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func NewValidationError(err error) *Error {
	if errors.Is(err, ErrUnsupportedFormat) {
		return &Error{Kind: KindValidation, Message: MessageUnsupportedFormat, Err: err}
	}
	return &Error{Kind: KindValidation, Message: MessageMissingInput, Err: err}
}

func NewDecodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: MessageDecodeFailed, Err: err}
}

func NewEncodeError(err error) *Error {
	return &Error{Kind: KindEncode, Message: MessageConvertFailed, Err: err}
}

func NewUnexpectedError(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: MessageInternal, Err: err}
}

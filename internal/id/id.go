package id

import (
	"strings"

	"github.com/google/uuid"
)

const maxInboundLength = 128

func New() string {
	return uuid.NewString()
}

// FromHeader keeps a caller supplied request ID when it is short and
// printable, otherwise it mints a new one.
func FromHeader(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxInboundLength {
		return New()
	}
	for _, r := range value {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return value
}

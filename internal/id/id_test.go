package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestFromHeader(t *testing.T) {
	if got := FromHeader("req-123"); got != "req-123" {
		t.Fatalf("expected inbound id to be kept, got %s", got)
	}

	for _, bad := range []string{"", "   ", "has space", "tab\tid", strings.Repeat("a", 200)} {
		got := FromHeader(bad)
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("FromHeader(%q) expected a generated uuid, got %q", bad, got)
		}
	}
}

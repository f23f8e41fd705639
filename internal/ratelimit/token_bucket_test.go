package ratelimit

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewTokenBucketValidatesConfig(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	if _, err := NewTokenBucket(nil, Config{Requests: 1, Window: time.Second}); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewTokenBucket(client, Config{Requests: 0, Window: time.Second}); err == nil {
		t.Fatal("expected error for zero requests")
	}
	if _, err := NewTokenBucket(client, Config{Requests: 1}); err == nil {
		t.Fatal("expected error for zero window")
	}

	bucket, err := NewTokenBucket(client, Config{Requests: 30, Window: time.Minute})
	if err != nil {
		t.Fatalf("new token bucket: %v", err)
	}
	if got := bucket.Key(" 10.0.0.1 "); got != "converter:ratelimit:10.0.0.1" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := bucket.Key(""); got != "converter:ratelimit:anonymous" {
		t.Fatalf("unexpected anonymous key %s", got)
	}
	if bucket.ttl != 2*time.Minute {
		t.Fatalf("expected ttl 2m, got %s", bucket.ttl)
	}
}

func TestParseDecision(t *testing.T) {
	decision, err := parseDecision([]any{int64(1), int64(4), int64(0)})
	if err != nil {
		t.Fatalf("parse decision: %v", err)
	}
	if !decision.Allowed || decision.Remaining != 4 || decision.RetryAfter != 0 {
		t.Fatalf("unexpected decision %+v", decision)
	}

	decision, err = parseDecision([]any{int64(0), "0", float64(1500)})
	if err != nil {
		t.Fatalf("parse decision: %v", err)
	}
	if decision.Allowed || decision.RetryAfter != 1500*time.Millisecond {
		t.Fatalf("unexpected decision %+v", decision)
	}

	if _, err := parseDecision([]any{int64(1)}); err == nil {
		t.Fatal("expected error for short response")
	}
	if _, err := parseDecision([]any{true, int64(1), int64(1)}); err == nil {
		t.Fatal("expected error for unsupported value type")
	}
}

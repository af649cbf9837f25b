package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// An unreachable server surfaces as an error, never as a silent miss.
func TestUnreachableServerErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := NewWithClient(client, time.Minute)
	defer s.Close()

	ctx := context.Background()
	var out map[string]string
	found, err := s.GetJSON(ctx, "k", &out)
	if err == nil || found {
		t.Fatalf("expected error, got found=%v err=%v", found, err)
	}
	if err := s.SetJSON(ctx, "k", map[string]string{"a": "b"}); err == nil {
		t.Fatalf("expected set error")
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("empty delete should be a no-op: %v", err)
	}
}

package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeRedis implements the SET/GET subset of the Upstash REST protocol.
type fakeRedis struct {
	mu       sync.Mutex
	values   map[string]string
	commands [][]any
}

func (f *fakeRedis) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer token" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"unauthorized"}`)
		return
	}

	var cmd []any
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.commands = append(f.commands, cmd)

	switch cmd[0] {
	case "SET":
		f.values[cmd[1].(string)] = cmd[2].(string)
		fmt.Fprint(w, `{"result":"OK"}`)
	case "GET":
		v, ok := f.values[cmd[1].(string)]
		if !ok {
			fmt.Fprint(w, `{"result":null}`)
			return
		}
		out, _ := json.Marshal(map[string]any{"result": v})
		_, _ = w.Write(out)
	default:
		fmt.Fprint(w, `{"error":"ERR unknown command"}`)
	}
}

func newTestUpstashSink(t *testing.T, token string, opts ...UpstashOption) (*UpstashSink, *fakeRedis) {
	t.Helper()
	redis := &fakeRedis{values: map[string]string{}}
	server := httptest.NewServer(redis)
	t.Cleanup(server.Close)

	opts = append([]UpstashOption{WithHTTPClient(server.Client())}, opts...)
	sink, err := NewUpstashSink(UpstashRedisConfig{URL: server.URL, Token: token}, opts...)
	if err != nil {
		t.Fatalf("NewUpstashSink() error = %v", err)
	}
	return sink, redis
}

func TestUpstashSinkRoundTrip(t *testing.T) {
	t.Parallel()

	sink, redis := newTestUpstashSink(t, "token", WithTTL(90*time.Minute))
	rep := successReport()

	if err := sink.Deliver(context.Background(), rep); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	redis.mu.Lock()
	set := redis.commands[0]
	redis.mu.Unlock()
	if set[0] != "SET" || set[1] != "ter:run:run-1" || set[3] != "EX" || set[4] != 5400.0 {
		t.Fatalf("unexpected SET command: %#v", set)
	}

	got, err := sink.Load(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Query != rep.Query || got.Result != 14.0 || len(got.Trace) != 2 || got.Plan == nil {
		t.Fatalf("unexpected report: %#v", got)
	}
}

func TestUpstashSinkLoadMissing(t *testing.T) {
	t.Parallel()

	sink, _ := newTestUpstashSink(t, "token", WithKeyPrefix("custom:"))
	if _, err := sink.Load(context.Background(), "nope"); !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	if _, err := sink.Load(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestUpstashSinkHTTPError(t *testing.T) {
	t.Parallel()

	sink, _ := newTestUpstashSink(t, "wrong")
	if err := sink.Deliver(context.Background(), successReport()); err == nil {
		t.Fatal("expected error for rejected token")
	}
}

func TestNewUpstashSinkValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewUpstashSink(UpstashRedisConfig{Token: "t"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := NewUpstashSink(UpstashRedisConfig{URL: "https://x.upstash.io"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewUpstashSink(UpstashRedisConfig{URL: "https://x.upstash.io", Token: "t"}, WithTTL(-time.Second)); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestTTLSeconds(t *testing.T) {
	t.Parallel()

	if got := ttlSeconds(1500 * time.Millisecond); got != 2 {
		t.Fatalf("ttlSeconds() = %d, want 2", got)
	}
	if got := ttlSeconds(time.Millisecond); got != 1 {
		t.Fatalf("ttlSeconds() = %d, want 1", got)
	}
}

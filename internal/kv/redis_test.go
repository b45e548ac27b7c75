package kv_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/p-n-ai/apprentice/internal/kv"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
		{"wrong-scheme", "http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kv.ParseRedisURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseRedisURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRedisStore_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	_, err := kv.NewRedisStore(t.Context(), "redis://localhost:59999")
	if err == nil {
		t.Fatal("NewRedisStore() should return error for unreachable host")
	}
}

func TestRedisStore_UnreachableIsUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        "localhost:59999",
		DialTimeout: time.Second,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	s := kv.NewRedisStoreFromClient(client)

	if _, _, err := s.Get("k"); !errors.Is(err, kv.ErrUnavailable) {
		t.Errorf("Get() error = %v, want ErrUnavailable", err)
	}
	if err := s.Set("k", "v"); !errors.Is(err, kv.ErrUnavailable) {
		t.Errorf("Set() error = %v, want ErrUnavailable", err)
	}
	err := s.Update("k", func(string, bool) (string, bool, error) { return "v", true, nil })
	if !errors.Is(err, kv.ErrUnavailable) {
		t.Errorf("Update() error = %v, want ErrUnavailable", err)
	}
}

func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := t.Context()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	addr, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	s := kv.NewRedisStoreFromClient(client)
	if err := s.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v; want not found", ok, err)
	}
	if err := s.Set("k", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, ok, _ := s.Get("k"); !ok || v != "v1" {
		t.Errorf("Get(k) = %q, %v; want v1", v, ok)
	}

	// A write=false update leaves the key alone.
	err = s.Update("k", func(current string, ok bool) (string, bool, error) {
		return "ignored", false, nil
	})
	if err != nil {
		t.Fatalf("Update(no write) error = %v", err)
	}
	if v, _, _ := s.Get("k"); v != "v1" {
		t.Errorf("value after no-op update = %q, want v1", v)
	}

	errRejected := errors.New("rejected")
	err = s.Update("k", func(string, bool) (string, bool, error) { return "", false, errRejected })
	if !errors.Is(err, errRejected) || errors.Is(err, kv.ErrUnavailable) {
		t.Errorf("Update(fn error) = %v, want the function's error unwrapped", err)
	}

	// Concurrent appends race on WATCH; retries must not lose any of them.
	const writers = 8
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update("counter", func(current string, ok bool) (string, bool, error) {
				return current + "x", true, nil
			})
			if err != nil {
				t.Errorf("Update() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if v, _, _ := s.Get("counter"); v != strings.Repeat("x", writers) {
		t.Errorf("counter = %q, want %d appends", v, writers)
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("key still present after Delete")
	}
}

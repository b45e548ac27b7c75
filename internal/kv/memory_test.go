package kv_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/apprentice/internal/kv"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	s := kv.NewMemoryStore()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
	}

	if err := s.Set("a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := s.Get("a")
	if err != nil || !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v, %v; want 1, true, nil", v, ok, err)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get("a"); ok {
		t.Error("Get(a) found value after Delete")
	}
}

func TestMemoryStore_UpdateSkipsWrite(t *testing.T) {
	s := kv.NewMemoryStore()
	_ = s.Set("k", "old")

	err := s.Update("k", func(current string, ok bool) (string, bool, error) {
		if !ok || current != "old" {
			t.Errorf("Update saw %q, %v; want old, true", current, ok)
		}
		return "ignored", false, nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	v, _, _ := s.Get("k")
	if v != "old" {
		t.Errorf("value = %q, want old", v)
	}
}

func TestMemoryStore_UpdateError(t *testing.T) {
	s := kv.NewMemoryStore()
	boom := errors.New("boom")

	err := s.Update("k", func(string, bool) (string, bool, error) {
		return "x", true, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("failed Update should not write")
	}
}

func TestMemoryStore_Quota(t *testing.T) {
	s := kv.NewMemoryStoreWithQuota(10)

	if err := s.Set("k", "12345"); err != nil {
		t.Fatalf("Set() within quota error = %v", err)
	}
	if err := s.Set("k2", "123456789"); !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("Set() over quota error = %v, want ErrQuotaExceeded", err)
	}
	// Replacing a value only counts the difference.
	if err := s.Set("k", "1234567"); err != nil {
		t.Fatalf("Set() replacing within quota error = %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Set("k2", "12345678"); err != nil {
		t.Fatalf("Set() after Delete error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    kv.Options
		wantErr bool
	}{
		{"default", kv.Options{}, false},
		{"memory", kv.Options{Backend: kv.BackendMemory, MemoryQuota: 64}, false},
		{"file", kv.Options{Backend: kv.BackendFile, FilePath: t.TempDir() + "/p.json"}, false},
		{"file-no-path", kv.Options{Backend: kv.BackendFile}, true},
		{"postgres-no-pool", kv.Options{Backend: kv.BackendPostgres}, true},
		{"redis-no-url", kv.Options{Backend: kv.BackendRedis}, true},
		{"unknown", kv.Options{Backend: "sqlite"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kv.Open(t.Context(), tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

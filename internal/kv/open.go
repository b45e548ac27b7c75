package kv

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	FilePath    string
	MemoryQuota int
	RedisURL    string
	Pool        *pgxpool.Pool
}

// Open constructs the Store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		if opts.MemoryQuota > 0 {
			return NewMemoryStoreWithQuota(opts.MemoryQuota), nil
		}
		return NewMemoryStore(), nil
	case BackendFile:
		return nonNil(NewFileStore(opts.FilePath))
	case BackendRedis:
		return nonNil(NewRedisStore(ctx, opts.RedisURL))
	case BackendPostgres:
		return nonNil(NewPostgresStore(opts.Pool))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// nonNil keeps a failed constructor from returning a typed nil inside Store.
func nonNil[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

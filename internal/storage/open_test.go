package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"portal-analytics/internal/config"
)

func TestOpenBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{StorageBackend: config.StorageMemory}},
		{"file", config.Config{StorageBackend: config.StorageFile, StorageDir: t.TempDir()}},
		{"redis", config.Config{StorageBackend: config.StorageRedis, RedisURL: "redis://" + mr.Addr(), RedisKeyPrefix: "t:"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			store, closeFn, err := Open(&cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer closeFn()
			ctx := context.Background()
			if err := store.Set(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := store.Get(ctx, "k")
			if err != nil || string(got) != "v" {
				t.Fatalf("get: %q %v", got, err)
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, closeFn, err := Open(&config.Config{StorageBackend: "tape"})
	if err == nil {
		t.Fatal("expected error")
	}
	if closeFn == nil {
		t.Fatal("close func must not be nil")
	}
}

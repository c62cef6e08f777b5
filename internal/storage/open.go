package storage

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"portal-analytics/internal/config"
)

// Open builds the store selected by STORAGE_BACKEND. The returned close
// function is never nil.
func Open(cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StorageBackend {
	case config.StorageMemory:
		log.Info().Msg("using in-memory storage")
		return NewMemoryStore(), noop, nil
	case config.StorageRedis:
		rs, err := NewRedisStore(cfg.RedisURL, cfg.RedisKeyPrefix)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("prefix", cfg.RedisKeyPrefix).Msg("using redis storage")
		return rs, rs.Close, nil
	case config.StorageFile, "":
		fs, err := NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("dir", cfg.StorageDir).Msg("using file storage")
		return fs, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

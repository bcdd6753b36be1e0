package main

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/registry"
	"github.com/cory-johannsen/wasteland/internal/storage/postgres"
	"github.com/cory-johannsen/wasteland/internal/storage/redisstore"
	"github.com/cory-johannsen/wasteland/internal/storage/yamlstore"
)

var (
	_ registry.Store = (*yamlstore.Store)(nil)
	_ registry.Store = (*postgres.CharacterStore)(nil)
	_ registry.Store = (*redisstore.Store)(nil)
)

// openStore connects the backend selected by cfg.Storage.Backend.
//
// Postcondition: Returns a Store and its release func, or a non-nil error.
func openStore(ctx context.Context, cfg config.Config) (registry.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendYAML:
		s, err := yamlstore.Open(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening yaml store: %w", err)
		}
		return s, func() {}, nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return postgres.NewCharacterStore(pool.DB()), pool.Close, nil
	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

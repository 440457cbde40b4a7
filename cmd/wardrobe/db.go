package main

import (
	"context"

	"wardrobe/internal/config"
	"wardrobe/internal/store"
	"wardrobe/internal/store/postgres"
	"wardrobe/internal/store/sqlite"
)

func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	backend, err := config.Backend(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if backend == "postgres" {
		client, err := postgres.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	client, err := sqlite.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	return client, nil
}

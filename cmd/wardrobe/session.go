package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wardrobe/internal/config"
	"wardrobe/internal/dispatch"
	"wardrobe/internal/host"
	"wardrobe/internal/host/memhost"
	"wardrobe/internal/logging"
	"wardrobe/internal/monitor"
	"wardrobe/internal/service"
	"wardrobe/internal/store"
)

// defaultPlayer is used when the project has no world file.
const defaultPlayer = host.CharacterID("player")

// session is a loaded project: config, logger, store, world and service.
// Commands other than serve drive the service from the main goroutine,
// which makes it the apply context.
type session struct {
	cfg    *config.ProjectConfig
	logger *zap.Logger
	db     store.Store
	world  *memhost.World
	runner *dispatch.Runner
	svc    *service.Service
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadProjectConfig(config.FileName)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Extra: cfg.Log.Extra})
	if err != nil {
		return nil, err
	}

	world, err := loadWorld(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	runner := dispatch.NewRunner(dispatch.DefaultQueueSize, logger.Named("apply"))
	opts := service.Options{Monitor: monitor.Options{Tick: cfg.Monitor.Tick, Interval: cfg.Monitor.Interval}}
	svc := service.New(world, runner, opts, logger)
	if err := svc.Load(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, db: db, world: world, runner: runner, svc: svc}, nil
}

func loadWorld(cfg *config.ProjectConfig) (*memhost.World, error) {
	if cfg.World == "" {
		return memhost.New(defaultPlayer), nil
	}
	return memhost.Load(cfg.World)
}

func (s *session) save(ctx context.Context) error {
	return s.svc.Save(ctx, s.db)
}

func (s *session) close(ctx context.Context) {
	s.db.Close(ctx)
	_ = s.logger.Sync()
}

// withSession opens the project, runs fn and saves when fn succeeds and
// save is set.
func withSession(save bool, fn func(ctx context.Context, s *session) error) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	if err := fn(ctx, s); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return s.save(ctx)
}

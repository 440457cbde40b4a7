package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wardrobe/internal/host/memhost"
	"wardrobe/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	var watchWorld bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio and watch tracked characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(watchWorld)
		},
	}
	cmd.Flags().BoolVar(&watchWorld, "watch-world", false, "Reload the world file when it changes")
	return cmd
}

func runServe(watchWorld bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mon := s.svc.Monitor()
	server := mcp.NewServer(s.svc, s.runner, version)

	s.runner.Post(func() {
		s.svc.UpdateAll("session start")
		mon.ResetState()
		mon.Start()
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.runner.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		mon.Stop()
		return nil
	})
	if watchWorld && s.cfg.World != "" {
		g.Go(func() error {
			return memhost.Watch(gctx, s.cfg.World, func(next *memhost.World) {
				if !s.runner.Post(func() { s.world.Sync(next) }) {
					s.logger.Warn("apply queue full, dropping world reload")
				}
			}, s.logger.Named("world"))
		})
	}
	g.Go(func() error {
		// the client closing stdin ends the session
		defer cancel()
		return server.Run(gctx, &sdk.StdioTransport{})
	})

	runErr := g.Wait()
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	// a start posted just before shutdown may have raced the stop above
	mon.Stop()

	if err := s.save(context.Background()); err != nil {
		s.logger.Error("saving state failed", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

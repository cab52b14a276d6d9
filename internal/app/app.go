// Package app runs a configured simulation from start to finish.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/internal/server"
	"github.com/chrissnell/maizsim/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger

	// OnStart, if set, is called with the expected number of steps once
	// the run is built. OnStep is called after every step.
	OnStart func(total int)
	OnStep  func(step int)
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         log.OrNop(logger),
	}
}

// Run loads the configuration and simulates until the end date, the
// death of the plant or a shutdown signal.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sim, err := NewSimulation(cfg, a.logger)
	if err != nil {
		return err
	}

	if cfg.Run.Server.Enabled {
		srv := server.New(ctx, &wg, server.Config{
			ListenAddr: cfg.Run.Server.ListenAddr,
			Port:       cfg.Run.Server.Port,
		}, sim.Recorder(), sim.Metrics().Handler(), a.logger.Named("server"))
		if err := srv.Start(); err != nil {
			sim.Close()
			return err
		}
	}

	a.logger.Infow("simulation started",
		"run", cfg.Run.Name,
		"run_id", sim.Recorder().RunID(),
		"variety", cfg.Variety.Name,
		"sowing", cfg.Initials.SowingDate.String(),
		"end", cfg.Initials.EndDate.String(),
	)
	if a.OnStart != nil {
		a.OnStart(sim.TotalSteps())
	}

	runErr := sim.Run(ctx.Done(), a.OnStep)
	closeErr := sim.Close()

	state := sim.Plant().State()
	a.logger.Infow("simulation finished",
		"steps", sim.Steps(),
		"reports", sim.Recorder().Written(),
		"stage", sim.Plant().Pheno.CurrentStage(),
		"total_mass", state.Mass.Total(),
		"ear_mass", state.Mass.Ear,
	)

	// Stop the status server and wait for it to terminate
	cancel()
	wg.Wait()

	if err := errors.Join(runErr, closeErr); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/soundscape/internal/bridge"
	"github.com/udisondev/soundscape/internal/command"
	"github.com/udisondev/soundscape/internal/config"
	"github.com/udisondev/soundscape/internal/db"
	"github.com/udisondev/soundscape/internal/engine"
	"github.com/udisondev/soundscape/internal/region"
)

const (
	ServerConfigPath = "config/server.yaml"
	writerQueueSize  = 4096
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ServerConfigPath
	if p := os.Getenv("SOUNDSCAPE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating server config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("soundscape starting", "log_level", cfg.LogLevel, "config", cfgPath)

	soundsPath := cfg.SoundsPath
	if p := os.Getenv("SOUNDSCAPE_SOUNDS"); p != "" {
		soundsPath = p
	}
	sounds, err := config.LoadSounds(soundsPath)
	if err != nil {
		return fmt.Errorf("loading sounds: %w", err)
	}

	repo, closeRepo, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeRepo()

	regions, err := repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading regions: %w", err)
	}

	writer := db.NewAsyncWriter(repo, writerQueueSize)
	// engine останавливается раньше, затем дописываем очередь
	defer writer.Close()

	store := region.NewStore(regionLimits(cfg.Regions), writer)
	store.Load(regions)

	hub := bridge.NewHub()
	eng, err := engine.New(engine.ConfigFromServer(cfg), store, sounds, hub)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	handler := command.NewHandler(eng, command.Options{SoundsPerPage: cfg.List.MaxPerPage})
	srv := bridge.NewServer(cfg.Bridge, eng, handler, hub)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting engine", "tick_rate", cfg.TickRate, "regions", store.Len())
		if err := eng.Run(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("engine: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		addr := net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))
		if err := srv.Run(gctx, addr); err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		reloadOnHangup(gctx, eng, cfgPath, soundsPath)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("soundscape stopped", "dropped_frames", hub.Dropped())
	return nil
}

// reloadOnHangup reloads sounds, region limits and the reloadable engine
// settings on SIGHUP.
func reloadOnHangup(ctx context.Context, eng *engine.Engine, cfgPath, soundsPath string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
		}

		sounds, err := config.LoadSounds(soundsPath)
		if err != nil {
			slog.Error("reload failed", "error", err)
			continue
		}
		cfg, err := config.LoadServer(cfgPath)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			slog.Error("reload failed", "error", err)
			continue
		}

		err = eng.Call(ctx, func() error {
			if err := eng.Reload(sounds); err != nil {
				return err
			}
			eng.Store().SetLimits(regionLimits(cfg.Regions))
			eng.Reconfigure(engine.ConfigFromServer(cfg))
			return nil
		})
		if err != nil {
			slog.Error("reload failed", "error", err)
			continue
		}
		slog.Info("configuration reloaded", "sounds", soundsPath)
	}
}

func regionLimits(c config.RegionsConfig) region.Limits {
	return region.Limits{
		MaxRegions:           c.MaxRegions,
		MaxArea:              c.MaxArea,
		MaxNameLength:        c.MaxNameCharacters,
		MaxDescriptionLength: c.MaxDescriptionCharacters,
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

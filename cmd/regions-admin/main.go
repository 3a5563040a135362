// Command regions-admin exports and imports region snapshots.
//
//	regions-admin export -o regions.jsonl.zst
//	regions-admin import -i regions.jsonl.zst
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/soundscape/internal/config"
	"github.com/udisondev/soundscape/internal/db"
)

const ServerConfigPath = "config/server.yaml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	var err error
	switch os.Args[1] {
	case "export":
		err = exportCmd(ctx, os.Args[2:])
	case "import":
		err = importCmd(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("regions-admin failed", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: regions-admin export|import [-config path] [-o|-i file]")
}

func loadStorage(path string) (config.StorageConfig, error) {
	if p := os.Getenv("SOUNDSCAPE_CONFIG"); p != "" && path == ServerConfigPath {
		path = p
	}
	cfg, err := config.LoadServer(path)
	if err != nil {
		return config.StorageConfig{}, fmt.Errorf("loading server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.StorageConfig{}, fmt.Errorf("validating server config: %w", err)
	}
	return cfg.Database, nil
}

func exportCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", ServerConfigPath, "server config path")
	out := fs.String("o", "regions.jsonl.zst", "output snapshot path")
	_ = fs.Parse(args)

	storage, err := loadStorage(*cfgPath)
	if err != nil {
		return err
	}
	repo, closeRepo, err := db.Open(ctx, storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	regions, err := repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading regions: %w", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *out, err)
	}
	if err := db.WriteSnapshot(f, regions); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", *out, err)
	}

	slog.Info("regions exported", "regions", len(regions), "path", *out)
	return nil
}

func importCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", ServerConfigPath, "server config path")
	in := fs.String("i", "regions.jsonl.zst", "snapshot path")
	_ = fs.Parse(args)

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *in, err)
	}
	defer f.Close()

	header, regions, err := db.ReadSnapshot(f)
	if err != nil {
		return err
	}

	storage, err := loadStorage(*cfgPath)
	if err != nil {
		return err
	}
	repo, closeRepo, err := db.Open(ctx, storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	saved, skipped, err := db.ImportRegions(ctx, repo, regions)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		slog.Warn("region skipped, name taken", "region", name)
	}
	slog.Info("regions imported", "saved", saved, "skipped", len(skipped), "written_at", header.WrittenAt)
	return nil
}

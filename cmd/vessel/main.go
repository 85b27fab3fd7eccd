package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vesselhq/vessel/internal/providers/notification"
	"github.com/vesselhq/vessel/internal/providers/storage"
	"github.com/vesselhq/vessel/internal/runtime"
	"github.com/vesselhq/vessel/internal/shell"
)

func main() {
	manifest := flag.String("manifest", "", "Packaged configuration path (overrides MANIFEST env)")
	dataDir := flag.String("data-dir", "", "Application data directory override")
	dev := flag.Bool("dev", false, "Development mode: verbose logging and manifest reload")
	flag.Parse()

	b := shell.Default()
	logger := b.Logger()

	cfg := b.Config()
	if *manifest != "" {
		cfg.App.ManifestPath = *manifest
	}
	if *dataDir != "" {
		cfg.App.DataDir = *dataDir
	}
	if *dev {
		cfg.App.Development = true
	}

	rt, err := runtime.Generate(cfg.App.ManifestPath, runtime.Options{
		DataDir:     cfg.App.DataDir,
		Development: cfg.App.Development,
	})
	if err != nil {
		logger.Fatal("Failed to generate runtime context",
			zap.String("manifest", cfg.App.ManifestPath),
			zap.Error(err),
		)
	}
	if err := rt.EnsureDataDir(); err != nil {
		logger.Fatal("Failed to prepare data directory", zap.Error(err))
	}

	store, err := storage.OpenStore(rt.DataDir)
	if err != nil {
		logger.Fatal("Failed to open storage engine",
			zap.String("data_dir", rt.DataDir),
			zap.Error(err),
		)
	}

	// Registration order matters: storage first, notifications second.
	b.Plugin(storage.NewProvider(store)).
		Plugin(notification.NewProvider(rt.App.ProductName, rt.Icon())).
		Manage(store)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		b.Stop()
	}()

	if err := b.Run(rt); err != nil {
		logger.Fatal("Error while running application", zap.Error(err))
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bricklabels.dev/internal/bridge"
	"bricklabels.dev/internal/config"
	"bricklabels.dev/internal/label"
	"bricklabels.dev/internal/persistence/kv"
	"bricklabels.dev/internal/service"
)

const pluginName = "bricklabels"

func main() {
	var (
		hostURL    = flag.String("host_url", "ws://127.0.0.1:7777/plugin", "host plugin socket url")
		configPath = flag.String("config", "./configs/labeld.yaml", "config path")
		dataDir    = flag.String("data", "./data", "runtime data directory")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[labeld] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	settings, err := kv.OpenSQLite(filepath.Join(*dataDir, "labels.db"))
	if err != nil {
		logger.Fatalf("open settings store: %v", err)
	}
	defer settings.Close()

	store := label.NewStore(settings)
	if err := store.Load(); err != nil {
		logger.Fatalf("load labels: %v", err)
	}
	logger.Printf("loaded %d labels", store.Len())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	for ctx.Err() == nil {
		err := runOnce(ctx, *hostURL, cfg, store, *dataDir, logger)
		if ctx.Err() != nil {
			break
		}
		logger.Printf("bridge: %v; reconnecting in 5s", err)
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
		}
	}
	logger.Printf("shutting down")
}

func runOnce(ctx context.Context, hostURL string, cfg config.Config, store *label.Store, dataDir string, logger *log.Logger) error {
	client, err := bridge.Dial(ctx, hostURL, pluginName, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	logger.Printf("connected to %s (host player %s)", hostURL, client.Welcome().Host.Name)

	readErr := make(chan error, 1)
	go func() { readErr <- client.Run(ctx) }()

	svc := service.New(cfg, store, client, dataDir, logger)
	if err := svc.Run(ctx, client.Events()); err != nil {
		return err
	}
	// Event channel closed: surface the read loop's error.
	return <-readErr
}

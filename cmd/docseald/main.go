package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"docseal/go-backend/internal/api"
	"docseal/go-backend/internal/gateway"
	"docseal/go-backend/internal/identity"
	"docseal/go-backend/internal/observability"
	"docseal/go-backend/internal/platform/privacylog"
	"docseal/go-backend/internal/service"
	"docseal/go-backend/internal/storage"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	dataDir := flag.String("data-dir", "", "Directory for daemon local data (overrides config)")
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides config)")
	keysPath := flag.String("keys", "", "Path to the identity key-pair file")
	flag.Parse()
	if *showVersion {
		fmt.Printf("docseald version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := gateway.LoadFromPath(*configPath)
	if err != nil {
		log.Fatalf("docseald config invalid: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	logger := slog.New(privacylog.WrapHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	))

	keyFile := *keysPath
	if keyFile == "" {
		keyFile = filepath.Join(cfg.DataDir, "identity.json")
	}
	passphrase := os.Getenv("DOCSEAL_PASSPHRASE")
	owner, err := identity.LoadKeyPairFile(keyFile, passphrase)
	if err != nil {
		log.Fatalf("docseald failed to load identity key pair from %s: %v (run docseal-keygen first)", keyFile, err)
	}

	records, err := storage.NewRecordStore(filepath.Join(cfg.DataDir, "records.json"), passphrase)
	if err != nil {
		log.Fatalf("docseald failed to open record store: %v", err)
	}
	access, err := storage.NewAccessStore(filepath.Join(cfg.DataDir, "access.json"), passphrase)
	if err != nil {
		log.Fatalf("docseald failed to open access store: %v", err)
	}
	blobs, err := storage.NewBlobStore(filepath.Join(cfg.DataDir, "blobs"))
	if err != nil {
		log.Fatalf("docseald failed to open blob store: %v", err)
	}

	svc, err := service.New(service.Options{
		Config:     cfg,
		Owner:      owner,
		Logger:     logger,
		Records:    records,
		Access:     access,
		Blobs:      blobs,
		Metrics:    observability.NewMetrics(),
		ShareRPS:   5,
		ShareBurst: 20,
	})
	if err != nil {
		log.Fatalf("docseald failed to initialize: %v", err)
	}

	log.Println("docseald starting")
	if err := api.NewServer(cfg.ListenAddr, svc, logger).Run(ctx); err != nil {
		log.Fatalf("docseald failed: %v", err)
	}
	log.Println("docseald stopped")
}

package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/cad-normalizer/internal/api"
	"github.com/ignite/cad-normalizer/internal/config"
	"github.com/ignite/cad-normalizer/internal/ingest"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/storage"
	"github.com/ignite/cad-normalizer/internal/template"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := "config/config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	// Pre-flight check: verify the target port is available
	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	logger.Info("pre-flight check passed", "port", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize template storage
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("template storage initialized", "type", cfg.Storage.Type)

	// Load the vendor fingerprint table
	fingerprints := template.DefaultFingerprints()
	if cfg.Vendors.FingerprintFile != "" {
		fingerprints, err = template.LoadFingerprints(cfg.Vendors.FingerprintFile)
		if err != nil {
			log.Fatalf("Failed to load vendor fingerprints: %v", err)
		}
		logger.Info("vendor fingerprints loaded",
			"file", cfg.Vendors.FingerprintFile, "vendors", len(fingerprints))
	}
	detector := template.NewVendorDetector(fingerprints)

	// Start the S3 export watcher if configured
	var watcher *ingest.Watcher
	if cfg.Ingest.Enabled {
		processor := ingest.NewProcessor(
			detector,
			template.NewMatcher(store),
			template.NewApplier(store),
			cfg.Ingest.TargetTool,
		)
		watcher, err = ingest.NewWatcher(ctx, cfg.Ingest, processor)
		if err != nil {
			log.Fatalf("Failed to initialize export watcher: %v", err)
		}
		watcher.Start()
		logger.Info("export watcher started",
			"bucket", cfg.Ingest.S3Bucket, "interval_minutes", cfg.Ingest.IntervalMinutes)
	} else {
		logger.Info("export watcher disabled")
	}

	handlers := api.NewHandlers(store, detector)
	router := api.SetupRoutes(handlers, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	if watcher != nil {
		watcher.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err.Error())
	}
	logger.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"freightsnap/internal/config"
	"freightsnap/internal/extractor"
	"freightsnap/internal/extractor/groq"
	"freightsnap/internal/extractor/openai"
	"freightsnap/internal/handler"
	"freightsnap/internal/license"
	"freightsnap/internal/pdftext"
	"freightsnap/internal/pipeline"
	"freightsnap/internal/port"
	"freightsnap/internal/router"
	"freightsnap/internal/session"
	"freightsnap/internal/usage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Register AI normalizer providers
	extractor.RegisterProvider("groq", func(pc *config.ProviderConfig) (port.Normalizer, error) {
		return groq.NewNormalizer(pc), nil
	})
	extractor.RegisterProvider("openai", func(pc *config.ProviderConfig) (port.Normalizer, error) {
		return openai.NewNormalizer(pc), nil
	})

	normalizer, err := buildNormalizer(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize AI normalizer: %w", err)
	}

	// Initialize the extraction pipeline
	textExtractor := pdftext.NewExtractor()
	processor := pipeline.NewRouter(textExtractor, normalizer)

	// Initialize metering, licensing, and sessions
	meter := usage.NewMeter(cfg.FreeTier.DailyLimit)
	verifier := license.NewGumroadClient(cfg.License)
	manager := session.NewManager(processor, meter, cfg.Session)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		manager.StartSweeper(ctx)
	}()

	// Initialize handlers
	sessionH := handler.NewSessionHandler(manager, cfg.Session)
	fileH := handler.NewFileHandler(cfg.Session)
	exportH := handler.NewExportHandler()
	licenseH := handler.NewLicenseHandler(verifier)
	usageH := handler.NewUsageHandler(meter, cfg.FreeTier.DailyLimit)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(cfg, manager, sessionH, fileH, exportH, licenseH, usageH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Stop the sweeper; it closes all sessions and drains their workers.
	stop()
	<-sweeperDone

	return nil
}

// buildNormalizer creates the primary provider and, when a secondary is
// configured, wraps both in a fallback chain with a rate-limit circuit.
func buildNormalizer(cfg *config.ExtractorConfig) (port.Normalizer, error) {
	primary, err := extractor.New(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := extractor.New(secondaryCfg)
	if err != nil {
		return nil, err
	}

	return extractor.NewFallbackNormalizer(
		[]port.Normalizer{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}

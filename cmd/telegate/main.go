// Command telegate runs the Telegram Web login automation service: a
// headless browser driven through a small HTTP control API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegate/pkg/browser"
	"telegate/pkg/config"
	"telegate/pkg/login"
	"telegate/pkg/server"
	"telegate/pkg/store"
)

const version = "0.1.0"

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		listenAddr  = flag.String("listen", "", "HTTP listen address (overrides config)")
		storePath   = flag.String("store", "", "SQLite accounts database path (overrides config)")
		dataDir     = flag.String("data-dir", "", "Directory for diagnostics and exports (overrides config)")
		headed      = flag.Bool("headed", false, "Run the browser with a visible window")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("telegate %s\n", version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *headed {
		cfg.Headless = false
	}

	if err := run(cfg, log); err != nil {
		log.Error("telegate exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	driver := browser.New(browser.Options{
		Headless: cfg.Headless,
		Timeout:  cfg.StepTimeout.Std(),
	})
	defer func() {
		if err := driver.Close(); err != nil {
			log.Warn("browser shutdown failed", "error", err)
		}
	}()

	var accounts *store.Store
	if cfg.StorePath != "" {
		var err error
		accounts, err = store.Open(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("failed to open account store: %w", err)
		}
		defer func() {
			if err := accounts.Close(); err != nil {
				log.Warn("store shutdown failed", "error", err)
			}
		}()
		log.Info("account store opened", "path", cfg.StorePath)
	} else {
		log.Warn("no store path configured, accounts will not be persisted")
	}

	// A nil *store.Store must become a nil interface
	var managerStore login.Store
	var lister server.AccountLister
	if accounts != nil {
		managerStore = accounts
		lister = accounts
	}

	manager := login.NewManager(driver, managerStore, login.Options{
		EntryURL:    cfg.EntryURL,
		DataDir:     cfg.DataDir,
		StepTimeout: cfg.StepTimeout.Std(),
	}, log)

	srv := server.New(manager, lister, cfg.WebDir, log)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("control server listening", "addr", cfg.ListenAddr, "entry_url", cfg.EntryURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("control server failed: %w", err)
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

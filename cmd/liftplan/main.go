package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	"tailscale.com/tsnet"

	"github.com/meltforce/liftplan/internal/config"
	"github.com/meltforce/liftplan/internal/gencache"
	lpmcp "github.com/meltforce/liftplan/internal/mcp"
	"github.com/meltforce/liftplan/internal/metrics"
	"github.com/meltforce/liftplan/internal/server"
	"github.com/meltforce/liftplan/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)
	log.Info("liftplan starting", "version", Version)

	if err := run(cfg, *migrateOnly, log); err != nil {
		log.Error("liftplan failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// newLogger writes to stdout and, when a log file is configured, to a
// size-rotated copy of it.
func newLogger(c config.LogConfig) *slog.Logger {
	var out io.Writer = os.Stdout
	if c.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename: c.File,
			MaxSize:  c.MaxSizeMB,
			Compress: c.Compress,
		})
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func run(cfg *config.Config, migrateOnly bool, log *slog.Logger) error {
	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, cfg.Database.Migrations); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations applied")

	if migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect database
	db, err := storage.New(ctx, dsn, storage.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MaxConnIdleTime: 5 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer db.Close()
	log.Info("database connected")

	registry := metrics.NewRegistry(pgxpoolprometheus.NewCollector(db.Pool, map[string]string{"db_name": cfg.Database.Name}))

	var cache *gencache.Cache
	if cfg.Cache.SizeMB > 0 {
		cache, err = gencache.New(cfg.Cache.SizeMB<<20, time.Hour)
		if err != nil {
			return fmt.Errorf("creating generation cache: %w", err)
		}
	}

	srv := server.New(db, server.Options{
		APIKey:       cfg.Auth.APIKey,
		HistoryLimit: cfg.History.Limit,
		Cache:        cache,
		Registry:     registry,
	}, log)
	srv.MountMCP(lpmcp.New(srv.Programs(), Version, log))

	// Start server on tsnet or plain TCP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			return fmt.Errorf("tsnet local client: %w", err)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

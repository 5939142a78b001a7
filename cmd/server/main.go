package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/easycodehow/spark/internal/config"
	"github.com/easycodehow/spark/internal/logging"
	mcpserver "github.com/easycodehow/spark/internal/mcp"
	"github.com/easycodehow/spark/internal/memos"
	"github.com/easycodehow/spark/internal/offline"
	"github.com/easycodehow/spark/internal/storage"
	"github.com/easycodehow/spark/internal/ui"
	"github.com/easycodehow/spark/internal/web"
)

//go:embed static
var staticFS embed.FS

func main() {
	configFile := flag.String("config", "", "path to a config file (default: spark.{json,yaml} in . or ~/.spark)")
	flag.Parse()

	// Config
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Logger
	logger, err := logging.New(cfg.Production(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Storage
	kv, closeKV, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeKV()

	// Wire dependencies
	store := memos.NewStore(kv, memos.WithDateLayout(cfg.DateLayout))
	if err := store.LoadAll(ctx); err != nil {
		if !errors.Is(err, memos.ErrCorruptSnapshot) {
			logger.Fatal("failed to load memos", zap.Error(err))
		}
		logger.Warn("stored memos were unreadable, starting empty", zap.Error(err))
	}
	logger.Info("memos loaded", zap.Int("count", store.Len()))

	ctrl := ui.NewController(store, kv, logger)
	if err := ctrl.LoadPreferences(ctx); err != nil {
		logger.Warn("failed to load preferences", zap.Error(err))
	}

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to get static fs: %v", err)
	}
	assets := web.Assets(sub)

	worker, err := newWorker(cfg, assets, logger)
	if err != nil {
		logger.Fatal("failed to create offline worker", zap.Error(err))
	}
	if err := worker.Install(ctx); err != nil {
		// assets are still served, just not cache-first
		logger.Warn("offline cache unavailable", zap.Error(err))
	}

	// Create MCP server
	mcpSrv := mcpserver.NewServer(store)

	handler := web.NewHandler(ctrl, store, logger)
	router := web.NewRouter(handler, web.Routes{
		Assets: assets,
		Worker: worker,
		MCP:    server.NewStreamableHTTPServer(mcpSrv),
	}, logger)

	// Start server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("storage", cfg.Storage.Backend))
	logger.Info("endpoints available",
		zap.String("web", "http://localhost:"+cfg.Port),
		zap.String("api", "http://localhost:"+cfg.Port+"/api/memos"),
		zap.String("mcp", "http://localhost:"+cfg.Port+"/mcp"),
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil

	case "mongo":
		logger.Info("connecting to MongoDB", zap.String("uri", cfg.MongoDB.URI))
		database, err := storage.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to MongoDB")
		closeFn := func() {
			if err := database.Client().Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return storage.NewMongoStore(database), closeFn, nil

	default:
		fileStore, err := storage.NewFileStore(cfg.Storage.Path)
		if errors.Is(err, storage.ErrCorrupt) {
			logger.Warn("storage file was unreadable, starting empty",
				zap.String("backup", fileStore.BackupPath()), zap.Error(err))
		} else if err != nil {
			return nil, nil, err
		}
		logger.Info("using file storage", zap.String("path", fileStore.Path()))
		return fileStore, func() {}, nil
	}
}

func newWorker(cfg *config.Config, assets http.Handler, logger *zap.Logger) (*offline.Worker, error) {
	var caches offline.CacheStorage = offline.NewMemoryCacheStorage()
	if cfg.Cache.Dir != "" {
		dir, err := offline.NewDirCacheStorage(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		caches = dir
	}

	var network offline.Network = offline.HandlerNetwork{Handler: assets}
	if cfg.AssetOrigin != "" {
		u, err := url.Parse(cfg.AssetOrigin)
		if err != nil {
			return nil, fmt.Errorf("parse asset origin: %w", err)
		}
		httpNet, err := offline.NewHTTPNetwork(cfg.AssetOrigin, u.Host, logger)
		if err != nil {
			return nil, err
		}
		network = httpNet
	}

	return offline.NewWorker(offline.Config{Version: cfg.Cache.Version}, caches, network, offline.NewClients(), logger), nil
}

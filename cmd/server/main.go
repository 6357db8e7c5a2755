package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ganot/ttsprep/internal/config"
	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/domain/project"
	"github.com/ganot/ttsprep/internal/lock"
	"github.com/ganot/ttsprep/internal/mcp"
	"github.com/ganot/ttsprep/internal/sqlite"
	"github.com/ganot/ttsprep/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath string
		mode       string
		addKey     string
		keyTenant  string
	)
	flag.StringVarP(&configPath, "config", "c", "", "path to YAML config (default $TTSPREP_CONFIG_PATH)")
	flag.StringVar(&mode, "transport", "", "transport mode: http or stdio (overrides config)")
	flag.StringVar(&addKey, "add-api-key", "", "register a bearer token and exit")
	flag.StringVar(&keyTenant, "tenant", "", "tenant for --add-api-key")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if mode != "" {
		cfg.Transport.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.TransportStdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	keys := sqlite.NewAPIKeyRepository(db)
	if addKey != "" {
		if keyTenant == "" {
			logger.Error("--tenant is required with --add-api-key")
			os.Exit(1)
		}
		if err := keys.Add(context.Background(), addKey, keyTenant, "cli"); err != nil {
			logger.Error("failed to add api key", "error", err)
			os.Exit(1)
		}
		logger.Info("api key added", "tenant", keyTenant)
		return
	}

	locker, closeLocker, err := newLocker(cfg.Lock, logger)
	if err != nil {
		logger.Error("failed to set up lock backend", "backend", cfg.Lock.Backend, "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	projectRepo := sqlite.NewProjectRepository(db)
	chapterRepo := sqlite.NewChapterRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	labelRepo := sqlite.NewLabelRepository(db)
	searchRepo := sqlite.NewSearchRepository(db)

	projectSvc := project.NewService(projectRepo, logger)
	activitySvc := activity.NewService(activityRepo, logger)
	labelSvc := label.NewService(labelRepo, logger)
	chapterSvc := chapter.NewService(chapterRepo, projectRepo, labelSvc, activityRepo, searchRepo, locker, logger)

	services := mcp.Services{
		Projects: projectSvc,
		Chapters: chapterSvc,
		Labels:   labelSvc,
		Activity: activitySvc,
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      services,
		Resolver:      keys,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: cfg.Transport.Mode,
		Logger:        logger,
	})

	if cfg.Transport.Mode == config.TransportStdio {
		runStdioMode(logger, mcpServer)
		return
	}

	opts := transport.Options{
		Logger: logger,
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{
				Stateless:      false,
				SessionTimeout: 30 * time.Minute,
			},
		),
	}
	if cfg.Auth.Enabled {
		opts.Auth = transport.AuthMiddleware(keys)
	} else {
		logger.Warn("authentication disabled", "tenant", transport.DefaultTenant)
	}
	runHTTPMode(logger, transport.NewServer(mcp.NewHandler(services), opts), cfg.Server.Host, cfg.Server.Port)
}

func newLocker(cfg config.LockConfig, logger *slog.Logger) (lock.Locker, func(), error) {
	if cfg.Backend != config.LockRedis {
		return lock.NewLocal(), func() {}, nil
	}
	redisLock, err := lock.NewRedisFromURL(cfg.RedisURL, lock.RedisOptions{
		TTL:    cfg.TTL,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return redisLock, func() { _ = redisLock.Close() }, nil
}

func runStdioMode(logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}

func runHTTPMode(logger *slog.Logger, handler http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

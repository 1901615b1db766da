package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"shopfront_api_202610/internal/config"
	"shopfront_api_202610/internal/logger"
	"shopfront_api_202610/internal/repository"
	"shopfront_api_202610/internal/router"
	"shopfront_api_202610/internal/task"
	"shopfront_api_202610/pkg/database"
)

// 构建信息，通过 ldflags 注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "shopfront",
		Usage:   "Shop storefront API server",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "HTTP listen port (overrides SERVER_PORT)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides LOG_LEVEL)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: json, console (overrides LOG_FORMAT)",
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP server and background tasks",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "Run schema migration before serving",
					},
				},
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update database tables",
				Action: runMigrate,
			},
			{
				Name:   "purge-codes",
				Usage:  "Delete expired verification codes once and exit",
				Action: runPurgeCodes,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// ==================== 配置 ====================

// loadConfig 读取环境变量，命令行参数优先
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.String("port")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	return cfg, nil
}

func bootstrap(cmd *cli.Command) (*config.Config, *zerolog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	return cfg, &log, nil
}

// ==================== serve ====================

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}
	gin.SetMode(cfg.Server.Mode)

	// 1. 初始化数据库
	db, err := database.InitDB(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if cmd.Bool("migrate") {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// 2. 初始化依赖
	deps, err := initDependencies(cfg, db, log)
	if err != nil {
		return err
	}

	// 3. 启动定时任务
	if err := deps.Tasks.Start(); err != nil {
		return err
	}
	defer deps.Tasks.Stop()

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers, router.Options{
		DB:        db,
		Tokens:    deps.Tokens,
		Log:       log,
		UploadDir: deps.UploadDir,
	})

	// 5. 启动服务
	return startServer(ctx, r, cfg.Server, log)
}

// startServer 启动服务并在收到退出信号后优雅关闭
func startServer(ctx context.Context, r *gin.Engine, cfg config.ServerConfig, log *zerolog.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务强制关闭: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

// ==================== migrate ====================

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("migration finished")
	return nil
}

// ==================== purge-codes ====================

func runPurgeCodes(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	purge := task.NewCodePurgeTask(repository.NewVerificationCodeRepository(db), nil, cfg.Task.PurgeSpec, 0, log)
	deleted, err := purge.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("清理验证码失败: %w", err)
	}
	log.Info().Int64("deleted", deleted).Msg("expired codes purged")
	return nil
}

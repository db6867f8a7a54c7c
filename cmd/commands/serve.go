package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"taskwise/internal/auth"
	"taskwise/internal/chat"
	"taskwise/internal/config"
	"taskwise/internal/gateway"
	"taskwise/internal/heartbeat"
	"taskwise/internal/models"
	"taskwise/internal/recurrence"
	"taskwise/internal/store"
	"taskwise/internal/tasks"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the taskwise HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured (set TASKWISE_JWT_SECRET)")
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	registry := models.NewRegistry(cfg.Models)
	chatModel, err := registry.Default(ctx)
	if err != nil {
		return fmt.Errorf("init default model: %w", err)
	}
	slog.Info("model ready", "provider", registry.DefaultName())

	authSvc := auth.NewService(auth.NewUserStore(db.Conn()), cfg.Auth)
	chatSvc, err := chat.NewService(db, chatModel, cfg.Chat.HistoryLimit)
	if err != nil {
		return fmt.Errorf("init chat service: %w", err)
	}
	taskStore := tasks.NewSQLStore(db.Conn())

	if cfg.Recurrence.Enabled {
		roller := recurrence.NewRoller(db, cfg.Recurrence.Interval.Duration())
		if err := roller.Start(ctx); err != nil {
			return fmt.Errorf("start recurrence roller: %w", err)
		}
		defer roller.Stop()
	}

	hb := heartbeat.NewWriter(filepath.Join(config.RootPath(), "heartbeat.json"))
	hb.Start()
	defer hb.Stop()

	srv := gateway.NewServer(cfg.Server, authSvc, taskStore, chatSvc)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

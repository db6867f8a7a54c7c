package commands

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"taskwise/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskwise",
		Usage: "Todo backend with a conversational task assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewServeCommand(),
			NewAskCommand(),
			NewTasksCommand(),
			NewStatusCommand(),
		},
	}
}

// loadConfig reads the config named by the --config flag, applying defaults
// when the file is absent, and honors the --debug flag.
func loadConfig(cmd *cli.Command) *config.Config {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", path, "error", err)
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	return cfg
}

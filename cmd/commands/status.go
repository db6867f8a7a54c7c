package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"taskwise/internal/config"
	"taskwise/internal/heartbeat"
	"taskwise/internal/store"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server and database status",
		Action: runStatus,
	}
}

func runStatus(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	hbPath := filepath.Join(config.RootPath(), "heartbeat.json")
	status, hb, err := heartbeat.Check(hbPath, 2*time.Minute)
	if err != nil {
		return fmt.Errorf("check heartbeat: %w", err)
	}
	switch status {
	case heartbeat.StatusAlive:
		fmt.Printf("Server: ALIVE (PID %d, uptime %s)\n", hb.PID, hb.Uptime)
	case heartbeat.StatusStale:
		fmt.Printf("Server: STALE (PID %d, last heartbeat %s ago)\n",
			hb.PID, time.Since(hb.Timestamp).Truncate(time.Second))
	case heartbeat.StatusDead:
		fmt.Println("Server: NOT RUNNING")
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Printf("Database: ERROR (%v)\n", err)
		return nil
	}
	defer db.Close()

	counts := map[string]string{
		"users":         `SELECT COUNT(*) FROM users`,
		"tasks":         `SELECT COUNT(*) FROM tasks`,
		"conversations": `SELECT COUNT(*) FROM conversations`,
	}
	fmt.Printf("Database: OK (%s)\n", cfg.Database.Path)
	for _, name := range []string{"users", "tasks", "conversations"} {
		var n int
		if err := db.Conn().QueryRowContext(ctx, counts[name]).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", name, err)
		}
		fmt.Printf("  %-13s %d\n", name, n)
	}

	if cfg.Models.Default != "" {
		fmt.Printf("Model: %s\n", cfg.Models.Default)
	} else {
		fmt.Println("Model: not configured")
	}
	return nil
}

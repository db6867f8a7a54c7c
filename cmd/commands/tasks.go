package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"taskwise/internal/store"
	"taskwise/internal/tasks"
)

// NewTasksCommand returns the tasks subcommand.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "List tasks from the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "Email of the user to act as",
				Value: localUserEmail,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status (pending, in_progress, completed)",
			},
			&cli.StringFlag{
				Name:  "priority",
				Usage: "Filter by priority (low, medium, high)",
			},
			&cli.StringFlag{
				Name:  "search",
				Usage: "Filter by title substring",
			},
		},
		Action: runTasks,
	}
}

func runTasks(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	user, err := localUser(ctx, db, cmd.String("user"))
	if err != nil {
		return err
	}

	filter := tasks.Filter{Search: cmd.String("search")}
	if v := cmd.String("status"); v != "" {
		if filter.Status, err = tasks.ParseStatus(v); err != nil {
			return err
		}
	}
	if v := cmd.String("priority"); v != "" {
		if filter.Priority, err = tasks.ParsePriorityStrict(v); err != nil {
			return err
		}
	}

	list, total, err := tasks.NewSQLStore(db.Conn()).List(ctx, user.ID, filter)
	if err != nil {
		return err
	}

	if total == 0 {
		fmt.Println("No tasks.")
		return nil
	}
	for _, t := range list {
		line := fmt.Sprintf("[%s] %-9s %-6s %s", shortID(t.ID.String()), t.Status, t.Priority, t.Title)
		if t.DueDate != nil {
			line += " (due " + t.DueDate.Format("2006-01-02") + ")"
		}
		if len(t.Tags) > 0 {
			line += " #" + strings.Join(t.Tags, " #")
		}
		fmt.Println(line)
	}
	fmt.Printf("%d tasks\n", total)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"taskwise/internal/auth"
	"taskwise/internal/chat"
	"taskwise/internal/models"
	"taskwise/internal/store"
)

const localUserEmail = "local@taskwise"

// NewAskCommand returns the ask subcommand.
func NewAskCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Send one chat message to the task assistant",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "Email of the user to act as",
				Value: localUserEmail,
			},
			&cli.StringFlag{
				Name:  "conversation",
				Usage: "Conversation id to continue",
			},
		},
		Action: runAsk,
	}
}

func runAsk(ctx context.Context, cmd *cli.Command) error {
	message := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if message == "" {
		return fmt.Errorf("usage: taskwise ask <message>")
	}

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

	var conversationID *uuid.UUID
	if raw := cmd.String("conversation"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid conversation id %q", raw)
		}
		conversationID = &id
	}

	registry := models.NewRegistry(cfg.Models)
	chatModel, err := registry.Default(ctx)
	if err != nil {
		return fmt.Errorf("init default model: %w", err)
	}

	chatSvc, err := chat.NewService(db, chatModel, cfg.Chat.HistoryLimit)
	if err != nil {
		return fmt.Errorf("init chat service: %w", err)
	}

	turn, err := chatSvc.ProcessTurn(ctx, user.ID, conversationID, message)
	if err != nil {
		return err
	}

	fmt.Println(turn.AssistantMessage.Content)
	if turn.Action != nil {
		fmt.Printf("\n[%s", turn.Action.Action)
		if turn.Action.Task != nil {
			fmt.Printf(": %s", turn.Action.Task.Title)
		}
		fmt.Println("]")
	}
	fmt.Printf("(conversation %s)\n", turn.ConversationID)
	return nil
}

// localUser finds or creates the CLI user. The CLI talks to the local
// database directly, so no password or token is involved.
func localUser(ctx context.Context, db *store.DB, email string) (*auth.User, error) {
	users := auth.NewUserStore(db.Conn())
	user, err := users.ByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &auth.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      "Local",
		CreatedAt: time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create local user: %w", err)
	}
	return user, nil
}

package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"taskwise/internal/agent"
	"taskwise/internal/store"
	"taskwise/internal/tasks"
)

var (
	ErrEmptyMessage         = errors.New("message must not be empty")
	ErrConversationNotFound = errors.New("conversation not found")
)

// Turn is the outcome of one processed chat message.
type Turn struct {
	ConversationID   uuid.UUID         `json:"conversation_id"`
	UserMessage      *Message          `json:"user_message"`
	AssistantMessage *Message          `json:"assistant_message"`
	Action           *agent.TaskAction `json:"task_action,omitempty"`
}

// Service ties the coordinator to persistence. Every turn runs inside one
// transaction: the user message, any task mutations, and the assistant reply
// all commit together or not at all.
type Service struct {
	db           *store.DB
	coordinator  *agent.Coordinator
	historyLimit int
}

func NewService(db *store.DB, engine model.ToolCallingChatModel, historyLimit int) (*Service, error) {
	coord, err := agent.NewCoordinator(engine)
	if err != nil {
		return nil, err
	}
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Service{db: db, coordinator: coord, historyLimit: historyLimit}, nil
}

// ProcessTurn handles one user message. A nil, unknown, or foreign
// conversationID starts a new conversation. The engine may fail after tools
// have run; the enclosing transaction then rolls those mutations back.
func (s *Service) ProcessTurn(ctx context.Context, userID uuid.UUID, conversationID *uuid.UUID, text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	var turn *Turn
	err := s.db.RunInTx(ctx, func(tx *sql.Tx) error {
		transcripts := NewSQLStore(tx)

		conv, err := s.resolveConversation(ctx, transcripts, userID, conversationID)
		if err != nil {
			return err
		}

		// History is read before the new message is appended; the current
		// message is passed to the coordinator separately.
		history, err := transcripts.RecentMessages(ctx, conv.ID, s.historyLimit)
		if err != nil {
			return err
		}

		userMsg := &Message{ConversationID: conv.ID, Sender: SenderUser, Content: text}
		if err := transcripts.AppendMessage(ctx, userMsg); err != nil {
			return err
		}

		exec := agent.NewExecutor(tasks.NewSQLStore(tx), userID)
		reply, action, err := s.coordinator.ProcessMessage(ctx, exec, toEngineHistory(history), text)
		if err != nil {
			return err
		}

		assistantMsg := &Message{ConversationID: conv.ID, Sender: SenderAssistant, Content: reply}
		if err := transcripts.AppendMessage(ctx, assistantMsg); err != nil {
			return err
		}
		if err := transcripts.TouchConversation(ctx, conv.ID, time.Now()); err != nil {
			return err
		}

		turn = &Turn{
			ConversationID:   conv.ID,
			UserMessage:      userMsg,
			AssistantMessage: assistantMsg,
			Action:           action,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("chat turn processed",
		"conversation", turn.ConversationID,
		"has_action", turn.Action != nil)
	return turn, nil
}

// resolveConversation reuses the given conversation only when it exists and
// belongs to the caller; an unknown or foreign id silently starts a fresh
// conversation instead of failing the turn.
func (s *Service) resolveConversation(ctx context.Context, transcripts Store, userID uuid.UUID, conversationID *uuid.UUID) (*Conversation, error) {
	if conversationID != nil {
		conv, err := transcripts.GetConversation(ctx, *conversationID, userID)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			return conv, nil
		}
	}
	return transcripts.CreateConversation(ctx, userID)
}

// History lists the user's conversations, most recently active first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*Conversation, int, error) {
	return NewSQLStore(s.db.Conn()).ListConversations(ctx, userID, limit)
}

// Conversation returns one owned conversation with its full transcript.
func (s *Service) Conversation(ctx context.Context, userID, id uuid.UUID) (*Conversation, []*Message, error) {
	transcripts := NewSQLStore(s.db.Conn())
	conv, err := transcripts.GetConversation(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	msgs, err := transcripts.Messages(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

// Clear wipes the user's chat history atomically.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.db.RunInTx(ctx, func(tx *sql.Tx) error {
		return NewSQLStore(tx).DeleteAllForUser(ctx, userID)
	})
}

func toEngineHistory(msgs []*Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Sender {
		case SenderAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}

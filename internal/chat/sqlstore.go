package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskwise/internal/store"
)

// Store persists conversations and their transcripts.
type Store interface {
	CreateConversation(ctx context.Context, userID uuid.UUID) (*Conversation, error)
	GetConversation(ctx context.Context, id, userID uuid.UUID) (*Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*Conversation, int, error)
	TouchConversation(ctx context.Context, id uuid.UUID, at time.Time) error
	AppendMessage(ctx context.Context, msg *Message) error
	RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*Message, error)
	Messages(ctx context.Context, conversationID uuid.UUID) ([]*Message, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// SQLStore implements Store over a database handle or transaction.
type SQLStore struct {
	db store.DBTX
}

func NewSQLStore(db store.DBTX) *SQLStore {
	return &SQLStore{db: db}
}

var _ Store = (*SQLStore)(nil)

func (s *SQLStore) CreateConversation(ctx context.Context, userID uuid.UUID) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		conv.ID.String(), conv.UserID.String(), conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return conv, nil
}

func (s *SQLStore) GetConversation(ctx context.Context, id, userID uuid.UUID) (*Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM conversations WHERE id = ? AND user_id = ?`,
		id.String(), userID.String(),
	)
	conv, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

func (s *SQLStore) ListConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*Conversation, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE user_id = ?`, userID.String(),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	query := `SELECT id, user_id, created_at, updated_at FROM conversations
		WHERE user_id = ? ORDER BY updated_at DESC`
	args := []any{userID.String()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []*Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, conv)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) TouchConversation(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, at.UTC(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

func (s *SQLStore) AppendMessage(ctx context.Context, msg *Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, sender, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID.String(), msg.ConversationID.String(), string(msg.Sender), msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns the last limit messages in chronological order.
// Timestamp ties are broken by insertion order so a user/assistant pair
// written in the same instant never inverts.
func (s *SQLStore) RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, sender, content, created_at FROM messages
			WHERE conversation_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		conversationID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()

	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *SQLStore) Messages(ctx context.Context, conversationID uuid.UUID) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, sender, content, created_at FROM messages
			WHERE conversation_id = ? ORDER BY created_at ASC, rowid ASC`,
		conversationID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// DeleteAllForUser removes every message before its conversations so the
// foreign key holds mid-delete. Callers wanting atomicity run it in a tx.
func (s *SQLStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id IN
			(SELECT id FROM conversations WHERE user_id = ?)`,
		userID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE user_id = ?`, userID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete conversations: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var (
		conv           Conversation
		idStr, userStr string
	)
	if err := row.Scan(&idStr, &userStr, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if conv.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if conv.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, err
	}
	return &conv, nil
}

func collectMessages(rows *sql.Rows) ([]*Message, error) {
	var out []*Message
	for rows.Next() {
		var (
			msg            Message
			idStr, convStr string
			sender         string
		)
		if err := rows.Scan(&idStr, &convStr, &sender, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		var err error
		if msg.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		if msg.ConversationID, err = uuid.Parse(convStr); err != nil {
			return nil, err
		}
		msg.Sender = Sender(sender)
		out = append(out, &msg)
	}
	return out, rows.Err()
}

// Package auth provides user accounts and JWT-based authentication.
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskwise/internal/store"
)

// User is a registered account. The password hash never leaves this package.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore persists users in sqlite.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a user store bound to db.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID.String(), u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.one(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`, id.String())
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.one(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (s *UserStore) one(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u  User
		id string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &u, nil
}

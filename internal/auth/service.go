package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskwise/internal/config"
)

// ErrInvalidCredentials is returned for any email/password mismatch so the
// caller cannot distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidToken is returned for expired, malformed, or wrong-type tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenPair is the access/refresh token set handed to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime, seconds
}

// Service issues and verifies credentials and tokens.
type Service struct {
	users      *UserStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates an auth service from config.
func NewService(users *UserStore, cfg config.AuthConfig) *Service {
	return &Service{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTTL.Duration(),
		refreshTTL: cfg.RefreshTTL.Duration(),
	}
}

// Register creates a new account and returns it with a fresh token pair.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, TokenPair{}, fmt.Errorf("invalid email address")
	}
	if len(password) < 8 {
		return nil, TokenPair{}, fmt.Errorf("password must be at least 8 characters")
	}

	existing, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if existing != nil {
		return nil, TokenPair{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := &User{Email: email, Name: name, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issueTokens(user.ID)
	return user, pair, err
}

// Login verifies the credentials and returns the user with a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*User, TokenPair, error) {
	user, err := s.users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, TokenPair{}, err
	}
	if user == nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user.ID)
	return user, pair, err
}

// Refresh exchanges a valid refresh token for a new token pair. The user must
// still exist.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, typ, err := s.verify(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if typ != "refresh" {
		return TokenPair{}, ErrInvalidToken
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	if user == nil {
		return TokenPair{}, ErrInvalidToken
	}
	return s.issueTokens(user.ID)
}

// VerifyAccess validates an access token and returns the subject user id.
func (s *Service) VerifyAccess(token string) (uuid.UUID, error) {
	userID, typ, err := s.verify(token)
	if err != nil {
		return uuid.Nil, err
	}
	if typ != "access" {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// UserByID looks up a user, returning (nil, nil) when absent.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.ByID(ctx, id)
}

func (s *Service) issueTokens(userID uuid.UUID) (TokenPair, error) {
	access, err := s.sign(userID, "access", s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(userID, "refresh", s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

func (s *Service) sign(userID uuid.UUID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"typ": typ,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) verify(tokenString string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	typ, _ := claims["typ"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	return userID, typ, nil
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wallet-account-service/internal/domain/account"
	apperrors "wallet-account-service/pkg/errors"
)

// ErrInvalidCredentials is returned by Login on a wrong email/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service implements the auth sub-service: identity rows in Postgres,
// sessions in Redis. The core only ever consumes identity creation/deletion
// and session resolution; token handling stays inside this adapter.
type Service struct {
	db         *gorm.DB
	sessions   *redis.Client
	sessionTTL time.Duration
	log        *zap.Logger
}

// NewService creates a new auth Service.
func NewService(db *gorm.DB, sessions *redis.Client, sessionTTL time.Duration, log *zap.Logger) *Service {
	return &Service{db: db, sessions: sessions, sessionTTL: sessionTTL, log: log}
}

// IdentitySchema represents the database schema for the identities table.
type IdentitySchema struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"not null;unique"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// TableName specifies the table name for the IdentitySchema model.
func (IdentitySchema) TableName() string {
	return "identities"
}

type sessionPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func sessionKey(token string) string {
	return "session:" + token
}

// CreateIdentity creates a new auth identity and returns its assigned id.
func (s *Service) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	model := IdentitySchema{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		s.log.Error("failed to create identity", zap.String("email", email), zap.Error(err))
		return "", apperrors.NewPersistenceError("identity create", err)
	}

	s.log.Info("identity created", zap.String("id", model.ID))
	return model.ID, nil
}

// DeleteIdentity removes an identity row. Used as the compensating step of
// the registration saga when the profile insert fails.
func (s *Service) DeleteIdentity(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&IdentitySchema{})
	if tx.Error != nil {
		s.log.Error("failed to delete identity", zap.String("id", id), zap.Error(tx.Error))
		return apperrors.NewPersistenceError("identity delete", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.NewNotFoundError("identity", fmt.Sprintf("identity not found: id=%s", id))
	}

	s.log.Info("identity deleted", zap.String("id", id))
	return nil
}

// Login verifies the credentials and opens a session, returning its token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	var model IdentitySchema
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("login for unknown email", zap.String("email", email))
			return "", ErrInvalidCredentials
		}
		s.log.Error("failed to load identity", zap.String("email", email), zap.Error(err))
		return "", fmt.Errorf("failed to load identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(model.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("password mismatch", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	token := uuid.New().String()
	payload, err := json.Marshal(sessionPayload{UserID: model.ID, Email: model.Email})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.sessions.Set(ctx, sessionKey(token), payload, s.sessionTTL).Err(); err != nil {
		s.log.Error("failed to store session", zap.String("user_id", model.ID), zap.Error(err))
		return "", apperrors.NewPersistenceError("session create", err)
	}

	s.log.Info("session opened", zap.String("user_id", model.ID))
	return token, nil
}

// ResolveSession maps a session token to the identity it was issued for.
// An unknown or expired token yields a NotFoundError.
func (s *Service) ResolveSession(ctx context.Context, token string) (*account.Session, error) {
	if token == "" {
		return nil, apperrors.NewNotFoundError("session", "no session token")
	}

	data, err := s.sessions.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		s.log.Debug("session not found")
		return nil, apperrors.NewNotFoundError("session", "session not found or expired")
	}
	if err != nil {
		s.log.Error("failed to resolve session", zap.Error(err))
		return nil, err
	}

	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.log.Error("failed to unmarshal session", zap.Error(err))
		return nil, err
	}

	return &account.Session{UserID: payload.UserID, Email: payload.Email}, nil
}

// Logout closes a session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessions.Del(ctx, sessionKey(token)).Err(); err != nil {
		s.log.Error("failed to delete session", zap.Error(err))
		return err
	}

	return nil
}

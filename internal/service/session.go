package service

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/repo"
	"context"
	"time"

	"github.com/google/uuid"
)

// Сроки жизни сессии: скользящий — сбрасывается каждым запросом,
// абсолютный потолок — от момента входа.
const (
	SessionIdleTTL     = 30 * time.Minute
	SessionAbsoluteTTL = 24 * time.Hour
)

// SessionService — выдача и проверка серверных сессий.
type SessionService struct {
	sessions repo.SessionRepository
	users    repo.UserRepository
}

func NewSessionService(sessions repo.SessionRepository, users repo.UserRepository) *SessionService {
	return &SessionService{sessions: sessions, users: users}
}

// Create открывает сессию для пользователя.
func (s *SessionService) Create(ctx context.Context, userID string) (*model.Session, error) {
	now := time.Now().UTC()
	sess := &model.Session{ID: uuid.NewString(), UserID: userID, CreatedAt: now, LastSeenAt: now}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve проверяет сессию и собирает аутентифицированный контекст.
// Просроченная сессия удаляется; живая — продлевается (touch).
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (auth.Context, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return auth.Context{}, err
	}
	if sess == nil {
		return auth.Context{}, ErrNoSession
	}

	now := time.Now().UTC()
	if now.Sub(sess.LastSeenAt) > SessionIdleTTL || now.Sub(sess.CreatedAt) > SessionAbsoluteTTL {
		_ = s.sessions.Delete(ctx, sess.ID)
		return auth.Context{}, ErrNoSession
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return auth.Context{}, err
	}
	if user == nil {
		// пользователь удалён — сессия мертва
		_ = s.sessions.Delete(ctx, sess.ID)
		return auth.Context{}, ErrNoSession
	}

	if err := s.sessions.Touch(ctx, sess.ID, now); err != nil {
		return auth.Context{}, err
	}

	return auth.Context{
		UserID:             user.ID,
		Username:           user.Username,
		Role:               user.Role,
		MustChangePassword: user.RequirePasswordChange,
		CanEditIntegration: user.CanEditIntegration,
		SessionID:          sess.ID,
	}, nil
}

// Destroy завершает одну сессию (logout).
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// DestroyAllForUser завершает все сессии пользователя
// (удаление учётной записи).
func (s *SessionService) DestroyAllForUser(ctx context.Context, userID string) error {
	return s.sessions.DeleteByUser(ctx, userID)
}

package service

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/repo"
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserService — учётные записи: вход, самостоятельная смена пароля
// и административный CRUD.
type UserService struct {
	users    repo.UserRepository
	sessions repo.SessionRepository
	settings *SettingsService
}

func NewUserService(users repo.UserRepository, sessions repo.SessionRepository, settings *SettingsService) *UserService {
	return &UserService{users: users, sessions: sessions, settings: settings}
}

// Login проверяет учётные данные. Отказ всегда единый:
// ErrInvalidCredentials, без различия причины.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || auth.VerifyPassword(user.PasswordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleUser || role == model.RoleReadOnly
}

// Create заводит пользователя (админский интерфейс). Пароль проходит
// действующую политику, логин должен быть свободен.
func (s *UserService) Create(ctx context.Context, username, password, role string, canEditIntegration, requirePasswordChange bool) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !validRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	policy, err := s.settings.PasswordPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if err := policy.Validate(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:                    uuid.NewString(),
		Username:              username,
		PasswordHash:          hash,
		Role:                  role,
		CanEditIntegration:    canEditIntegration,
		RequirePasswordChange: requirePasswordChange,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UserUpdate — частичное админское обновление; nil-поля не трогаются.
type UserUpdate struct {
	Role                  *string
	CanEditIntegration    *bool
	RequirePasswordChange *bool
	Password              *string
}

// Update применяет админскую правку. Новый пароль проходит политику.
func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if upd.Role != nil {
		if !validRole(*upd.Role) {
			return nil, fmt.Errorf("unknown role %q", *upd.Role)
		}
		user.Role = *upd.Role
	}
	if upd.CanEditIntegration != nil {
		user.CanEditIntegration = *upd.CanEditIntegration
	}
	if upd.RequirePasswordChange != nil {
		user.RequirePasswordChange = *upd.RequirePasswordChange
	}
	if upd.Password != nil {
		policy, err := s.settings.PasswordPolicy(ctx)
		if err != nil {
			return nil, err
		}
		if err := policy.Validate(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword — самостоятельная смена пароля. Требует текущий
// пароль, новый проходит политику; флаг принудительной смены
// снимается той же записью.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if auth.VerifyPassword(user.PasswordHash, current) != nil {
		return ErrInvalidCredentials
	}

	policy, err := s.settings.PasswordPolicy(ctx)
	if err != nil {
		return err
	}
	if err := policy.Validate(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.RequirePasswordChange = false
	return s.users.Update(ctx, user)
}

// Delete удаляет пользователя. Последний администратор защищён.
// Сессии удалённого пользователя уничтожаются.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.Role == model.RoleAdmin {
		left, err := s.users.CountAdmins(ctx, id)
		if err != nil {
			return err
		}
		if left == 0 {
			return ErrLastAdmin
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	return s.sessions.DeleteByUser(ctx, id)
}

package service

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/repo"
	"context"
	"strconv"
)

// SettingsService — единственная точка доступа к изменяемым
// настройкам (парольная политика, внешняя интеграция). Компоненты
// получают значения через него, а не лезут в хранилище сами.
type SettingsService struct {
	settings repo.SettingRepository
}

func NewSettingsService(settings repo.SettingRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// PasswordPolicy собирает действующую политику. Отсутствующие ключи
// заменяются значениями по умолчанию.
func (s *SettingsService) PasswordPolicy(ctx context.Context) (auth.PasswordPolicy, error) {
	p := auth.PasswordPolicy{MinLength: auth.MinLengthFloor, RequireNumber: true, RequireSpecial: true}

	if v, ok, err := s.settings.Get(ctx, model.SettingPasswordMinLength); err != nil {
		return p, err
	} else if ok {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			p.MinLength = n
		}
	}
	if v, ok, err := s.settings.Get(ctx, model.SettingPasswordRequireNumber); err != nil {
		return p, err
	} else if ok {
		p.RequireNumber = v == "true"
	}
	if v, ok, err := s.settings.Get(ctx, model.SettingPasswordRequireSpecial); err != nil {
		return p, err
	} else if ok {
		p.RequireSpecial = v == "true"
	}
	return p, nil
}

// All возвращает все настройки.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	return s.settings.GetAll(ctx)
}

// Update применяет изменения. Минимальная длина пароля никогда не
// опускается ниже пола: такая правка отклоняется целиком, прежнее
// значение остаётся.
func (s *SettingsService) Update(ctx context.Context, values map[string]string) error {
	if v, ok := values[model.SettingPasswordMinLength]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < auth.MinLengthFloor {
			return ErrMinLengthBelowFloor
		}
	}
	for k, v := range values {
		if err := s.settings.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// IntegrationTarget — адрес и токен внешнего менеджера рецептов.
func (s *SettingsService) IntegrationTarget(ctx context.Context) (baseURL, token string, err error) {
	baseURL, _, err = s.settings.Get(ctx, model.SettingRecipeManagerURL)
	if err != nil {
		return "", "", err
	}
	token, _, err = s.settings.Get(ctx, model.SettingRecipeManagerToken)
	if err != nil {
		return "", "", err
	}
	if baseURL == "" || token == "" {
		return "", "", ErrIntegrationNotConfigured
	}
	return baseURL, token, nil
}

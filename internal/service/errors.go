package service

import "errors"

// Ошибки уровня сервисов. Хендлеры переводят их в HTTP-статусы.
var (
	// ErrInvalidCredentials — единый отказ логина: "нет такого
	// пользователя" и "неверный пароль" снаружи неразличимы.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUsernameTaken = errors.New("username already taken")

	// ErrLastAdmin — попытка удалить последнего администратора.
	ErrLastAdmin = errors.New("cannot delete the last admin")

	ErrNotFound = errors.New("not found")

	ErrNoSession = errors.New("no valid session")

	// ErrMinLengthBelowFloor — попытка опустить минимальную длину
	// пароля ниже жёсткого пола.
	ErrMinLengthBelowFloor = errors.New("password minimum length cannot be below 10")

	// ErrIntegrationNotConfigured — адрес/токен внешнего менеджера
	// рецептов не настроены.
	ErrIntegrationNotConfigured = errors.New("recipe manager integration is not configured")
)

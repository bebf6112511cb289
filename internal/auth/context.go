package auth

import "context"

// Context — явный результат проверки сессии: всё, что нужно ниже по
// стеку для решений об авторизации, без повторных походов в БД.
type Context struct {
	UserID             string
	Username           string
	Role               string
	MustChangePassword bool
	CanEditIntegration bool

	// SessionID — идентификатор серверной сессии (для logout).
	SessionID string
}

// IsAdmin: роль admin обходит проверки владения.
func (c Context) IsAdmin() bool { return c.Role == "admin" }

// CanWrite: роль readonly отрезана от любых мутаций.
func (c Context) CanWrite() bool { return c.Role != "readonly" }

type authContextKey struct{}

// WithContext прикрепляет результат аутентификации к контексту запроса.
func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, authContextKey{}, &ac)
}

// FromContext извлекает результат аутентификации.
func FromContext(ctx context.Context) (Context, bool) {
	if ctx == nil {
		return Context{}, false
	}
	v, ok := ctx.Value(authContextKey{}).(*Context)
	if !ok || v == nil {
		return Context{}, false
	}
	return *v, true
}

package middleware

import (
	"RecipeKeeper/internal/auth"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName — имя сессионной cookie.
const SessionCookieName = "rk_session"

// cookieLifetime совпадает с абсолютным потолком жизни сессии;
// решает в итоге серверное хранилище, cookie — лишь транспорт.
const cookieLifetime = 24 * time.Hour

// SessionResolver проверяет сессию и собирает аутентифицированный
// контекст. Реализуется сервисом сессий.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (auth.Context, error)
}

// SetSessionCookie кладёт подписанный JWT с id серверной сессии.
func SetSessionCookie(w http.ResponseWriter, sessionID, secret string) error {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(cookieLifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie гасит cookie при выходе.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionIDFromRequest достаёт id сессии из cookie, проверив подпись.
func SessionIDFromRequest(r *http.Request, secret string) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	token, err := jwt.ParseWithClaims(c.Value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// WithSession строит аутентифицированный контекст один раз на запрос.
// Запросы без валидной сессии проходят дальше анонимно: решает
// RequireAuth на конкретных маршрутах.
func WithSession(resolver SessionResolver, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sid, ok := SessionIDFromRequest(r, secret); ok {
				if ac, err := resolver.Resolve(r.Context(), sid); err == nil {
					r = r.WithContext(auth.WithContext(r.Context(), ac))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RequireAuth отклоняет анонимные запросы, а также — отдельным
// статусом — запросы пользователя с принудительной сменой пароля:
// клиенту нужен не экран логина, а поток смены пароля.
func RequireAuth(next http.Handler) http.Handler {
	return requireAuth(next, false)
}

// RequireAuthAllowPasswordChange — для трёх операций, доступных
// в состоянии принудительной смены: кто я, смена пароля, выход.
func RequireAuthAllowPasswordChange(next http.Handler) http.Handler {
	return requireAuth(next, true)
}

func requireAuth(next http.Handler, allowPasswordChange bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		if ac.MustChangePassword && !allowPasswordChange {
			writeJSONError(w, http.StatusForbidden, map[string]string{
				"error": "password change required",
				"code":  "password_change_required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin — поверх RequireAuth на админских маршрутах.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok || !ac.IsAdmin() {
			writeJSONError(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireWriter отсекает роль readonly от мутирующих маршрутов.
func RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok || !ac.CanWrite() {
			writeJSONError(w, http.StatusForbidden, map[string]string{"error": "read-only role cannot modify data"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

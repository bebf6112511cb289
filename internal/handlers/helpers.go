package handlers

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/client"
	"RecipeKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError переводит ошибки сервисов в HTTP-ответы.
// Внутренние ошибки наружу не детализируются.
func writeServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	var policyErr *auth.PolicyViolation
	var upstreamErr *client.UpstreamError

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, service.ErrLastAdmin):
		writeError(w, http.StatusConflict, "cannot delete the last admin")
	case errors.Is(err, service.ErrMinLengthBelowFloor):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIntegrationNotConfigured):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &policyErr):
		writeError(w, http.StatusBadRequest, policyErr.Reason)
	case errors.As(err, &upstreamErr):
		// деталь апстрима — дословно, отличимо от внутренней ошибки
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":  "upstream error",
			"detail": string(upstreamErr.Body),
		})
	default:
		logger.Errorw("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// mustAuth — аутентифицированный контекст; маршруты за RequireAuth
// всегда его имеют, проверка здесь — страховка порядка мидлварей.
func mustAuth(w http.ResponseWriter, r *http.Request) (auth.Context, bool) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return ac, ok
}

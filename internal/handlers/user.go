package handlers

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/config"
	"RecipeKeeper/internal/middleware"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — вход/выход, собственная учётка, смена пароля.
type UserHandler struct {
	Users    *service.UserService
	Sessions *service.SessionService
	Settings *service.SettingsService
	Audit    *service.AuditService
	Logger   *zap.SugaredLogger
	Config   *config.Config
}

func NewUserHandler(users *service.UserService, sessions *service.SessionService, settings *service.SettingsService, audit *service.AuditService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{Users: users, Sessions: sessions, Settings: settings, Audit: audit, Logger: logger, Config: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userDTO struct {
	ID                    string `json:"id"`
	Username              string `json:"username"`
	Role                  string `json:"role"`
	CanEditIntegration    bool   `json:"can_edit_integration"`
	RequirePasswordChange bool   `json:"require_password_change"`
}

func toUserDTO(u *model.User) userDTO {
	return userDTO{
		ID:                    u.ID,
		Username:              u.Username,
		Role:                  u.Role,
		CanEditIntegration:    u.CanEditIntegration,
		RequirePasswordChange: u.RequirePasswordChange,
	}
}

// Login открывает сессию и ставит cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}

	sess, err := h.Sessions.Create(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	if err := middleware.SetSessionCookie(w, sess.ID, h.Config.AuthSecret); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}

	h.Audit.Record(r.Context(), user.ID, "login", map[string]string{"username": user.Username}, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// Logout завершает сессию и гасит cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.Destroy(r.Context(), ac.SessionID); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	middleware.ClearSessionCookie(w)
	h.Audit.Record(r.Context(), ac.UserID, "logout", nil, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me — проверка текущей личности. Доступна и в состоянии
// принудительной смены пароля.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, userDTO{
		ID:                    ac.UserID,
		Username:              ac.Username,
		Role:                  ac.Role,
		CanEditIntegration:    ac.CanEditIntegration,
		RequirePasswordChange: ac.MustChangePassword,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword — самостоятельная смена; заодно снимает флаг
// принудительной смены.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Users.ChangePassword(r.Context(), ac.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "password_change", nil, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PasswordRequirements — публичное чтение действующей политики,
// чтобы клиент мог подсказывать требования до отправки формы.
func (h *UserHandler) PasswordRequirements(w http.ResponseWriter, r *http.Request) {
	policy, err := h.Settings.PasswordPolicy(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	minLen := policy.MinLength
	if minLen < auth.MinLengthFloor {
		minLen = auth.MinLengthFloor
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"min_length":      minLen,
		"require_number":  policy.RequireNumber,
		"require_special": policy.RequireSpecial,
	})
}

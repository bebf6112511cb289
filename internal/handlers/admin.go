package handlers

import (
	"RecipeKeeper/internal/middleware"
	"RecipeKeeper/internal/service"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler — управление пользователями и чтение аудита.
// Маршруты закрыты RequireAdmin.
type AdminHandler struct {
	Users    *service.UserService
	Sessions *service.SessionService
	Audit    *service.AuditService
	Logger   *zap.SugaredLogger
}

func NewAdminHandler(users *service.UserService, sessions *service.SessionService, audit *service.AuditService, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{Users: users, Sessions: sessions, Audit: audit, Logger: logger}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	out := make([]userDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Username              string `json:"username"`
	Password              string `json:"password"`
	Role                  string `json:"role"`
	CanEditIntegration    bool   `json:"can_edit_integration"`
	RequirePasswordChange bool   `json:"require_password_change"`
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}
	user, err := h.Users.Create(r.Context(), req.Username, req.Password, req.Role, req.CanEditIntegration, req.RequirePasswordChange)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "user_create",
		map[string]string{"user_id": user.ID, "username": user.Username, "role": user.Role},
		middleware.ClientIP(r))
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

type updateUserRequest struct {
	Role                  *string `json:"role,omitempty"`
	CanEditIntegration    *bool   `json:"can_edit_integration,omitempty"`
	RequirePasswordChange *bool   `json:"require_password_change,omitempty"`
	Password              *string `json:"password,omitempty"`
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	id := chi.URLParam(r, "id")
	user, err := h.Users.Update(r.Context(), id, service.UserUpdate{
		Role:                  req.Role,
		CanEditIntegration:    req.CanEditIntegration,
		RequirePasswordChange: req.RequirePasswordChange,
		Password:              req.Password,
	})
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "user_update",
		map[string]string{"user_id": user.ID, "username": user.Username},
		middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// DeleteUser удаляет пользователя. Последний администратор защищён.
// Если администратор удаляет сам себя, его сессия тоже уничтожена —
// клиент получает self_logout и сбрасывает своё состояние.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "user_delete",
		map[string]string{"user_id": id}, middleware.ClientIP(r))

	selfLogout := id == ac.UserID
	if selfLogout {
		middleware.ClearSessionCookie(w)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "self_logout": selfLogout})
}

// AuditLog — чтение журнала, только для администраторов.
func (h *AdminHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, err := h.Audit.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

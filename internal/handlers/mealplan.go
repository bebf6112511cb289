package handlers

import (
	"RecipeKeeper/internal/middleware"
	"RecipeKeeper/internal/service"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MealPlanHandler — план питания.
type MealPlanHandler struct {
	Plan   *service.MealPlanService
	Audit  *service.AuditService
	Logger *zap.SugaredLogger
}

func NewMealPlanHandler(plan *service.MealPlanService, audit *service.AuditService, logger *zap.SugaredLogger) *MealPlanHandler {
	return &MealPlanHandler{Plan: plan, Audit: audit, Logger: logger}
}

type mealPlanRequest struct {
	RecipeID string `json:"recipe_id"`
	PlanDate string `json:"plan_date"`
	MealType string `json:"meal_type"`
}

func (h *MealPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	entries, err := h.Plan.List(r.Context(), ac)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *MealPlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req mealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.RecipeID == "" {
		writeError(w, http.StatusBadRequest, "recipe_id is required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.PlanDate); err != nil {
		writeError(w, http.StatusBadRequest, "plan_date must be YYYY-MM-DD")
		return
	}
	e, err := h.Plan.Create(r.Context(), ac, req.RecipeID, req.PlanDate, req.MealType)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "mealplan_create",
		map[string]string{"entry_id": e.ID, "recipe_id": e.RecipeID, "plan_date": e.PlanDate}, middleware.ClientIP(r))
	writeJSON(w, http.StatusCreated, e)
}

func (h *MealPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Plan.Delete(r.Context(), ac, id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "mealplan_delete",
		map[string]string{"entry_id": id}, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package handlers

import (
	"RecipeKeeper/internal/middleware"
	"RecipeKeeper/internal/service"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CollectionHandler — подборки рецептов.
type CollectionHandler struct {
	Collections *service.CollectionService
	Audit       *service.AuditService
	Logger      *zap.SugaredLogger
}

func NewCollectionHandler(collections *service.CollectionService, audit *service.AuditService, logger *zap.SugaredLogger) *CollectionHandler {
	return &CollectionHandler{Collections: collections, Audit: audit, Logger: logger}
}

type collectionRequest struct {
	Name string `json:"name"`
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	collections, err := h.Collections.List(r.Context(), ac)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, collections)
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "collection name is required")
		return
	}
	c, err := h.Collections.Create(r.Context(), ac, req.Name)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "collection_create",
		map[string]string{"collection_id": c.ID, "name": c.Name}, middleware.ClientIP(r))
	writeJSON(w, http.StatusCreated, c)
}

func (h *CollectionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "collection name is required")
		return
	}
	c, err := h.Collections.Rename(r.Context(), ac, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "collection_rename",
		map[string]string{"collection_id": c.ID, "name": c.Name}, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, c)
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Collections.Delete(r.Context(), ac, id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "collection_delete",
		map[string]string{"collection_id": id}, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

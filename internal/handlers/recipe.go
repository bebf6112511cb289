package handlers

import (
	"RecipeKeeper/internal/client"
	"RecipeKeeper/internal/middleware"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/service"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecipeHandler — CRUD рецептов, импорт через распознавание,
// публичный доступ и экспорт.
type RecipeHandler struct {
	Recipes *service.RecipeService
	Audit   *service.AuditService
	Logger  *zap.SugaredLogger
}

func NewRecipeHandler(recipes *service.RecipeService, audit *service.AuditService, logger *zap.SugaredLogger) *RecipeHandler {
	return &RecipeHandler{Recipes: recipes, Audit: audit, Logger: logger}
}

type recipeRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
	Servings     *int     `json:"servings"`
	CollectionID *string  `json:"collection_id"`
}

func (req recipeRequest) toInput() service.RecipeInput {
	return service.RecipeInput{
		Name:         req.Name,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tags:         req.Tags,
		Servings:     req.Servings,
		CollectionID: req.CollectionID,
	}
}

// publicRecipeDTO — публичные поля рецепта (без владельца).
type publicRecipeDTO struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags,omitempty"`
	Servings     *int     `json:"servings,omitempty"`
}

func toPublicDTO(rec *model.Recipe) publicRecipeDTO {
	return publicRecipeDTO{
		Name:         rec.Name,
		Description:  rec.Description,
		Ingredients:  rec.Ingredients,
		Instructions: rec.Instructions,
		Tags:         rec.Tags,
		Servings:     rec.Servings,
	}
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	recipes, err := h.Recipes.List(r.Context(), ac)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	rec, err := h.Recipes.Get(r.Context(), ac, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "recipe name is required")
		return
	}
	rec, err := h.Recipes.Create(r.Context(), ac, req.toInput())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "recipe_create",
		map[string]string{"recipe_id": rec.ID, "name": rec.Name}, middleware.ClientIP(r))
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := h.Recipes.Update(r.Context(), ac, id, req.toInput())
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "recipe_update",
		map[string]string{"recipe_id": rec.ID}, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Recipes.Delete(r.Context(), ac, id); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "recipe_delete",
		map[string]string{"recipe_id": id}, middleware.ClientIP(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Import принимает multipart со страницами (фото/PDF) одного рецепта
// и сохраняет распознанный результат.
func (h *RecipeHandler) Import(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}

	// лимит на всё тело запроса
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var pages []client.Page
	for _, fh := range r.MultipartForm.File["pages"] {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read page")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read page")
			return
		}
		mime := fh.Header.Get("Content-Type")
		if mime == "" {
			mime = "application/octet-stream"
		}
		pages = append(pages, client.Page{Data: data, Mime: mime})
	}
	if len(pages) == 0 {
		writeError(w, http.StatusBadRequest, "at least one page is required")
		return
	}

	rec, err := h.Recipes.Import(r.Context(), ac, pages)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "recipe_create",
		map[string]string{"recipe_id": rec.ID, "name": rec.Name, "source": "import"}, middleware.ClientIP(r))
	writeJSON(w, http.StatusCreated, rec)
}

// Pages — список исходных страниц скана (без содержимого).
func (h *RecipeHandler) Pages(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	pages, err := h.Recipes.Pages(r.Context(), ac, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// PageData отдаёт содержимое одной страницы скана.
func (h *RecipeHandler) PageData(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page position")
		return
	}
	img, err := h.Recipes.PageData(r.Context(), ac, chi.URLParam(r, "id"), pos)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", img.Mime)
	_, _ = w.Write(img.Data)
}

// Share выдаёт токен публичного доступа.
func (h *RecipeHandler) Share(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	token, err := h.Recipes.Share(r.Context(), ac, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"public_token": token})
}

// Unshare отзывает токен.
func (h *RecipeHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	if err := h.Recipes.Unshare(r.Context(), ac, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Public — неаутентифицированное чтение по токену.
func (h *RecipeHandler) Public(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Recipes.GetPublic(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicDTO(rec))
}

// Nutrition запрашивает и сохраняет оценку питательности.
func (h *RecipeHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	n, err := h.Recipes.Analyze(r.Context(), ac, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Submit отправляет рецепт во внешний менеджер рецептов.
func (h *RecipeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	body, err := h.Recipes.Submit(r.Context(), ac, id)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Audit.Record(r.Context(), ac.UserID, "recipe_submit",
		map[string]string{"recipe_id": id}, middleware.ClientIP(r))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Export — рецепт как markdown.
func (h *RecipeHandler) Export(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	md, err := h.Recipes.ExportMarkdown(r.Context(), ac, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(md))
}

type shoppingListRequest struct {
	RecipeIDs []string `json:"recipe_ids"`
}

// ShoppingList сводит ингредиенты выбранных рецептов в один список.
func (h *RecipeHandler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	ac, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req shoppingListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if len(req.RecipeIDs) == 0 {
		writeError(w, http.StatusBadRequest, "recipe_ids is required")
		return
	}
	items, err := h.Recipes.ShoppingList(r.Context(), ac, req.RecipeIDs)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"items": items})
}

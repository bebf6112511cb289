package handlers

import (
	"net/http"

	"RecipeKeeper/internal/config"
	"RecipeKeeper/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Handler собирает маршрутизатор из обработчиков.
type Handler struct {
	Router *chi.Mux
}

// NewHandler строит дерево маршрутов. Порядок мидлварей: метрики,
// сжатие, логирование, затем сессия — дальше каждый маршрут сам
// решает, какой уровень доступа ему нужен.
func NewHandler(
	cfg *config.Config,
	resolver middleware.SessionResolver,
	user *UserHandler,
	admin *AdminHandler,
	recipe *RecipeHandler,
	collection *CollectionHandler,
	mealPlan *MealPlanHandler,
	settings *SettingsHandler,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithSession(resolver, cfg.AuthSecret))

	// открытые маршруты
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())
	r.With(middleware.WithRateLimit(5, 10)).Post("/api/user/login", user.Login)
	r.Get("/api/public/recipes/{token}", recipe.Public)
	r.Get("/api/password-requirements", user.PasswordRequirements)

	// доступно и в состоянии принудительной смены пароля
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthAllowPasswordChange)
		r.Get("/api/user/me", user.Me)
		r.Post("/api/user/password", user.ChangePassword)
		r.Post("/api/user/logout", user.Logout)
	})

	// обычные аутентифицированные маршруты
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		// чтение — доступно и роли readonly
		r.Get("/api/recipes", recipe.List)
		r.Get("/api/recipes/{id}", recipe.Get)
		r.Get("/api/recipes/{id}/export", recipe.Export)
		r.Get("/api/recipes/{id}/pages", recipe.Pages)
		r.Get("/api/recipes/{id}/pages/{position}", recipe.PageData)
		r.Get("/api/collections", collection.List)
		r.Get("/api/mealplan", mealPlan.List)
		r.Get("/api/settings", settings.Get)
		r.Post("/api/shopping-list", recipe.ShoppingList)

		// мутации — закрыты от readonly
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireWriter)

			r.Post("/api/recipes", recipe.Create)
			r.Post("/api/recipes/import", recipe.Import)
			r.Put("/api/recipes/{id}", recipe.Update)
			r.Delete("/api/recipes/{id}", recipe.Delete)
			r.Post("/api/recipes/{id}/share", recipe.Share)
			r.Delete("/api/recipes/{id}/share", recipe.Unshare)
			r.Post("/api/recipes/{id}/nutrition", recipe.Nutrition)
			r.Post("/api/recipes/{id}/submit", recipe.Submit)

			r.Post("/api/collections", collection.Create)
			r.Put("/api/collections/{id}", collection.Rename)
			r.Delete("/api/collections/{id}", collection.Delete)

			r.Post("/api/mealplan", mealPlan.Create)
			r.Delete("/api/mealplan/{id}", mealPlan.Delete)

			// права на настройки проверяет сам обработчик:
			// admin либо can_edit_integration
			r.Put("/api/settings", settings.Update)
		})

		// только администратор
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/api/admin/users", admin.ListUsers)
			r.Post("/api/admin/users", admin.CreateUser)
			r.Put("/api/admin/users/{id}", admin.UpdateUser)
			r.Delete("/api/admin/users/{id}", admin.DeleteUser)
			r.Get("/api/admin/audit", admin.AuditLog)
		})
	})

	return &Handler{Router: r}
}

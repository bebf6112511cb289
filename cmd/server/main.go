package main

import (
	"RecipeKeeper/internal/client"
	"RecipeKeeper/internal/config"
	"RecipeKeeper/internal/handlers"
	"RecipeKeeper/internal/middleware"
	"RecipeKeeper/internal/migrate"
	"RecipeKeeper/internal/repo"
	"RecipeKeeper/internal/service"
	"net/http"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	// схема приводится к целевой при каждом старте
	if err := migrate.NewReconciler(gormDB, sugar).Run(); err != nil {
		sugar.Fatalw("schema reconciliation failed", "error", err)
	}

	middleware.InitMetrics()

	userRepo := repo.NewUserRepository(gormDB)
	recipeRepo := repo.NewRecipeRepository(gormDB)
	collectionRepo := repo.NewCollectionRepository(gormDB)
	mealPlanRepo := repo.NewMealPlanRepository(gormDB)
	settingRepo := repo.NewSettingRepository(gormDB)
	auditRepo := repo.NewAuditRepository(gormDB)
	sessionRepo := repo.NewSessionRepository(gormDB)

	timeout := cfg.ExternalTimeout()
	extractor := client.NewExtractor(cfg.ExtractorURL, cfg.ExtractorAPIKey, timeout)
	nutrition := client.NewNutritionAnalyzer(cfg.NutritionURL, timeout)
	consolidator := client.NewConsolidator(cfg.ShoppingURL, timeout)
	submitter := client.NewSubmitter(timeout)

	settingsService := service.NewSettingsService(settingRepo)
	auditService := service.NewAuditService(auditRepo, sugar)
	userService := service.NewUserService(userRepo, sessionRepo, settingsService)
	sessionService := service.NewSessionService(sessionRepo, userRepo)
	recipeService := service.NewRecipeService(recipeRepo, settingsService, extractor, nutrition, consolidator, submitter)
	collectionService := service.NewCollectionService(collectionRepo, recipeRepo)
	mealPlanService := service.NewMealPlanService(mealPlanRepo, recipeRepo)

	userHandler := handlers.NewUserHandler(userService, sessionService, settingsService, auditService, sugar, cfg)
	adminHandler := handlers.NewAdminHandler(userService, sessionService, auditService, sugar)
	recipeHandler := handlers.NewRecipeHandler(recipeService, auditService, sugar)
	collectionHandler := handlers.NewCollectionHandler(collectionService, auditService, sugar)
	mealPlanHandler := handlers.NewMealPlanHandler(mealPlanService, auditService, sugar)
	settingsHandler := handlers.NewSettingsHandler(settingsService, auditService, sugar)

	h := handlers.NewHandler(cfg, sessionService, userHandler, adminHandler, recipeHandler, collectionHandler, mealPlanHandler, settingsHandler)

	sugar.Infow(
		"Starting server",
		"addr", cfg.Addr,
	)

	sugar.Infow("Config",
		"Addr", cfg.Addr,
		"DatabaseDSN", cfg.DatabaseDSN,
		"ExtractorURL", cfg.ExtractorURL,
		"NutritionURL", cfg.NutritionURL,
		"ShoppingURL", cfg.ShoppingURL,
	)

	if err := http.ListenAndServe(cfg.Addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}

package service

import (
	"RecipeKeeper/internal/migrate"
	"RecipeKeeper/internal/repo"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB — in-memory SQLite с прогнанным реконсилером, как в проде.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := migrate.NewReconciler(db, zap.NewNop().Sugar()).Run(); err != nil {
		t.Fatalf("failed to reconcile schema: %v", err)
	}
	return db
}

// newServices собирает сервисный слой поверх одной тестовой базы.
func newServices(t *testing.T) (*gorm.DB, *UserService, *SessionService, *SettingsService) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repo.NewUserRepository(db)
	sessionRepo := repo.NewSessionRepository(db)
	settingRepo := repo.NewSettingRepository(db)

	settings := NewSettingsService(settingRepo)
	users := NewUserService(userRepo, sessionRepo, settings)
	sessions := NewSessionService(sessionRepo, userRepo)
	return db, users, sessions, settings
}

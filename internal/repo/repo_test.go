package repo

import (
	"RecipeKeeper/internal/migrate"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB инициализирует in-memory SQLite (modernc.org/sqlite) и
// прогоняет реконсилер схемы — репозитории работают на боевой DDL.
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

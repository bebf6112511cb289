package repo

import (
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB открывает файл SQLite через CGo-free драйвер modernc.
func InitDB(dsn string) (*gorm.DB, error) {
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	return gorm.Open(dial, &gorm.Config{})
}

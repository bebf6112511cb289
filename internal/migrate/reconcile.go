package migrate

import (
	"fmt"
	"strings"
	"time"

	"RecipeKeeper/internal/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Учётные данные bootstrap-администратора. Пароль сообщается
// оператору через лог и сразу требует смены.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "ChangeMe_123"
)

// Пароли по умолчанию прежних ревизий схемы. Если у администратора
// всё ещё один из них — при старте пароль сбрасывается на текущий
// default, чтобы не запереть оператора после обновления.
var legacyDefaultPasswords = []string{"admin", "password123"}

// Целевая схема. CREATE IF NOT EXISTS: существующие таблицы этот
// шаг не трогает, их доводят последующие шаги.
const (
	usersDDL = `CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		can_edit_integration INTEGER NOT NULL DEFAULT 0,
		require_password_change INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	)`

	recipesDDL = `CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		ingredients TEXT NOT NULL DEFAULT '[]',
		instructions TEXT NOT NULL DEFAULT '[]',
		image BLOB,
		image_mime TEXT,
		tags TEXT,
		collection_id TEXT,
		nutrition_info TEXT,
		servings INTEGER,
		public_token TEXT UNIQUE,
		created_at DATETIME
	)`
)

var baseTables = []string{
	usersDDL,
	recipesDDL,
	`CREATE TABLE IF NOT EXISTS settings (
		"key" TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT,
		action TEXT NOT NULL,
		details TEXT,
		remote_addr TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS collections (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS meal_plan (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		recipe_id TEXT NOT NULL,
		plan_date TEXT NOT NULL,
		meal_type TEXT NOT NULL DEFAULT 'dinner',
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS recipe_images (
		id TEXT PRIMARY KEY,
		recipe_id TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		data BLOB NOT NULL,
		mime TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_seen_at DATETIME NOT NULL
	)`,
}

// Колонки, добавленные поздними ревизиями схемы. ALTER выполняется
// безусловно; "duplicate column name" означает «уже применено».
var addedColumns = []string{
	`ALTER TABLE users ADD COLUMN can_edit_integration INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE users ADD COLUMN require_password_change INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE recipes ADD COLUMN tags TEXT`,
	`ALTER TABLE recipes ADD COLUMN collection_id TEXT`,
	`ALTER TABLE recipes ADD COLUMN nutrition_info TEXT`,
	`ALTER TABLE recipes ADD COLUMN servings INTEGER`,
	`ALTER TABLE recipes ADD COLUMN public_token TEXT`,
}

// Reconciler приводит базу в произвольном прежнем состоянии к целевой
// схеме. Запускается на каждом старте до начала обслуживания запросов;
// повторный запуск ничего не меняет.
type Reconciler struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewReconciler(db *gorm.DB, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{db: db, log: log}
}

type step struct {
	name string
	run  func() error
}

// Run выполняет шаги строго по порядку. Любая ошибка фатальна:
// сервер не должен обслуживать запросы на схеме, за которую
// реконсилер не может поручиться.
func (r *Reconciler) Run() error {
	steps := []step{
		{"create tables", r.createTables},
		{"add columns", r.addColumns},
		{"migrate user id type", r.migrateUserIDType},
		{"backfill user ids", r.backfillUserIDs},
		{"seed settings", r.seedSettings},
		{"seed admin", r.seedAdmin},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return fmt.Errorf("reconcile %s: %w", s.name, err)
		}
		r.log.Debugw("reconcile step done", "step", s.name)
	}
	return nil
}

func (r *Reconciler) createTables() error {
	for _, ddl := range baseTables {
		if err := r.db.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return nil
}

// addColumns: глотаем ТОЛЬКО "duplicate column name"; любая другая
// ошибка (например, диск) — останов старта.
func (r *Reconciler) addColumns() error {
	for _, ddl := range addedColumns {
		if err := r.db.Exec(ddl).Error; err != nil && !isDuplicateColumn(err) {
			return err
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// migrateUserIDType переводит целочисленные первичные ключи users на
// непрозрачные строковые. Rename-and-copy целиком в одной транзакции:
// либо мигрируют все строки и старые таблицы удалены, либо ничего.
func (r *Reconciler) migrateUserIDType() error {
	legacy, err := r.userIDIsInteger()
	if err != nil || !legacy {
		return err
	}
	r.log.Infow("legacy integer user ids detected, rewriting users and recipes")

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, ddl := range []string{
			`ALTER TABLE users RENAME TO users_legacy`,
			`ALTER TABLE recipes RENAME TO recipes_legacy`,
			strings.Replace(usersDDL, "IF NOT EXISTS users", "users", 1),
			strings.Replace(recipesDDL, "IF NOT EXISTS recipes", "recipes", 1),
		} {
			if err := tx.Exec(ddl).Error; err != nil {
				return err
			}
		}

		// users: новый id каждой строке, запоминаем старый → новый.
		idMap := map[string]string{}
		oldIDs, err := scanStrings(tx, `SELECT id FROM users_legacy`)
		if err != nil {
			return err
		}
		for _, old := range oldIDs {
			id := uuid.NewString()
			idMap[old] = id
			err := tx.Exec(`INSERT INTO users
				(id, username, password_hash, role, can_edit_integration, require_password_change, created_at)
				SELECT ?, username, password_hash, role, can_edit_integration, require_password_change, created_at
				FROM users_legacy WHERE id = ?`, id, old).Error
			if err != nil {
				return err
			}
		}

		// recipes: новый id и переписанная ссылка на владельца.
		rows, err := tx.Raw(`SELECT id, user_id FROM recipes_legacy`).Rows()
		if err != nil {
			return err
		}
		type ref struct{ id, userID string }
		var refs []ref
		for rows.Next() {
			var v ref
			if err := rows.Scan(&v.id, &v.userID); err != nil {
				rows.Close()
				return err
			}
			refs = append(refs, v)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		for _, v := range refs {
			owner, ok := idMap[v.userID]
			if !ok {
				// осиротевшая строка: переносим как есть
				owner = v.userID
			}
			err := tx.Exec(`INSERT INTO recipes
				(id, user_id, name, description, ingredients, instructions, image, image_mime,
				 tags, collection_id, nutrition_info, servings, public_token, created_at)
				SELECT ?, ?, name, COALESCE(description, ''), COALESCE(ingredients, '[]'),
				 COALESCE(instructions, '[]'), image, image_mime,
				 tags, collection_id, nutrition_info, servings, public_token, created_at
				FROM recipes_legacy WHERE id = ?`, uuid.NewString(), owner, v.id).Error
			if err != nil {
				return err
			}
		}

		for _, ddl := range []string{`DROP TABLE users_legacy`, `DROP TABLE recipes_legacy`} {
			if err := tx.Exec(ddl).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Reconciler) userIDIsInteger() (bool, error) {
	type columnInfo struct {
		CID     int    `gorm:"column:cid"`
		Name    string `gorm:"column:name"`
		Type    string `gorm:"column:type"`
		NotNull int    `gorm:"column:notnull"`
		PK      int    `gorm:"column:pk"`
	}
	var cols []columnInfo
	if err := r.db.Raw(`PRAGMA table_info(users)`).Scan(&cols).Error; err != nil {
		return false, err
	}
	for _, c := range cols {
		if c.Name == "id" {
			return strings.Contains(strings.ToUpper(c.Type), "INT"), nil
		}
	}
	return false, nil
}

// backfillUserIDs чинит отдельные строки с неполноценными id
// (остатки ручных вставок и частичных миграций). Каждая строка —
// своя транзакция: прерывание не ломает уже починенные, остаток
// доедет при следующем старте.
func (r *Reconciler) backfillUserIDs() error {
	ids, err := scanStrings(r.db, `SELECT id FROM users`)
	if err != nil {
		return err
	}
	for _, old := range ids {
		if looksGenerated(old) {
			continue
		}
		id := uuid.NewString()
		err := r.db.Transaction(func(tx *gorm.DB) error {
			for _, q := range []string{
				`UPDATE users SET id = ? WHERE id = ?`,
				`UPDATE recipes SET user_id = ? WHERE user_id = ?`,
				`UPDATE collections SET user_id = ? WHERE user_id = ?`,
				`UPDATE meal_plan SET user_id = ? WHERE user_id = ?`,
				`UPDATE sessions SET user_id = ? WHERE user_id = ?`,
			} {
				if err := tx.Exec(q, id, old).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			r.log.Warnw("user id backfill failed, will retry next start", "user_id", old, "error", err)
			continue
		}
		r.log.Infow("backfilled user id", "old", old, "new", id)
	}
	return nil
}

// looksGenerated: сгенерированные id — uuid, 36 символов. Всё
// заметно короче — легаси.
func looksGenerated(id string) bool { return len(id) >= 32 }

// seedSettings вставляет политику по умолчанию, никогда не
// перезаписывая значения, выставленные администратором.
func (r *Reconciler) seedSettings() error {
	defaults := map[string]string{
		"password_min_length":      "10",
		"password_require_number":  "true",
		"password_require_special": "true",
	}
	for k, v := range defaults {
		if err := r.db.Exec(`INSERT OR IGNORE INTO settings ("key", value) VALUES (?, ?)`, k, v).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedAdmin гарантирует существование хотя бы одного администратора
// и лечит учётку, оставшуюся на историческом пароле по умолчанию.
func (r *Reconciler) seedAdmin() error {
	var count int64
	if err := r.db.Raw(`SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		hash, err := auth.HashPassword(DefaultAdminPassword)
		if err != nil {
			return err
		}
		err = r.db.Exec(`INSERT INTO users
			(id, username, password_hash, role, can_edit_integration, require_password_change, created_at)
			VALUES (?, ?, ?, 'admin', 1, 1, ?)`,
			uuid.NewString(), DefaultAdminUsername, hash, time.Now().UTC()).Error
		if err != nil {
			return err
		}
		r.log.Warnw("created default admin account, change the password immediately",
			"username", DefaultAdminUsername, "password", DefaultAdminPassword)
		return nil
	}

	var admin struct {
		ID           string
		PasswordHash string
	}
	tx := r.db.Raw(`SELECT id, password_hash FROM users WHERE username = ? AND role = 'admin'`,
		DefaultAdminUsername).Scan(&admin)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 || admin.ID == "" {
		return nil
	}
	for _, weak := range legacyDefaultPasswords {
		if auth.VerifyPassword(admin.PasswordHash, weak) == nil {
			hash, err := auth.HashPassword(DefaultAdminPassword)
			if err != nil {
				return err
			}
			err = r.db.Exec(`UPDATE users SET password_hash = ?, require_password_change = 1 WHERE id = ?`,
				hash, admin.ID).Error
			if err != nil {
				return err
			}
			r.log.Warnw("admin account still used a historical default password, reset to current default",
				"username", DefaultAdminUsername, "password", DefaultAdminPassword)
			break
		}
	}
	return nil
}

func scanStrings(db *gorm.DB, query string) ([]string, error) {
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

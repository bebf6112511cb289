package model

import "time"

// Роли пользователей. Роль admin снимает все проверки владения.
const (
	RoleAdmin    = "admin"
	RoleUser     = "user"
	RoleReadOnly = "readonly"
)

// User — учётная запись. Идентификатор — непрозрачная строка (uuid),
// а не автоинкремент: так миграции между таблицами безопаснее.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"not null;default:user" json:"role"`

	// Право редактировать настройки внешней интеграции без роли admin.
	CanEditIntegration bool `gorm:"not null;default:false" json:"can_edit_integration"`

	// Принудительная смена пароля при следующем действии.
	RequirePasswordChange bool `gorm:"not null;default:false" json:"require_password_change"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsAdmin сообщает, обходит ли пользователь проверки владения.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

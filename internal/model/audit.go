package model

import "time"

// AuditLog — журнал действий, только добавление.
// UserID может быть пустым для анонимных, но разрешённых действий.
type AuditLog struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string  `gorm:"not null;index" json:"action"`
	Details    string  `gorm:"type:text" json:"details,omitempty"` // произвольный JSON
	RemoteAddr string  `json:"remote_addr,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

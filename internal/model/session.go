package model

import "time"

// Session — серверная сессия. Скользящее продление по LastSeenAt,
// абсолютный потолок жизни — по CreatedAt.
type Session struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID string `gorm:"not null;index"`

	CreatedAt  time.Time `gorm:"not null"`
	LastSeenAt time.Time `gorm:"not null"`
}

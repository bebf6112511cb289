package model

import "time"

// Recipe — оцифрованный рецепт пользователя.
type Recipe struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"` // ссылка на users.id

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// Упорядоченные списки, хранятся как JSON в TEXT-колонках.
	Ingredients  []string `gorm:"serializer:json;type:text" json:"ingredients"`
	Instructions []string `gorm:"serializer:json;type:text" json:"instructions"`
	Tags         []string `gorm:"serializer:json;type:text" json:"tags,omitempty"`

	// Основное изображение (опционально).
	Image     []byte `gorm:"type:blob" json:"-"`
	ImageMime string `json:"image_mime,omitempty"`

	CollectionID  *string `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	NutritionInfo string  `gorm:"type:text" json:"nutrition_info,omitempty"`
	Servings      *int    `json:"servings,omitempty"`

	// Токен публичного доступа: выдан — рецепт читается без сессии.
	PublicToken *string `gorm:"uniqueIndex" json:"public_token,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RecipeImage — дополнительные страницы исходного изображения рецепта.
type RecipeImage struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	RecipeID string `gorm:"not null;index" json:"recipe_id"`
	Position int    `gorm:"not null;default:0" json:"position"`
	Data     []byte `gorm:"not null;type:blob" json:"-"`
	Mime     string `gorm:"not null" json:"mime"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

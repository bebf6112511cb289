package model

import "time"

// Collection — пользовательская подборка рецептов.
// Удаление подборки не трогает рецепты, только обнуляет их ссылку.
type Collection struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// MealPlanEntry — запись плана питания: рецепт на дату и приём пищи.
type MealPlanEntry struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"not null;index" json:"user_id"`
	RecipeID string `gorm:"not null;index" json:"recipe_id"`
	PlanDate string `gorm:"not null" json:"plan_date"` // YYYY-MM-DD
	MealType string `gorm:"not null;default:dinner" json:"meal_type"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName — историческое имя таблицы.
func (MealPlanEntry) TableName() string { return "meal_plan" }

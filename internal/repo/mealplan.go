package repo

import (
	"RecipeKeeper/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// MealPlanRepository — записи плана питания.
type MealPlanRepository interface {
	Create(ctx context.Context, e *model.MealPlanEntry) error
	GetByID(ctx context.Context, id string) (*model.MealPlanEntry, error)
	ListByUser(ctx context.Context, userID string) ([]model.MealPlanEntry, error)
	Delete(ctx context.Context, id string) error
}

type mealPlanRepo struct {
	db *gorm.DB
}

func NewMealPlanRepository(db *gorm.DB) MealPlanRepository {
	return &mealPlanRepo{db: db}
}

func (r *mealPlanRepo) Create(ctx context.Context, e *model.MealPlanEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *mealPlanRepo) GetByID(ctx context.Context, id string) (*model.MealPlanEntry, error) {
	var e model.MealPlanEntry
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *mealPlanRepo) ListByUser(ctx context.Context, userID string) ([]model.MealPlanEntry, error) {
	var es []model.MealPlanEntry
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("plan_date").Find(&es).Error
	return es, err
}

func (r *mealPlanRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.MealPlanEntry{}, "id = ?", id).Error
}

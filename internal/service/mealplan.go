package service

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/repo"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MealPlanService — план питания: рецепт на дату и приём пищи.
type MealPlanService struct {
	entries repo.MealPlanRepository
	recipes repo.RecipeRepository
}

func NewMealPlanService(entries repo.MealPlanRepository, recipes repo.RecipeRepository) *MealPlanService {
	return &MealPlanService{entries: entries, recipes: recipes}
}

func (s *MealPlanService) List(ctx context.Context, ac auth.Context) ([]model.MealPlanEntry, error) {
	return s.entries.ListByUser(ctx, ac.UserID)
}

func (s *MealPlanService) Create(ctx context.Context, ac auth.Context, recipeID, planDate, mealType string) (*model.MealPlanEntry, error) {
	if _, err := time.Parse("2006-01-02", planDate); err != nil {
		return nil, fmt.Errorf("plan_date must be YYYY-MM-DD")
	}
	// рецепт должен существовать и принадлежать пользователю
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if rec == nil || (!ac.IsAdmin() && rec.UserID != ac.UserID) {
		return nil, ErrNotFound
	}
	if mealType == "" {
		mealType = "dinner"
	}
	e := &model.MealPlanEntry{
		ID:       uuid.NewString(),
		UserID:   ac.UserID,
		RecipeID: recipeID,
		PlanDate: planDate,
		MealType: mealType,
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *MealPlanService) Delete(ctx context.Context, ac auth.Context, id string) error {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil || (!ac.IsAdmin() && e.UserID != ac.UserID) {
		return ErrNotFound
	}
	return s.entries.Delete(ctx, e.ID)
}

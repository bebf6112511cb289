package service

import (
	"RecipeKeeper/internal/auth"
	"RecipeKeeper/internal/model"
	"RecipeKeeper/internal/repo"
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CollectionService — подборки рецептов. Те же правила владения,
// что и у рецептов.
type CollectionService struct {
	collections repo.CollectionRepository
	recipes     repo.RecipeRepository
}

func NewCollectionService(collections repo.CollectionRepository, recipes repo.RecipeRepository) *CollectionService {
	return &CollectionService{collections: collections, recipes: recipes}
}

func (s *CollectionService) getOwned(ctx context.Context, ac auth.Context, id string) (*model.Collection, error) {
	c, err := s.collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || (!ac.IsAdmin() && c.UserID != ac.UserID) {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CollectionService) List(ctx context.Context, ac auth.Context) ([]model.Collection, error) {
	return s.collections.ListByUser(ctx, ac.UserID)
}

func (s *CollectionService) Create(ctx context.Context, ac auth.Context, name string) (*model.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	c := &model.Collection{ID: uuid.NewString(), UserID: ac.UserID, Name: name}
	if err := s.collections.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CollectionService) Rename(ctx context.Context, ac auth.Context, id, name string) (*model.Collection, error) {
	c, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	c.Name = name
	if err := s.collections.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete удаляет подборку. Рецепты остаются: у них лишь обнуляется
// ссылка на подборку.
func (s *CollectionService) Delete(ctx context.Context, ac auth.Context, id string) error {
	c, err := s.getOwned(ctx, ac, id)
	if err != nil {
		return err
	}
	if err := s.recipes.DetachCollection(ctx, c.ID); err != nil {
		return err
	}
	return s.collections.Delete(ctx, c.ID)
}

package repo

import (
	"RecipeKeeper/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// RecipeRepository — контракт доступа к рецептам.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
	GetByPublicToken(ctx context.Context, token string) (*model.Recipe, error)
	ListByUser(ctx context.Context, userID string) ([]model.Recipe, error)
	ListAll(ctx context.Context) ([]model.Recipe, error)
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, id string) error

	// SetPublicToken выставляет или снимает (nil) токен публичного доступа.
	SetPublicToken(ctx context.Context, id string, token *string) error

	// DetachCollection обнуляет ссылку на подборку у всех её рецептов.
	DetachCollection(ctx context.Context, collectionID string) error

	// Страницы исходного скана рецепта.
	ReplaceImages(ctx context.Context, recipeID string, images []model.RecipeImage) error
	ListImages(ctx context.Context, recipeID string) ([]model.RecipeImage, error)
	GetImage(ctx context.Context, recipeID string, position int) (*model.RecipeImage, error)
}

type recipeRepo struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepo{db: db}
}

func (r *recipeRepo) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *recipeRepo) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	var rec model.Recipe
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recipeRepo) GetByPublicToken(ctx context.Context, token string) (*model.Recipe, error) {
	var rec model.Recipe
	err := r.db.WithContext(ctx).First(&rec, "public_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recipeRepo) ListByUser(ctx context.Context, userID string) ([]model.Recipe, error) {
	var recipes []model.Recipe
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepo) ListAll(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepo) Update(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Save(recipe).Error
}

func (r *recipeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.RecipeImage{}, "recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Recipe{}, "id = ?", id).Error
	})
}

func (r *recipeRepo) SetPublicToken(ctx context.Context, id string, token *string) error {
	return r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ?", id).
		Update("public_token", token).Error
}

func (r *recipeRepo) DetachCollection(ctx context.Context, collectionID string) error {
	return r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("collection_id = ?", collectionID).
		Update("collection_id", nil).Error
}

func (r *recipeRepo) ReplaceImages(ctx context.Context, recipeID string, images []model.RecipeImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.RecipeImage{}, "recipe_id = ?", recipeID).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&images).Error
	})
}

func (r *recipeRepo) ListImages(ctx context.Context, recipeID string) ([]model.RecipeImage, error) {
	var images []model.RecipeImage
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("position ASC").
		Find(&images).Error
	return images, err
}

func (r *recipeRepo) GetImage(ctx context.Context, recipeID string, position int) (*model.RecipeImage, error) {
	var img model.RecipeImage
	err := r.db.WithContext(ctx).
		First(&img, "recipe_id = ? AND position = ?", recipeID, position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

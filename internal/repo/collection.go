package repo

import (
	"RecipeKeeper/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// CollectionRepository — подборки рецептов.
type CollectionRepository interface {
	Create(ctx context.Context, c *model.Collection) error
	GetByID(ctx context.Context, id string) (*model.Collection, error)
	ListByUser(ctx context.Context, userID string) ([]model.Collection, error)
	Update(ctx context.Context, c *model.Collection) error
	Delete(ctx context.Context, id string) error
}

type collectionRepo struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepo{db: db}
}

func (r *collectionRepo) Create(ctx context.Context, c *model.Collection) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *collectionRepo) GetByID(ctx context.Context, id string) (*model.Collection, error) {
	var c model.Collection
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepo) ListByUser(ctx context.Context, userID string) ([]model.Collection, error) {
	var cs []model.Collection
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&cs).Error
	return cs, err
}

func (r *collectionRepo) Update(ctx context.Context, c *model.Collection) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *collectionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Collection{}, "id = ?", id).Error
}

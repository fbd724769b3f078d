package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/relation/domain"
	"github.com/smallbiznis/storefront/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(gdb *gorm.DB) domain.Repository {
	return &repo{db: gdb}
}

func (r *repo) GetOrCreate(ctx context.Context, userID, productID snowflake.ID, newID func() snowflake.ID) (*domain.Relation, error) {
	existing, err := r.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	relation := &domain.Relation{
		ID:        newID(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = r.db.WithContext(ctx).Create(relation).Error
	if err == nil {
		return relation, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return nil, err
	}

	// Lost the insert race; the winner's row is the one to mutate.
	winner, err := r.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return winner, nil
}

func (r *repo) FindByUserAndProduct(ctx context.Context, userID, productID snowflake.ID) (*domain.Relation, error) {
	var relation domain.Relation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&relation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

func (r *repo) Update(ctx context.Context, relation *domain.Relation) error {
	if relation == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).
		Model(&domain.Relation{}).
		Where("id = ?", relation.ID).
		Updates(map[string]any{
			"liked":        relation.Liked,
			"in_bookmarks": relation.InBookmarks,
			"rate":         relation.Rate,
			"updated_at":   relation.UpdatedAt,
		}).Error
}

package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"payment-service/internal/domain"
	"payment-service/internal/repository"
)

type artworkRepo struct {
	db *gorm.DB
}

func NewArtworkRepository(db *gorm.DB) repository.ArtworkRepository {
	return &artworkRepo{db: db}
}

func (r *artworkRepo) FindByID(ctx context.Context, id string) (*domain.Artwork, error) {
	var a domain.Artwork
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find artwork: %w", err)
	}
	return &a, nil
}

package repository

import (
	"context"

	"agrizen/domain"

	"gorm.io/gorm"
)

type farmerRepository struct {
	db *gorm.DB
}

func NewFarmerRepository(db *gorm.DB) domain.FarmerRepository {
	return &farmerRepository{db: db}
}

func (r *farmerRepository) CreateFarmer(ctx context.Context, farmer *domain.Farmer) error {
	return r.db.WithContext(ctx).Create(farmer).Error
}

func (r *farmerRepository) GetFarmerByEmail(ctx context.Context, email string) (*domain.Farmer, error) {
	var farmer domain.Farmer
	if err := r.db.WithContext(ctx).First(&farmer, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

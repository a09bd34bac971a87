package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/persistence/models"
)

// GormBuyerRepository implements invoicing.BuyerRepository using GORM.
// Each instance is bound to one tenant's database handle.
type GormBuyerRepository struct {
	db *gorm.DB
}

// NewGormBuyerRepository creates a buyer repository over a tenant handle
func NewGormBuyerRepository(db *gorm.DB) *GormBuyerRepository {
	return &GormBuyerRepository{db: db}
}

// FindByID finds a buyer by primary key
func (r *GormBuyerRepository) FindByID(ctx context.Context, id uint64) (*invoicing.Buyer, error) {
	var model models.BuyerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all buyers, newest first
func (r *GormBuyerRepository) FindAll(ctx context.Context) ([]invoicing.Buyer, error) {
	var buyerModels []models.BuyerModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&buyerModels).Error; err != nil {
		return nil, err
	}
	buyers := make([]invoicing.Buyer, len(buyerModels))
	for i, m := range buyerModels {
		buyers[i] = *m.ToDomain()
	}
	return buyers, nil
}

// Save inserts a new buyer
func (r *GormBuyerRepository) Save(ctx context.Context, b *invoicing.Buyer) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	var model models.BuyerModel
	model.FromDomain(b)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	b.ID = model.ID
	return nil
}

// Update persists changes to an existing buyer
func (r *GormBuyerRepository) Update(ctx context.Context, b *invoicing.Buyer) error {
	b.UpdatedAt = time.Now()
	var model models.BuyerModel
	model.FromDomain(b)
	result := r.db.WithContext(ctx).Save(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a buyer
func (r *GormBuyerRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.BuyerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

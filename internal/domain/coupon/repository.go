// internal/domain/coupon/repository.go
package coupon

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no coupon matches the requested code or id
var ErrNotFound = errors.New("coupon not found")

// Repository provides database access for coupons
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new coupon repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCode looks up a coupon by its canonical code
func (r *Repository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	return &c, nil
}

// GetByID retrieves a coupon by id
func (r *Repository) GetByID(ctx context.Context, id uint) (*Coupon, error) {
	var c Coupon
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &c, nil
}

// List returns coupons ordered by creation time, newest first
func (r *Repository) List(ctx context.Context, page, limit int) ([]Coupon, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	var coupons []Coupon
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&coupons).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}

	return coupons, total, nil
}

// Create inserts a new coupon
func (r *Repository) Create(ctx context.Context, c *Coupon) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// Save persists changes to an existing coupon
func (r *Repository) Save(ctx context.Context, c *Coupon) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to save coupon: %w", err)
	}
	return nil
}

// Delete soft-deletes a coupon
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Coupon{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Redeem atomically increments the usage counter, guarded by the usage
// limit. Called by order finalization, never by coupon application.
func (r *Repository) Redeem(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("coupon cannot be redeemed: not found or usage limit reached")
	}
	return nil
}

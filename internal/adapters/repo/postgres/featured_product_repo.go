package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/domain"
)

// FeaturedProductRepo guarda el orden de exhibición que usa el orden "featured".
type FeaturedProductRepo struct{ db *gorm.DB }

func NewFeaturedProductRepo(db *gorm.DB) *FeaturedProductRepo {
	return &FeaturedProductRepo{db: db}
}

// Feature fija el orden de exhibición del producto con ese handle y lo agrega
// a destacados si todavía no está.
func (r *FeaturedProductRepo) Feature(ctx context.Context, handle string, order int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p productRow
		if err := tx.Select("id").First(&p, "handle = ?", handle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		var existing featuredRow
		err := tx.Where("product_id = ?", p.ID).First(&existing).Error
		switch {
		case err == nil:
			return tx.Model(&existing).Update("display_order", order).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&featuredRow{ProductID: p.ID, DisplayOrder: order, CreatedAt: time.Now()}).Error
		default:
			return err
		}
	})
}

func (r *FeaturedProductRepo) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&featuredRow{}).Error
}

// Handles devuelve los handles destacados según el orden de exhibición.
func (r *FeaturedProductRepo) Handles(ctx context.Context) ([]string, error) {
	var handles []string
	err := r.db.WithContext(ctx).
		Table("featured_products").
		Joins("INNER JOIN products ON products.id = featured_products.product_id").
		Where("products.active = ?", true).
		Order("featured_products.display_order asc").
		Pluck("products.handle", &handles).Error
	return handles, err
}

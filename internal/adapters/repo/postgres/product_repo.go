package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/domain"
)

// ProductRepo es el espejo del catálogo en postgres. Implementa domain.Catalog.
type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&productRow{}, &variantRow{}, &imageRow{}, &optionRow{}, &featuredRow{})
}

func preloadOrdered(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") })
}

func (r *ProductRepo) ByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	var row productRow
	err := preloadOrdered(r.db.WithContext(ctx)).First(&row, "handle = ? AND active = ?", handle, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p := row.toDomain()
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&productRow{}).Where("products.active = ?", true)
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(products.title) LIKE LOWER(?) OR LOWER(products.handle) LIKE LOWER(?) OR LOWER(products.description) LIKE LOWER(?)", like, like, like)
	}
	switch f.Sort {
	case "price_desc":
		q = q.Order("products.min_price desc")
	case "price_asc":
		q = q.Order("products.min_price asc")
	case "newest":
		q = q.Order("products.created_at desc")
	case "featured":
		q = q.Joins("LEFT JOIN featured_products ON featured_products.product_id = products.id").
			Order("featured_products.display_order asc NULLS LAST").Order("products.title asc")
	default:
		q = q.Order("products.title asc")
	}
	page, size := f.Page, f.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 24
	}
	var rows []productRow
	if err := preloadOrdered(q.Offset((page - 1) * size).Limit(size)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Save inserta o actualiza el producto y reemplaza variantes, imágenes y opciones.
func (r *ProductRepo) Save(ctx context.Context, p domain.Product) error {
	if p.ID == "" || p.Handle == "" {
		return fmt.Errorf("save product: id and handle required: %w", domain.ErrInvalidInput)
	}
	row := fromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveRow(tx, row)
	})
}

// SaveAll guarda todos los productos en una sola transacción.
func (r *ProductRepo) SaveAll(ctx context.Context, ps []domain.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range ps {
			if p.ID == "" || p.Handle == "" {
				return fmt.Errorf("save product %q: id and handle required: %w", p.Handle, domain.ErrInvalidInput)
			}
			if err := saveRow(tx, fromDomain(p)); err != nil {
				return fmt.Errorf("save product %q: %w", p.Handle, err)
			}
		}
		return nil
	})
}

func saveRow(tx *gorm.DB, row productRow) error {
	for _, child := range []any{&variantRow{}, &imageRow{}, &optionRow{}} {
		if err := tx.Where("product_id = ?", row.ID).Delete(child).Error; err != nil {
			return err
		}
	}
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&row).Error
}

// All devuelve los productos activos ordenados por título (exportación).
func (r *ProductRepo) All(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := preloadOrdered(r.db.WithContext(ctx)).Where("active = ?", true).Order("title asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Deactivate oculta el producto de la tienda sin borrar sus filas.
func (r *ProductRepo) Deactivate(ctx context.Context, handle string) error {
	res := r.db.WithContext(ctx).Model(&productRow{}).Where("handle = ?", handle).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

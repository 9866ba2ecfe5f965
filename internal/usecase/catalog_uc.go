package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/variant"
)

const DefaultPageSize = 24

type CatalogUC struct {
	Catalog domain.Catalog
}

func (uc *CatalogUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	f.Query = strings.TrimSpace(f.Query)
	return uc.Catalog.List(ctx, f)
}

func (uc *CatalogUC) ByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, fmt.Errorf("empty handle: %w", domain.ErrInvalidInput)
	}
	return uc.Catalog.ByHandle(ctx, handle)
}

// Pick loads the product and resolves the variant for sel. An explicit
// variantID wins over sel when it names one of the product's variants. ok is
// false when the selection does not identify a variant.
func (uc *CatalogUC) Pick(ctx context.Context, handle, variantID string, sel variant.Selection) (p *domain.Product, id string, ok bool, err error) {
	p, err = uc.ByHandle(ctx, handle)
	if err != nil {
		return nil, "", false, err
	}
	if variantID != "" {
		if _, found := p.FindVariant(variantID); found || len(p.Variants) == 0 {
			return p, variantID, true, nil
		}
		return p, "", false, nil
	}
	id, ok = variant.Resolve(*p, sel)
	return p, id, ok, nil
}

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/phenrril/storefront/internal/adapters/catalogxlsx"
	"github.com/phenrril/storefront/internal/domain"
)

type productSaver interface {
	SaveAll(ctx context.Context, ps []domain.Product) error
}

type featuredWriter interface {
	Clear(ctx context.Context) error
	Feature(ctx context.Context, handle string, order int) error
}

// importRows saves the products and then their featured positions. It returns
// how many products ended up featured.
func importRows(ctx context.Context, rows []catalogxlsx.Row, products productSaver, featured featuredWriter, replace bool) (int, error) {
	ps := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, r.Product)
	}
	if err := products.SaveAll(ctx, ps); err != nil {
		return 0, fmt.Errorf("save products: %w", err)
	}
	if replace {
		if err := featured.Clear(ctx); err != nil {
			return 0, fmt.Errorf("clear featured: %w", err)
		}
	}
	n := 0
	for _, r := range rows {
		if r.Featured <= 0 {
			continue
		}
		if err := featured.Feature(ctx, r.Product.Handle, r.Featured); err != nil {
			return n, fmt.Errorf("feature %s: %w", r.Product.Handle, err)
		}
		n++
	}
	return n, nil
}

// exportRows pairs products with their 1-based featured position from the
// ordered handle list. Featured products come first.
func exportRows(ps []domain.Product, featured []string) []catalogxlsx.Row {
	pos := make(map[string]int, len(featured))
	for i, h := range featured {
		pos[h] = i + 1
	}
	rows := make([]catalogxlsx.Row, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, catalogxlsx.Row{Product: p, Featured: pos[p.Handle]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Featured, rows[j].Featured
		switch {
		case a == 0:
			return false
		case b == 0:
			return true
		default:
			return a < b
		}
	})
	return rows
}

// Package variant maps a shopper's option choices onto a concrete variant.
package variant

import (
	"strings"

	"github.com/phenrril/storefront/internal/domain"
)

// Selection maps option name to the chosen value.
type Selection map[string]string

// RequiresSelection reports whether some option group offers more than one value.
func RequiresSelection(p domain.Product) bool {
	for _, o := range p.Options {
		if len(o.Values) > 1 {
			return true
		}
	}
	return false
}

// DefaultSelection preselects every group that has a single value.
func DefaultSelection(p domain.Product) Selection {
	sel := Selection{}
	for _, o := range p.Options {
		if len(o.Values) == 1 {
			sel[o.Name] = o.Values[0]
		}
	}
	return sel
}

// Resolve returns the variant whose selected options all match sel. Partial or
// unmatched selections resolve to nothing, and so does a selection naming an
// option the product does not have. Products that need no choice resolve to
// their first variant.
func Resolve(p domain.Product, sel Selection) (string, bool) {
	for name := range sel {
		if !hasOption(p, name) {
			return "", false
		}
	}
	if !RequiresSelection(p) {
		if p.FirstVariantID != "" {
			return p.FirstVariantID, true
		}
		if len(p.Variants) > 0 {
			return p.Variants[0].ID, true
		}
		return "", false
	}
	merged := DefaultSelection(p)
	for k, v := range sel {
		merged[k] = v
	}
	for _, v := range p.Variants {
		if matches(v, merged) {
			return v.ID, true
		}
	}
	return "", false
}

func matches(v domain.Variant, sel Selection) bool {
	if len(v.SelectedOptions) == 0 {
		return false
	}
	for _, so := range v.SelectedOptions {
		chosen, ok := lookup(sel, so.Name)
		if !ok || chosen != so.Value {
			return false
		}
	}
	return true
}

// hasOption reports whether name is one of the product's option groups or a
// selected option of one of its variants, ignoring case.
func hasOption(p domain.Product, name string) bool {
	for _, o := range p.Options {
		if strings.EqualFold(o.Name, name) {
			return true
		}
	}
	for _, v := range p.Variants {
		for _, so := range v.SelectedOptions {
			if strings.EqualFold(so.Name, name) {
				return true
			}
		}
	}
	return false
}

// lookup matches option names case-insensitively; query strings rarely keep case.
func lookup(sel Selection, name string) (string, bool) {
	if v, ok := sel[name]; ok {
		return v, true
	}
	for k, v := range sel {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

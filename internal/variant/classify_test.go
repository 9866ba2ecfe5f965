package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phenrril/storefront/internal/domain"
)

func TestSynonymClassifier(t *testing.T) {
	c := DefaultClassifier()
	cases := map[string]Kind{
		"Size":         KindSize,
		"Größe":        KindSize,
		"GRÖSSE":       KindSize,
		"Grösse":       KindSize,
		"Taille":       KindSize,
		"Shoe size":    KindSize,
		"Color":        KindColor,
		"Colour":       KindColor,
		"Farbe":        KindColor,
		"Couleur":      KindColor,
		"Cor":          KindColor,
		"Decor":        KindOther,
		"Material":     KindOther,
		"":             KindOther,
	}
	for name, want := range cases {
		assert.Equal(t, want, c.Classify(name), name)
	}
	// size wins when a name mentions both
	assert.Equal(t, KindSize, c.Classify("Farbe / Größe"))
}

func TestClassifyGroupsKeepsOrder(t *testing.T) {
	p := domain.Product{Options: []domain.ProductOption{
		{Name: "Farbe"}, {Name: "Material"}, {Name: "Taille"}, {Name: "Colour"},
	}}
	g := Classify(p, DefaultClassifier())
	assert.Equal(t, []domain.ProductOption{{Name: "Taille"}}, g.Size)
	assert.Equal(t, []domain.ProductOption{{Name: "Farbe"}, {Name: "Colour"}}, g.Color)
	assert.Equal(t, []domain.ProductOption{{Name: "Material"}}, g.Other)
	assert.Equal(t, "color", KindColor.String())
}

package variant

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/phenrril/storefront/internal/domain"
)

type Kind int

const (
	KindOther Kind = iota
	KindSize
	KindColor
)

func (k Kind) String() string {
	switch k {
	case KindSize:
		return "size"
	case KindColor:
		return "color"
	default:
		return "other"
	}
}

// Classifier decides what an option group is about. Classification only steers
// presentation; resolution never depends on it.
type Classifier interface {
	Classify(optionName string) Kind
}

// SynonymClassifier is a best-effort substring match over localized option
// names, after folding case and accents. "größe", "grösse" and "taille" all land
// on KindSize.
type SynonymClassifier struct {
	Size  []string
	Color []string
}

func DefaultClassifier() SynonymClassifier {
	return SynonymClassifier{
		Size:  []string{"size", "grosse", "groesse", "taille", "talla", "taglia", "maat", "rozmiar", "tamanho"},
		Color: []string{"color", "colour", "farbe", "couleur", "colore", "kleur", "cor", "kolor"},
	}
}

func (c SynonymClassifier) Classify(optionName string) Kind {
	n := fold(optionName)
	if n == "" {
		return KindOther
	}
	for _, s := range c.Size {
		if strings.Contains(n, s) {
			return KindSize
		}
	}
	for _, s := range c.Color {
		if s == "cor" || s == "kolor" {
			// short tokens only count as whole words
			if containsWord(n, s) {
				return KindColor
			}
			continue
		}
		if strings.Contains(n, s) {
			return KindColor
		}
	}
	return KindOther
}

func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ß", "ss")
	// transformers carry state, one chain per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func containsWord(s, w string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if f == w {
			return true
		}
	}
	return false
}

// Groups splits a product's option groups by kind, keeping their order.
type Groups struct {
	Size  []domain.ProductOption
	Color []domain.ProductOption
	Other []domain.ProductOption
}

func Classify(p domain.Product, c Classifier) Groups {
	var g Groups
	for _, o := range p.Options {
		switch c.Classify(o.Name) {
		case KindSize:
			g.Size = append(g.Size, o)
		case KindColor:
			g.Color = append(g.Color, o)
		default:
			g.Other = append(g.Other, o)
		}
	}
	return g
}

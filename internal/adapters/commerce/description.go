package commerce

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText flattens a description fragment into readable text, one paragraph
// or list item per line.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()

	var parts []string
	blocks := doc.Find("p, li, h1, h2, h3, h4, h5, h6")
	if blocks.Length() == 0 {
		return collapse(doc.Text())
	}
	blocks.Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

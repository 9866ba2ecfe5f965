// Package catalogxlsx lee y escribe el catálogo como planilla, una fila por
// variante.
package catalogxlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/storefront/internal/domain"
)

const SheetName = "Catalog"

// Columns en orden de exportación. Import compara encabezados sin distinguir
// mayúsculas e ignora columnas desconocidas.
var Columns = []string{
	"handle", "title", "product_id", "variant_id", "variant_title", "price", "currency",
	"option1_name", "option1_value", "option2_name", "option2_value", "option3_name", "option3_value",
	"available", "image_url", "description_html", "featured",
}

const maxOptions = 3

// Row es un producto importado con su posición de destacado (0 si no lo es).
type Row struct {
	Product  domain.Product
	Featured int
}

// Import lee la primera hoja. Las filas con el mismo handle son variantes de un
// mismo producto, en el orden de la hoja.
func Import(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["handle"]; !ok {
		return nil, fmt.Errorf("missing handle column: %w", domain.ErrInvalidInput)
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Row
	index := map[string]int{}
	for n, row := range rows[1:] {
		line := n + 2
		handle := cell(row, "handle")
		if handle == "" {
			continue
		}
		currency := cell(row, "currency")
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		price, err := parsePrice(cell(row, "price"), currency)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		i, seen := index[handle]
		if !seen {
			id := cell(row, "product_id")
			if id == "" {
				id = "gid://storefront/Product/" + handle
			}
			p := domain.Product{
				ID:              id,
				Handle:          handle,
				Title:           cell(row, "title"),
				DescriptionHTML: cell(row, "description_html"),
			}
			if p.Title == "" {
				p.Title = handle
			}
			featured, _ := strconv.Atoi(cell(row, "featured"))
			out = append(out, Row{Product: p, Featured: featured})
			i = len(out) - 1
			index[handle] = i
		}
		p := &out[i].Product

		if u := cell(row, "image_url"); u != "" && !hasImage(*p, u) {
			p.Images = append(p.Images, domain.Image{URL: u, AltText: p.Title})
		}

		v := domain.Variant{
			ID:               cell(row, "variant_id"),
			Title:            cell(row, "variant_title"),
			AvailableForSale: parseBool(cell(row, "available"), true),
			Price:            &price,
		}
		if v.ID == "" {
			v.ID = fmt.Sprintf("%s-%d", handle, len(p.Variants)+1)
		}
		for k := 1; k <= maxOptions; k++ {
			name := cell(row, fmt.Sprintf("option%d_name", k))
			value := cell(row, fmt.Sprintf("option%d_value", k))
			if name == "" || value == "" {
				continue
			}
			v.SelectedOptions = append(v.SelectedOptions, domain.SelectedOption{Name: name, Value: value})
			addOptionValue(p, name, value)
		}
		if v.Title == "" {
			v.Title = variantTitle(v)
		}
		p.Variants = append(p.Variants, v)
	}

	for i := range out {
		finish(&out[i].Product)
	}
	return out, nil
}

// Export escribe los productos con el formato que lee Import.
func Export(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	n := 2
	for _, r := range rows {
		p := r.Product
		variants := p.Variants
		if len(variants) == 0 {
			variants = []domain.Variant{{ID: p.FirstVariantID, AvailableForSale: true}}
		}
		for vi, v := range variants {
			price := p.PriceRange.MinVariantPrice
			if v.Price != nil {
				price = *v.Price
			}
			vals := map[string]any{
				"handle":        p.Handle,
				"title":         p.Title,
				"product_id":    p.ID,
				"variant_id":    v.ID,
				"variant_title": v.Title,
				"price":         price.Amount.StringFixed(2),
				"currency":      price.CurrencyCode,
				"available":     strconv.FormatBool(v.AvailableForSale),
			}
			for k, so := range v.SelectedOptions {
				if k >= maxOptions {
					break
				}
				vals[fmt.Sprintf("option%d_name", k+1)] = so.Name
				vals[fmt.Sprintf("option%d_value", k+1)] = so.Value
			}
			if vi == 0 {
				if img, ok := p.FeaturedImage(); ok {
					vals["image_url"] = img.URL
				}
				vals["description_html"] = p.DescriptionHTML
				if r.Featured > 0 {
					vals["featured"] = r.Featured
				}
			}
			cells := make([]any, len(Columns))
			for i, c := range Columns {
				if v, ok := vals[c]; ok {
					cells[i] = v
				} else {
					cells[i] = ""
				}
			}
			axis, _ := excelize.CoordinatesToCellName(1, n)
			if err := sw.SetRow(axis, cells); err != nil {
				return err
			}
			n++
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func parsePrice(s, currency string) (domain.Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return domain.Money{}, fmt.Errorf("price required: %w", domain.ErrInvalidInput)
	}
	m, err := domain.NewMoney(s, currency)
	if err != nil {
		return domain.Money{}, err
	}
	if m.Amount.IsNegative() {
		return domain.Money{}, fmt.Errorf("negative price %s: %w", s, domain.ErrInvalidInput)
	}
	return m, nil
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(s) {
	case "":
		return def
	case "1", "true", "yes", "y", "si", "ja":
		return true
	default:
		return false
	}
}

func hasImage(p domain.Product, url string) bool {
	for _, im := range p.Images {
		if im.URL == url {
			return true
		}
	}
	return false
}

func addOptionValue(p *domain.Product, name, value string) {
	for i := range p.Options {
		if strings.EqualFold(p.Options[i].Name, name) {
			for _, v := range p.Options[i].Values {
				if v == value {
					return
				}
			}
			p.Options[i].Values = append(p.Options[i].Values, value)
			return
		}
	}
	p.Options = append(p.Options, domain.ProductOption{Name: name, Values: []string{value}})
}

func variantTitle(v domain.Variant) string {
	if len(v.SelectedOptions) == 0 {
		return "Default"
	}
	parts := make([]string, len(v.SelectedOptions))
	for i, so := range v.SelectedOptions {
		parts[i] = so.Value
	}
	return strings.Join(parts, " / ")
}

// finish calcula el rango de precios y la primera variante.
func finish(p *domain.Product) {
	if len(p.Variants) == 0 {
		return
	}
	p.FirstVariantID = p.Variants[0].ID
	lo, hi := *p.Variants[0].Price, *p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price.Amount.LessThan(lo.Amount) {
			lo = *v.Price
		}
		if v.Price.Amount.GreaterThan(hi.Amount) {
			hi = *v.Price
		}
	}
	p.PriceRange = domain.PriceRange{MinVariantPrice: lo, MaxVariantPrice: hi}
}

package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/variant"
)

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	list, err := s.catalog.List(r.Context(), domain.ProductFilter{
		Query:    q.Get("q"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]productView, 0, len(list))
	for _, p := range list {
		out = append(out, productViewOf(p, s.classifier, nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

// apiProduct returns the product and, when the query string carries option
// choices (?Size=M&Color=Black), the variant they resolve to.
func (s *Server) apiProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.ByHandle(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productViewOf(*p, s.classifier, selectionFrom(r.URL.Query(), *p)))
}

// selectionFrom keeps the query values whose keys name one of the product's
// option groups.
func selectionFrom(values map[string][]string, p domain.Product) variant.Selection {
	sel := variant.Selection{}
	for _, o := range p.Options {
		for k, vs := range values {
			if len(vs) > 0 && vs[0] != "" && strings.EqualFold(k, o.Name) {
				sel[o.Name] = vs[0]
			}
		}
	}
	return sel
}

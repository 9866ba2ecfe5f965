package usecase

import (
	"context"

	"github.com/phenrril/storefront/internal/domain"
)

type fakeCatalog struct {
	products map[string]domain.Product
	lastList domain.ProductFilter
}

func (f *fakeCatalog) List(_ context.Context, fl domain.ProductFilter) ([]domain.Product, error) {
	f.lastList = fl
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) ByHandle(_ context.Context, handle string) (*domain.Product, error) {
	p, ok := f.products[handle]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type fakeAccounts struct {
	domain.Accounts
	registered []domain.Registration
	logins     []domain.Credentials
	created    []domain.Address
}

func (f *fakeAccounts) Login(_ context.Context, c domain.Credentials) (*domain.AccessToken, error) {
	f.logins = append(f.logins, c)
	return &domain.AccessToken{Token: "tok"}, nil
}

func (f *fakeAccounts) Register(_ context.Context, r domain.Registration) (*domain.Customer, error) {
	f.registered = append(f.registered, r)
	return &domain.Customer{ID: "c1", Email: r.Email}, nil
}

func (f *fakeAccounts) CreateAddress(_ context.Context, _ string, a domain.Address) (*domain.Address, error) {
	f.created = append(f.created, a)
	a.ID = "a1"
	return &a, nil
}

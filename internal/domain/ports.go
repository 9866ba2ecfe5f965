package domain

import "context"

type Catalog interface {
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	ByHandle(ctx context.Context, handle string) (*Product, error)
}

type Accounts interface {
	Login(ctx context.Context, c Credentials) (*AccessToken, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, r Registration) (*Customer, error)
	Customer(ctx context.Context, token string) (*Customer, error)
	Orders(ctx context.Context, token string) ([]Order, error)
	Addresses(ctx context.Context, token string) ([]Address, error)
	CreateAddress(ctx context.Context, token string, a Address) (*Address, error)
	DeleteAddress(ctx context.Context, token string, id string) error
}

// CheckoutLine is one {merchandiseId, quantity} pair sent to the checkout service.
type CheckoutLine struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

type CheckoutService interface {
	CreateCheckout(ctx context.Context, lines []CheckoutLine) (string, error)
}

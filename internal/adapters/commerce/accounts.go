package commerce

import (
	"context"
	"net/url"

	"github.com/phenrril/storefront/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type customerEnvelope struct {
	Customer *domain.Customer `json:"customer"`
}

type ordersEnvelope struct {
	Orders []domain.Order `json:"orders"`
}

type addressesEnvelope struct {
	Addresses []domain.Address `json:"addresses"`
}

type addressEnvelope struct {
	Address *domain.Address `json:"address"`
}

func (c *Client) Login(ctx context.Context, cr domain.Credentials) (*domain.AccessToken, error) {
	var out domain.AccessToken
	if err := c.do(ctx, "POST", "/customers/access-tokens", nil, "", loginRequest{Email: cr.Email, Password: cr.Password}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, domain.ErrUnauthorized
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	err := c.do(ctx, "DELETE", "/customers/access-tokens/"+url.PathEscape(token), nil, token, nil, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) Register(ctx context.Context, r domain.Registration) (*domain.Customer, error) {
	var out customerEnvelope
	in := registerRequest{Email: r.Email, Password: r.Password, FirstName: r.FirstName, LastName: r.LastName}
	if err := c.do(ctx, "POST", "/customers", nil, "", in, &out); err != nil {
		return nil, err
	}
	if out.Customer == nil {
		return nil, domain.ErrNotFound
	}
	return out.Customer, nil
}

func (c *Client) Customer(ctx context.Context, token string) (*domain.Customer, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	var out customerEnvelope
	if err := c.do(ctx, "GET", "/customers/me", nil, token, nil, &out); err != nil {
		return nil, err
	}
	if out.Customer == nil {
		return nil, domain.ErrNotFound
	}
	return out.Customer, nil
}

func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	var out ordersEnvelope
	if err := c.do(ctx, "GET", "/customers/me/orders", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) Addresses(ctx context.Context, token string) ([]domain.Address, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	var out addressesEnvelope
	if err := c.do(ctx, "GET", "/customers/me/addresses", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, token string, a domain.Address) (*domain.Address, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	var out addressEnvelope
	if err := c.do(ctx, "POST", "/customers/me/addresses", nil, token, a, &out); err != nil {
		return nil, err
	}
	if out.Address == nil {
		return nil, domain.ErrNotFound
	}
	return out.Address, nil
}

func (c *Client) DeleteAddress(ctx context.Context, token string, id string) error {
	if token == "" {
		return domain.ErrUnauthorized
	}
	return c.do(ctx, "DELETE", "/customers/me/addresses/"+url.PathEscape(id), nil, token, nil, nil)
}

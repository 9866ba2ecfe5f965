package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phenrril/storefront/internal/domain"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
}

type AddressInput struct {
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
	Address1  string `json:"address1" validate:"required,max=200"`
	Address2  string `json:"address2" validate:"omitempty,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	Province  string `json:"province" validate:"omitempty,max=100"`
	Zip       string `json:"zip" validate:"required,max=20"`
	Country   string `json:"country" validate:"required,iso3166_1_alpha2"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

// NewValidator reports field names by their json tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type AccountUC struct {
	Accounts domain.Accounts
	Validate *validator.Validate
}

func NewAccountUC(a domain.Accounts) *AccountUC {
	return &AccountUC{Accounts: a, Validate: NewValidator()}
}

// check wraps validation failures in ErrInvalidInput, naming the failing fields.
func (uc *AccountUC) check(in any) error {
	err := uc.Validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func (uc *AccountUC) Login(ctx context.Context, in LoginInput) (*domain.AccessToken, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := uc.check(in); err != nil {
		return nil, err
	}
	return uc.Accounts.Login(ctx, domain.Credentials{Email: in.Email, Password: in.Password})
}

// Register creates the customer and signs them in.
func (uc *AccountUC) Register(ctx context.Context, in RegisterInput) (*domain.Customer, *domain.AccessToken, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := uc.check(in); err != nil {
		return nil, nil, err
	}
	c, err := uc.Accounts.Register(ctx, domain.Registration{
		Email: in.Email, Password: in.Password, FirstName: in.FirstName, LastName: in.LastName,
	})
	if err != nil {
		return nil, nil, err
	}
	tok, err := uc.Accounts.Login(ctx, domain.Credentials{Email: in.Email, Password: in.Password})
	if err != nil {
		return c, nil, err
	}
	return c, tok, nil
}

func (uc *AccountUC) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return uc.Accounts.Logout(ctx, token)
}

func (uc *AccountUC) Customer(ctx context.Context, token string) (*domain.Customer, error) {
	return uc.Accounts.Customer(ctx, token)
}

func (uc *AccountUC) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	return uc.Accounts.Orders(ctx, token)
}

func (uc *AccountUC) Addresses(ctx context.Context, token string) ([]domain.Address, error) {
	return uc.Accounts.Addresses(ctx, token)
}

func (uc *AccountUC) CreateAddress(ctx context.Context, token string, in AddressInput) (*domain.Address, error) {
	in.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	if err := uc.check(in); err != nil {
		return nil, err
	}
	return uc.Accounts.CreateAddress(ctx, token, domain.Address{
		FirstName: in.FirstName, LastName: in.LastName,
		Address1: in.Address1, Address2: in.Address2,
		City: in.City, Province: in.Province, Zip: in.Zip,
		Country: in.Country, Phone: in.Phone,
	})
}

func (uc *AccountUC) DeleteAddress(ctx context.Context, token, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("empty address id: %w", domain.ErrInvalidInput)
	}
	return uc.Accounts.DeleteAddress(ctx, token, id)
}

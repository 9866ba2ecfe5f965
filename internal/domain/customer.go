package domain

import "time"

// Customer, Address and Order mirror the records the commerce backend returns
// for an authenticated shopper.
type Customer struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName,omitempty"`
	LastName       string   `json:"lastName,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	DefaultAddress *Address `json:"defaultAddress,omitempty"`
}

type Address struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

type Order struct {
	ID                string      `json:"id"`
	Number            int         `json:"orderNumber"`
	ProcessedAt       time.Time   `json:"processedAt"`
	FinancialStatus   string      `json:"financialStatus,omitempty"`
	FulfillmentStatus string      `json:"fulfillmentStatus,omitempty"`
	Total             Money       `json:"totalPrice"`
	Lines             []OrderLine `json:"lineItems,omitempty"`
}

type OrderLine struct {
	Title        string `json:"title"`
	VariantTitle string `json:"variantTitle,omitempty"`
	Quantity     int    `json:"quantity"`
}

// AccessToken is the customer session issued by the commerce backend.
type AccessToken struct {
	Token     string    `json:"accessToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Credentials struct {
	Email    string
	Password string
}

type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

package domain

import "time"

type Product struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Price           float64   `json:"converted_price"`
	SalePrice       *float64  `json:"converted_sale_price"`
	CurrencySymbol  string    `json:"currency_symbol"`
	ImageURL        string    `json:"image_url,omitempty"`
	CategoryID      *int64    `json:"category_id,omitempty"`
	HealthBenefitID *int64    `json:"health_benefit_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type HealthBenefit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

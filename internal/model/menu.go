package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem represents a dish or drink on the restaurant menu.
type MenuItem struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Category  string          `json:"category" db:"category"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Available bool            `json:"available" db:"available"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

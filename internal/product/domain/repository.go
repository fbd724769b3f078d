package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ListFilter narrows and orders the product listing. Ordering values are
// validated by the service before they reach the repository.
type ListFilter struct {
	Price    *decimal.Decimal
	Search   string
	Ordering string
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Listing, error)
	GetListing(ctx context.Context, id snowflake.ID) (*Listing, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Product, error)
	Exists(ctx context.Context, id snowflake.ID) (bool, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id snowflake.ID) error
}

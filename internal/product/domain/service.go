package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Price    string
	Search   string
	Ordering string
}

type CreateRequest struct {
	Name       string
	Price      *decimal.Decimal
	AuthorName *string
}

// UpdateRequest carries a full or partial product mutation. Nil fields are
// left unchanged on partial updates; Partial distinguishes PATCH from PUT.
// AuthorSet marks an author_name that was present in the request body, so an
// explicit null can clear the author on a partial update.
type UpdateRequest struct {
	ID         string
	Name       *string
	Price      *decimal.Decimal
	AuthorName *string
	AuthorSet  bool
	Partial    bool
}

type Response struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          string  `json:"price"`
	AuthorName     *string `json:"author_name"`
	AnnotatedLikes int64   `json:"annotated_likes"`
	Rating         *string `json:"rating"`
}

var (
	ErrNotFound        = errors.New("not_found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidOrdering = errors.New("invalid_ordering")
)

package domain

import (
	"context"
	"errors"
)

type Service interface {
	Patch(ctx context.Context, productID string, req PatchRequest) (*Response, error)
	Get(ctx context.Context, productID string) (*Response, error)
}

// PatchRequest is a partial relation mutation. Nil fields are left unchanged.
// RateSet distinguishes an explicit null rate from an absent one so a rating
// can be withdrawn.
type PatchRequest struct {
	Like        *bool
	InBookmarks *bool
	Rate        *int16
	RateSet     bool
}

type Response struct {
	ProductID   string `json:"product_id"`
	Like        bool   `json:"like"`
	InBookmarks bool   `json:"in_bookmarks"`
	Rate        *int16 `json:"rate"`
}

var ErrInvalidRate = errors.New("invalid_rate")

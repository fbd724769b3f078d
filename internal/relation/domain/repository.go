package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// GetOrCreate returns the relation for (userID, productID), inserting a
	// default row first when none exists. Concurrent first calls converge on
	// the single row the unique index lets through.
	GetOrCreate(ctx context.Context, userID, productID snowflake.ID, newID func() snowflake.ID) (*Relation, error)
	FindByUserAndProduct(ctx context.Context, userID, productID snowflake.ID) (*Relation, error)
	Update(ctx context.Context, relation *Relation) error
}

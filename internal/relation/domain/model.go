package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Relation records one user's interaction with one product. At most one row
// exists per (user, product) pair; the table enforces that with a unique index.
type Relation struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	UserID      snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:idx_user_product"`
	ProductID   snowflake.ID `gorm:"column:product_id;not null;uniqueIndex:idx_user_product"`
	Liked       bool         `gorm:"column:liked;not null;default:false"`
	InBookmarks bool         `gorm:"column:in_bookmarks;not null;default:false"`
	Rate        *int16       `gorm:"column:rate"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Relation) TableName() string { return "user_product_relations" }

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is the stored catalog entity. Owner is assigned from the creating
// identity and survives as NULL when that identity is deleted.
type Product struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	Name       string          `gorm:"type:text;not null"`
	Price      decimal.Decimal `gorm:"type:numeric(7,2);not null"`
	AuthorName *string         `gorm:"column:author_name;type:text"`
	OwnerID    *snowflake.ID   `gorm:"column:owner_id;index"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// Listing is a product row decorated with relation aggregates. AnnotatedLikes
// counts relations with like set; Rating is the average of recorded rates and
// is invalid when no relation carries a rate.
type Listing struct {
	ID             snowflake.ID        `gorm:"column:id"`
	Name           string              `gorm:"column:name"`
	Price          decimal.Decimal     `gorm:"column:price"`
	AuthorName     *string             `gorm:"column:author_name"`
	OwnerID        *snowflake.ID       `gorm:"column:owner_id"`
	AnnotatedLikes int64               `gorm:"column:annotated_likes"`
	Rating         decimal.NullDecimal `gorm:"column:rating"`
}

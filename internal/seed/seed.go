package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/internal/auth/password"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	relationdomain "github.com/smallbiznis/storefront/internal/relation/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@storefront.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Storefront Admin"
)

// AutoMigrate creates the schema for dialects not covered by the SQL
// migrations.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&productdomain.Product{},
		&relationdomain.Relation{},
	)
}

// EnsureAdmin seeds a staff account on an empty install so the instance is
// manageable out of the box. Existing installs are left untouched.
func EnsureAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		admin := &authdomain.User{
			ID:           node.Generate(),
			Email:        defaultAdminEmail,
			DisplayName:  defaultAdminDisplay,
			PasswordHash: &hash,
			IsStaff:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(admin).Error
	})
}

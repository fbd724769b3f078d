package migration

import (
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The SQL migrations target postgres. Other dialects, used for
		// local hacking and tests, get their schema from AutoMigrate.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := seed.AutoMigrate(conn); err != nil {
			return err
		}

		if cfg.BootstrapAdmin {
			return seed.EnsureAdmin(conn)
		}
		return nil
	}),
)

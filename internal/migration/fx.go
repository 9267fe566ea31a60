package migration

import (
	"github.com/evoleadai/evolead/internal/config"
	"github.com/evoleadai/evolead/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := autoMigrate(conn); err != nil {
			// sqlite and mysql development setups take the gorm schema path.
			return err
		}

		if cfg.DefaultOrgID != 0 {
			return seed.EnsureDefaultOrgWithID(conn, cfg.DefaultOrgID)
		}
		return seed.EnsureDefaultOrg(conn)
	}),
)

package migration

import (
	authdomain "github.com/inqira/inqira/internal/auth/domain"
	"github.com/inqira/inqira/internal/config"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
	questionnairedomain "github.com/inqira/inqira/internal/questionnaire/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// The versioned SQL migrations target postgres; other dialects
			// (sqlite for local development) derive the schema from the models.
			return conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&projectdomain.Project{},
				&projectdomain.Membership{},
				&questionnairedomain.Questionnaire{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)

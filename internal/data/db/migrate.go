package db

import (
	"fmt"

	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"gorm.io/gorm"
)

// AutoMigrateAll migrates the risk tables. includeSource also migrates the LMS tables the
// aggregator reads, for local development against an empty database.
func AutoMigrateAll(db *gorm.DB, includeSource bool) error {
	models := types.RiskModels()
	if includeSource {
		models = types.AllModels()
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

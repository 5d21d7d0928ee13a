package database

import (
	"fmt"

	"getactive-client/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.StoredToken{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

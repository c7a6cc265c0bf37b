package database

import (
	"errors"
	"time"

	"github.com/mixtapelabs/mixtape/backend/internal/playlists"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationNormalizeActivityActions = "2026-07-14_normalize_activity_actions"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationNormalizeActivityActions, apply: normalizeActivityActions},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Databases imported from the legacy service recorded removals as 'delete'.
func normalizeActivityActions(db *gorm.DB) error {
	return db.Model(&playlists.Activity{}).
		Where("action = ?", "delete").
		Update("action", string(playlists.ActivityActionRemove)).Error
}

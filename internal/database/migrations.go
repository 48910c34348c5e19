package database

import (
	"errors"
	"time"

	"github.com/mymovieslab/mymovies/internal/movies"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationResetUnseenRatings = "2026-08-10_reset_unseen_ratings"

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
		{name: migrationResetUnseenRatings, apply: resetUnseenRatings},
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

// resetUnseenRatings repairs rows written before the seen/rating coupling was
// enforced on every field-level update: an unseen movie must carry rating 0.
func resetUnseenRatings(db *gorm.DB) error {
	return db.Model(&movies.Movie{}).
		Where("seen = ? AND rating <> 0", false).
		Update("rating", 0).Error
}

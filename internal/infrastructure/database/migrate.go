package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/creditx/creditx-server/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for applications, chat turns and profiles.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Application{},
		&entities.ConversationTurn{},
		&entities.FinancialProfile{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}

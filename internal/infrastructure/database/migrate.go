package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"policylens/services/chat-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the conversation domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Conversation{},
		&entities.Message{},
		&entities.IngestTask{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}

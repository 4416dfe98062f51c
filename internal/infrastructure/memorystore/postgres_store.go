package memorystore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/creditx/creditx-server/internal/domain/conversation"
	"github.com/creditx/creditx-server/internal/infrastructure/database/entities"
)

// PostgresStore appends one row per turn; the auto-increment id orders the log.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore constructs the store.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load returns the request's turns in append order.
func (s *PostgresStore) Load(ctx context.Context, requestID string) ([]conversation.Turn, error) {
	var rows []entities.ConversationTurn
	if err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load conversation turns: %w", err)
	}

	turns := make([]conversation.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, conversation.Turn{
			UserQuery:  row.UserQuery,
			AIResponse: row.AIResponse,
			CreatedAt:  row.CreatedAt,
		})
	}
	return turns, nil
}

// Append inserts the turn as a new row.
func (s *PostgresStore) Append(ctx context.Context, requestID string, turn conversation.Turn) error {
	row := entities.ConversationTurn{
		RequestID:  requestID,
		UserQuery:  turn.UserQuery,
		AIResponse: turn.AIResponse,
		CreatedAt:  turn.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append conversation turn: %w", err)
	}
	return nil
}

var _ conversation.Store = (*PostgresStore)(nil)

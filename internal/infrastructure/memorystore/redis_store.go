package memorystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/creditx/creditx-server/internal/domain/conversation"
)

// RedisStore keeps each log as a redis list; RPUSH makes every append atomic.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs the store. Keys are prefix+requestID.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Load returns the request's turns in append order.
func (s *RedisStore) Load(ctx context.Context, requestID string) ([]conversation.Turn, error) {
	values, err := s.client.LRange(ctx, s.prefix+requestID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load conversation turns: %w", err)
	}

	turns := make([]conversation.Turn, 0, len(values))
	for i, v := range values {
		var turn conversation.Turn
		if err := json.Unmarshal([]byte(v), &turn); err != nil {
			return nil, fmt.Errorf("decode conversation turn %d: %w", i, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append pushes the encoded turn onto the end of the list.
func (s *RedisStore) Append(ctx context.Context, requestID string, turn conversation.Turn) error {
	body, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode conversation turn: %w", err)
	}
	if err := s.client.RPush(ctx, s.prefix+requestID, body).Err(); err != nil {
		return fmt.Errorf("append conversation turn: %w", err)
	}
	return nil
}

var _ conversation.Store = (*RedisStore)(nil)

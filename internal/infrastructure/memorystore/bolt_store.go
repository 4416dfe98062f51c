package memorystore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/creditx/creditx-server/internal/domain/conversation"
)

var conversationsBucket = []byte("conversations")

// BoltStore keeps every log in one embedded database file.
// Each request gets a nested bucket keyed by a big-endian sequence number,
// and each append is its own write transaction.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(conversationsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load returns the request's turns in append order.
func (s *BoltStore) Load(ctx context.Context, requestID string) ([]conversation.Turn, error) {
	turns := []conversation.Turn{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(conversationsBucket).Bucket([]byte(requestID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var turn conversation.Turn
			if err := json.Unmarshal(v, &turn); err != nil {
				return fmt.Errorf("decode conversation turn %d: %w", binary.BigEndian.Uint64(k), err)
			}
			turns = append(turns, turn)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load conversation turns: %w", err)
	}
	return turns, nil
}

// Append writes the turn under the bucket's next sequence number.
func (s *BoltStore) Append(ctx context.Context, requestID string, turn conversation.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode conversation turn: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(conversationsBucket).CreateBucketIfNotExists([]byte(requestID))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, body)
	})
}

var _ conversation.Store = (*BoltStore)(nil)

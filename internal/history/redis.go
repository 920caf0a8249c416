package history

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps one hash per set.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisStore creates a RedisStore. Keys are "<prefix>:history:<set>".
func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "qadigest"
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger.Named("history.redis")}
}

// Key returns the hash key for set.
func (s *RedisStore) Key(set string) string {
	return s.prefix + ":history:" + set
}

func (s *RedisStore) Load(ctx context.Context, set string) History {
	log := s.logger.With(zap.String("set", set))
	rec, err := s.client.HGetAll(ctx, s.Key(set)).Result()
	if err != nil {
		log.Warn("history unreadable, starting empty", zap.Error(err))
		return History{}
	}
	if len(rec) == 0 {
		log.Info("no history yet, starting empty")
	}

	h, skipped := Record(rec).Decode()
	if len(skipped) > 0 {
		log.Warn("skipping history entries with bad timestamps", zap.Strings("ids", skipped))
	}
	return h
}

// Commit re-reads the hash and writes the merged record in a single HSET,
// which Redis applies atomically.
func (s *RedisStore) Commit(ctx context.Context, set string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	key := s.Key(set)

	rec, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("re-read history: %w", err)
	}
	merged := Record(rec).With(ids, at)

	values := make([]any, 0, 2*len(merged))
	for _, id := range merged.Keys() {
		values = append(values, id, merged[id])
	}
	if err := s.client.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Sets scans for history hashes under the store's prefix.
func (s *RedisStore) Sets(ctx context.Context) ([]string, error) {
	prefix := s.Key("")
	var sets []string
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan history keys: %w", err)
		}
		for _, k := range keys {
			sets = append(sets, strings.TrimPrefix(k, prefix))
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	// SCAN may return a key more than once.
	slices.Sort(sets)
	return slices.Compact(sets), nil
}

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	errx "github.com/mobiusvibe/assistant/internal/core/error"
	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

// Fact is one durable memory entry.
type Fact struct {
	Key            string
	Category       string
	Value          string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// RedisLongTerm stores facts as hashes under memory:long:<key> with a sorted
// set index on last access time, so pruning can drop stale entries in one
// range scan.
type RedisLongTerm struct {
	rdb redis.Cmdable
	log zerolog.Logger
}

const accessIndexKey = "memory:long:index"

func NewRedisLongTerm(rdb redis.Cmdable) *RedisLongTerm {
	return &RedisLongTerm{rdb: rdb, log: logx.Component("memory")}
}

func factKey(key string) string {
	return fmt.Sprintf("memory:long:%s", key)
}

// Save upserts a fact and refreshes its position in the access index.
func (r *RedisLongTerm) Save(ctx context.Context, key, category, value string) error {
	now := time.Now().UTC()
	fields := map[string]any{
		"category":         category,
		"value":            value,
		"last_accessed_at": now.Format(time.RFC3339),
	}
	rk := factKey(key)

	exists, err := r.rdb.Exists(ctx, rk).Result()
	if err != nil {
		r.log.Error().Err(err).Str("key", rk).Msg("failed to check fact existence")
		return errx.WrapRedis(err)
	}
	if exists == 0 {
		fields["created_at"] = now.Format(time.RFC3339)
	}

	if err := r.rdb.HSet(ctx, rk, fields).Err(); err != nil {
		r.log.Error().Err(err).Str("key", rk).Msg("failed to save fact")
		return errx.WrapRedis(err)
	}
	if err := r.rdb.ZAdd(ctx, accessIndexKey, redis.Z{Score: float64(now.Unix()), Member: key}).Err(); err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("failed to index fact")
		return errx.WrapRedis(err)
	}
	return nil
}

// Get loads a fact and touches its access time. A missing fact comes back as
// a 404-status error from WrapRedis.
func (r *RedisLongTerm) Get(ctx context.Context, key string) (*Fact, error) {
	rk := factKey(key)

	fields, err := r.rdb.HGetAll(ctx, rk).Result()
	if err != nil {
		r.log.Error().Err(err).Str("key", rk).Msg("failed to load fact")
		return nil, errx.WrapRedis(err)
	}
	if len(fields) == 0 {
		return nil, errx.WrapRedis(redis.Nil)
	}

	now := time.Now().UTC()
	if err := r.rdb.HSet(ctx, rk, "last_accessed_at", now.Format(time.RFC3339)).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", rk).Msg("failed to touch fact access time")
	}
	if err := r.rdb.ZAdd(ctx, accessIndexKey, redis.Z{Score: float64(now.Unix()), Member: key}).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("failed to reindex fact")
	}

	fact := &Fact{
		Key:            key,
		Category:       fields["category"],
		Value:          fields["value"],
		LastAccessedAt: now,
	}
	if t, err := time.Parse(time.RFC3339, fields["created_at"]); err == nil {
		fact.CreatedAt = t
	}
	return fact, nil
}

// Prune deletes every fact not accessed since the cutoff and returns how
// many were removed.
func (r *RedisLongTerm) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	max := fmt.Sprintf("%d", cutoff.Unix())
	stale, err := r.rdb.ZRangeByScore(ctx, accessIndexKey, &redis.ZRangeBy{Min: "-inf", Max: max}).Result()
	if err != nil {
		r.log.Error().Err(err).Msg("failed to scan stale facts")
		return 0, errx.WrapRedis(err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(stale))
	members := make([]any, 0, len(stale))
	for _, k := range stale {
		keys = append(keys, factKey(k))
		members = append(members, k)
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.Error().Err(err).Int("count", len(keys)).Msg("failed to delete stale facts")
		return 0, errx.WrapRedis(err)
	}
	if err := r.rdb.ZRem(ctx, accessIndexKey, members...).Err(); err != nil {
		r.log.Error().Err(err).Msg("failed to deindex stale facts")
		return 0, errx.WrapRedis(err)
	}

	r.log.Info().Int("pruned", len(stale)).Time("cutoff", cutoff).Msg("pruned long-term memory")
	return len(stale), nil
}

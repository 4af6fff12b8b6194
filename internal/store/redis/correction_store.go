package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"billvox/internal/config"
	"billvox/internal/domain"
	"billvox/internal/port"
)

const correctionCap = 100

type correctionStore struct {
	rdb *redis.Client
}

// NewCorrectionStore connects to Redis and returns a CorrectionStore backed by
// one list per business, newest first, trimmed to the 100 most-recent entries.
func NewCorrectionStore(cfg *config.RedisConfig) (port.CorrectionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &correctionStore{rdb: rdb}, nil
}

func key(businessID uuid.UUID) string {
	return "corrections:" + businessID.String()
}

func (s *correctionStore) List(ctx context.Context, businessID uuid.UUID) ([]domain.MatchCorrection, error) {
	raw, err := s.rdb.LRange(ctx, key(businessID), 0, correctionCap-1).Result()
	if err != nil {
		return nil, fmt.Errorf("correctionStore.List: %w", err)
	}

	// Stored newest first; return oldest first so callers see append order.
	out := make([]domain.MatchCorrection, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var c domain.MatchCorrection
		if err := json.Unmarshal([]byte(raw[i]), &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *correctionStore) Append(ctx context.Context, businessID uuid.UUID, correction domain.MatchCorrection) error {
	data, err := json.Marshal(correction)
	if err != nil {
		return fmt.Errorf("correctionStore.Append: marshal: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key(businessID), data)
	pipe.LTrim(ctx, key(businessID), 0, correctionCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("correctionStore.Append: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/class-subjects/internal/config"
	"github.com/stemsi/class-subjects/internal/model"
)

// RedisSubjectsRepository stores each record as a JSON element of a Redis list.
type RedisSubjectsRepository struct {
	rdb *redis.Client
	key string
}

func NewRedisSubjectsRepository(rdb *redis.Client, prefix string) *RedisSubjectsRepository {
	return &RedisSubjectsRepository{
		rdb: rdb,
		key: config.CacheKey.SubjectsListKey(prefix),
	}
}

func (r *RedisSubjectsRepository) Append(ctx context.Context, rec model.SubjectsRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisSubjectsRepository) List(ctx context.Context) ([]model.SubjectsRecord, error) {
	items, err := r.rdb.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", r.key, err)
	}

	records := make([]model.SubjectsRecord, 0, len(items))
	for _, item := range items {
		var rec model.SubjectsRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

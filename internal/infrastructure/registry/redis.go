package registry

import (
	"context"
	"strconv"

	"flipledger/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the used set when no key is configured.
const DefaultRedisKey = "flipledger:skus"

// Redis keeps the used set in a Redis set so several front ends can share one registry.
type Redis struct {
	Rdb *redis.Client
	Key string
}

func (r *Redis) key() string {
	if r.Key == "" {
		return DefaultRedisKey
	}
	return r.Key
}

func (r *Redis) Used(ctx context.Context) (map[int]struct{}, error) {
	members, err := r.Rdb.SMembers(ctx, r.key()).Result()
	if err != nil {
		return nil, &domain.StoreIOError{Op: "smembers", Path: r.key(), Err: err}
	}
	used := make(map[int]struct{}, len(members))
	for _, m := range members {
		sku, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		used[sku] = struct{}{}
	}
	return used, nil
}

func (r *Redis) Contains(ctx context.Context, sku int) (bool, error) {
	ok, err := r.Rdb.SIsMember(ctx, r.key(), strconv.Itoa(sku)).Result()
	if err != nil {
		return false, &domain.StoreIOError{Op: "sismember", Path: r.key(), Err: err}
	}
	return ok, nil
}

func (r *Redis) Add(ctx context.Context, sku int) error {
	_, err := r.Claim(ctx, sku)
	return err
}

// Claim relies on SADD reporting how many members it added, so concurrent
// front ends cannot both win the same sku.
func (r *Redis) Claim(ctx context.Context, sku int) (bool, error) {
	added, err := r.Rdb.SAdd(ctx, r.key(), strconv.Itoa(sku)).Result()
	if err != nil {
		return false, &domain.StoreIOError{Op: "sadd", Path: r.key(), Err: err}
	}
	return added == 1, nil
}

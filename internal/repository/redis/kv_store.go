package redis

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// KVStore хранит состояние витрины в Redis. Ключи без TTL.
type KVStore struct {
	client *clients.RedisClient
	prefix string
}

func NewKVStore(client *clients.RedisClient, prefix string) *KVStore {
	return &KVStore{
		client: client,
		prefix: prefix,
	}
}

// Get возвращает значение ключа, false при промахе.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, r.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrStoreUnavailable, err))
	}

	return val, true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrStoreUnavailable, err))
	}

	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Client.Del(ctx, s.key(key)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrStoreUnavailable, err))
	}

	return nil
}

// key возвращает Redis-ключ с префиксом
func (s *KVStore) key(key string) string {
	return s.prefix + key
}

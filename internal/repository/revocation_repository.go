package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bashare-server/config"
	"bashare-server/internal/util"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable : Redis недоступен, запрос завершается с 503
var ErrStoreUnavailable = errors.New("хранилище токенов недоступно")

const revocationCallTimeout = 3 * time.Second

// RevocationRepository хранит действующие refresh токены:
// ключ — строка refresh токена, значение — id владельца,
// TTL — время жизни refresh токена. Ключ не удаляется при ротации,
// старый токен доживает до истечения TTL
type RevocationRepository struct {
	client *config.RedisClient
}

func NewRevocationRepository(rdb *config.RedisClient) *RevocationRepository {
	return &RevocationRepository{rdb}
}

func (r *RevocationRepository) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, revocationCallTimeout)
	defer cancel()

	val, err := r.client.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil // ключа нет
	} else if err != nil {
		util.LogError("ошибка чтения из Redis", err)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return val, nil
}

func (r *RevocationRepository) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, revocationCallTimeout)
	defer cancel()

	cmd := r.client.Client.Set(ctx, key, value, ttl)
	if err := cmd.Err(); err != nil {
		util.LogError("ошибка сохранения в Redis", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *RevocationRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, revocationCallTimeout)
	defer cancel()

	if err := r.client.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

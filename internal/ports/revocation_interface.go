package ports

import (
	"context"
	"time"
)

// RevocationStore : Redis слой учёта действующих refresh токенов.
// Ключ — сама строка refresh токена, значение — id владельца,
// TTL — время жизни refresh токена
type RevocationStore interface {
	// Get возвращает ("", nil), если ключа нет
	Get(ctx context.Context, key string) (string, error)
	// Set с ttl == 0 пишет ключ без срока жизни
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

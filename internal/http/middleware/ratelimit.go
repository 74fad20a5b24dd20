package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
)

// RateLimiter true, если ключ превысил лимит
type RateLimiter interface {
	Limit(ctx context.Context, key string) (bool, error)
}

// MemoryRateLimiter скользящее окно в памяти процесса
type MemoryRateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *MemoryRateLimiter) Limit(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// очищаем старые попытки
	var valid []time.Time
	for _, t := range rl.attempts[key] {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.attempts[key] = valid
		return true, nil
	}

	rl.attempts[key] = append(valid, now)
	return false, nil
}

// RedisRateLimiter фиксированное окно на INCR + EXPIRE, общее для всех инстансов
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

func (rl *RedisRateLimiter) Limit(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().Unix() / int64(rl.window.Seconds())
	k := fmt.Sprintf("earnads:rl:%s:%d", key, bucket)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() > int64(rl.limit), nil
}

// RateLimit ограничивает запросы с одного ip к группе маршрутов.
// При недоступности хранилища запрос пропускается
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.FullPath()
		limited, err := limiter.Limit(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter недоступен", "error", err)
			c.Next()
			return
		}
		if limited {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
			return
		}
		c.Next()
	}
}

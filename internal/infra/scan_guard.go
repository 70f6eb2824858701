package infra

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ScanGuard rejects the same key (user + code) seen again within a window.
// It is the server-side counterpart of the scanner UI cooldown.
type ScanGuard interface {
	// Permitir returns true the first time key is seen inside window.
	Permitir(ctx context.Context, key string, window time.Duration) (bool, error)
}

const scanKeyPrefix = "scan:"

type redisScanGuard struct{ rdb *redis.Client }

// NewRedisScanGuard uses SET NX PX so the cooldown holds across API replicas.
func NewRedisScanGuard(rdb *redis.Client) ScanGuard { return &redisScanGuard{rdb: rdb} }

func (g *redisScanGuard) Permitir(ctx context.Context, key string, window time.Duration) (bool, error) {
	return g.rdb.SetNX(ctx, scanKeyPrefix+key, 1, window).Result()
}

// MemoryScanGuard is the single-process fallback used when Redis is absent.
type MemoryScanGuard struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	now   func() time.Time
	calls int
}

func NewMemoryScanGuard() *MemoryScanGuard {
	return &MemoryScanGuard{seen: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryScanGuard) Permitir(_ context.Context, key string, window time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.calls++
	if g.calls%256 == 0 {
		for k, exp := range g.seen {
			if now.After(exp) {
				delete(g.seen, k)
			}
		}
	}

	if exp, ok := g.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.seen[key] = now.Add(window)
	return true, nil
}

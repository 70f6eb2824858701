package middleware

import (
	"net/http"
	"sync"
	"time"

	"inventario3g/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// ipEntry tracks requests per IP within a fixed window.
type ipEntry struct {
	count     int
	windowEnd time.Time
}

// ventanaIP is a per-IP fixed-window counter. Expired entries are purged
// lazily every purgeInterval so IPs that never return do not accumulate.
type ventanaIP struct {
	mu        sync.Mutex
	entries   map[string]*ipEntry
	limit     int
	window    time.Duration
	lastPurge time.Time
	now       func() time.Time
}

func newVentanaIP(limit int, window time.Duration) *ventanaIP {
	return &ventanaIP{entries: make(map[string]*ipEntry), limit: limit, window: window, now: time.Now}
}

// permitir counts one request for ip and reports whether it is within the
// limit, plus the end of the current window.
func (v *ventanaIP) permitir(ip string) (bool, time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastPurge) > purgeInterval {
		v.purgar(now)
	}

	entry, ok := v.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &ipEntry{windowEnd: now.Add(v.window)}
		v.entries[ip] = entry
	}
	entry.count++
	return entry.count <= v.limit, entry.windowEnd
}

func (v *ventanaIP) purgar(now time.Time) {
	purged := 0
	for ip, entry := range v.entries {
		if now.After(entry.windowEnd) {
			delete(v.entries, ip)
			purged++
		}
	}
	v.lastPurge = now
	if purged > 0 {
		log.Debug().
			Int("entries_purged", purged).
			Int("entries_remaining", len(v.entries)).
			Msg("rate limiter purged")
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	v := newVentanaIP(20, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := v.permitir(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter returns a general-purpose per-IP limiter of limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	v := newVentanaIP(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := v.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

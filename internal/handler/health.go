package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Pinger is the connectivity check used by Health.
type Pinger func(ctx context.Context) error

// DBPinger pings the SQL pool behind db.
func DBPinger(db *gorm.DB) Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// RedisPinger pings rdb.
func RedisPinger(rdb *redis.Client) Pinger {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
func Health(db, rdb Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if db == nil || db(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb == nil || rdb(ctx) != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/kentonium3/bake-tracker-sub002/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response. Redis is optional: without
// it the status reads "disabled" and the check still passes.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus, "redis": "disabled"}
		redisOK := true
		if rdb != nil {
			if rdb.Ping(ctx).Err() != nil {
				body["redis"] = "error"
				redisOK = false
			} else {
				body["redis"] = "connected"
				if n, err := worker.DLQLength(ctx, rdb, worker.QueueStockAlert); err == nil {
					body["dead_letters"] = n
				}
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || !redisOK {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}

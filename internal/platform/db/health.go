package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the subset of pgxpool statistics reported by the health
// endpoint.
type PoolStats struct {
	Healthy      bool  `json:"healthy"`
	TotalConns   int32 `json:"total_conns"`
	IdleConns    int32 `json:"idle_conns"`
	MaxConns     int32 `json:"max_conns"`
	AcquireCount int64 `json:"acquire_count"`
}

func GetPoolStats(pool *pgxpool.Pool) PoolStats {
	s := pool.Stat()
	return PoolStats{
		Healthy:      true,
		TotalConns:   s.TotalConns(),
		IdleConns:    s.IdleConns(),
		MaxConns:     s.MaxConns(),
		AcquireCount: s.AcquireCount(),
	}
}

func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := pool.Ping(ctx)
		stats := GetPoolStats(pool)

		if err != nil {
			stats.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
				"pool":   stats,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"pool":   stats,
		})
	}
}

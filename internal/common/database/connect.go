// internal/common/database/connect.go
package database

import (
	"context"
	"fmt"
	"time"

	"planmytrip/internal/common/config"
	"planmytrip/internal/common/logger"
)

// RetryWithBackoff runs operation up to maxRetries times, doubling the
// delay after each failure. It gives up early when ctx is done.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		log.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operationName, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Connections holds the stores both binaries need. Elasticsearch is nil
// when search is disabled.
type Connections struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Elasticsearch *ElasticsearchClient
}

// Connect dials every configured store, retrying while they come up, and
// applies migrations when postgres.auto_migrate is set.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (*Connections, error) {
	conns := &Connections{}

	err := RetryWithBackoff(ctx, func() error {
		pg, err := NewPostgres(cfg.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		conns.Postgres = pg
		return nil
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected", nil)

	if cfg.Postgres.AutoMigrate {
		if err := Migrate(ctx, conns.Postgres.DB); err != nil {
			conns.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	err = RetryWithBackoff(ctx, func() error {
		rc, err := NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		if err := rc.Ping(ctx); err != nil {
			rc.Close()
			return err
		}
		conns.Redis = rc
		return nil
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		conns.Close()
		return nil, err
	}
	log.Info("Redis connected", nil)

	if cfg.Elasticsearch.Enabled {
		err = RetryWithBackoff(ctx, func() error {
			es, err := NewElasticsearch(cfg.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			conns.Elasticsearch = es
			return nil
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			conns.Close()
			return nil, err
		}
		log.Info("Elasticsearch connected", nil)
	}

	return conns, nil
}

// Checks returns a readiness check per connected store.
func (c *Connections) Checks() map[string]func(context.Context) error {
	checks := make(map[string]func(context.Context) error, 3)
	if c.Postgres != nil {
		checks["postgres"] = c.Postgres.Ping
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping
	}
	if c.Elasticsearch != nil {
		checks["elasticsearch"] = c.Elasticsearch.Ping
	}
	return checks
}

func (c *Connections) Close() {
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
}

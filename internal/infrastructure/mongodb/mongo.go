package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/stockroom/backend/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a client against the configured deployment and pings it so
// startup fails fast on a bad URI.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(cfg.Database), nil
}

// timeouts carries the per-call deadlines shared by all repositories
type timeouts struct {
	read  time.Duration
	write time.Duration
}

func newTimeouts(cfg config.MongoConfig) timeouts {
	t := timeouts{read: cfg.ReadTimeout, write: cfg.WriteTimeout}
	if t.read <= 0 {
		t.read = 5 * time.Second
	}
	if t.write <= 0 {
		t.write = 5 * time.Second
	}
	return t
}

// withTimeout wraps ctx with the given deadline unless it already carries a
// tighter one.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

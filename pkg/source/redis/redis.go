// Package redis implements a Redis pub/sub row source for feeding live
// charts from multi-producer deployments.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/httputil"
	"github.com/chartflow/chartflow/pkg/source"
)

// Config holds Redis connection settings.
type Config struct {
	// Addr is the Redis server address, e.g. "localhost:6379".
	Addr string

	// Channel is the pub/sub channel carrying JSON row payloads.
	Channel string

	// Password is optional.
	Password string

	// DB selects the logical database.
	DB int

	// ConnectTimeout defaults to 5 seconds.
	ConnectTimeout time.Duration
}

// Source subscribes to a Redis pub/sub channel and pushes each message's
// rows into the sink. Message payloads are JSON: one row object or an array
// of row objects.
type Source struct {
	client  *redis.Client
	channel string
}

// New connects to Redis and returns a pub/sub row source.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeSourceClosed, "redis address is required")
	}
	if cfg.Channel == "" {
		return nil, errors.New(errors.ErrCodeSourceClosed, "redis channel is required")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Brokers often come up after the consumer during deploys; a failed
	// ping is transient, so retry with backoff before giving up.
	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return &httputil.RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeSourceClosed, err, "ping %s", cfg.Addr)
	}

	return &Source{client: client, channel: cfg.Channel}, nil
}

// Run subscribes and forwards messages until ctx is cancelled.
func (s *Source) Run(ctx context.Context, sink source.Sink) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	// Fail fast if the subscription could not be established.
	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeSourceClosed, err, "subscribe %q", s.channel)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New(errors.ErrCodeSourceClosed, "subscription to %q closed", s.channel)
			}
			rows, err := source.DecodeRows([]byte(msg.Payload))
			if err != nil {
				return fmt.Errorf("message on %q: %w", s.channel, err)
			}
			if err := sink.Push(rows); err != nil {
				return err
			}
		}
	}
}

// Close releases the Redis connection.
func (s *Source) Close() error {
	return s.client.Close()
}

// Ensure Source implements source.Source.
var _ source.Source = (*Source)(nil)

package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"silencecut/internal/job"
)

// popTimeout bounds each blocking pop so the consumer can promote due
// retries and observe context cancellation between messages.
const popTimeout = time.Second

// RedisConsumer pulls job descriptors from a Redis list and dispatches
// them to a handler. Failed deliveries park in a sorted set keyed by
// their ready time and are promoted back onto the list when due.
type RedisConsumer struct {
	client      redis.UniversalClient
	name        string
	maxAttempts int
	handler     Handler
	logger      *slog.Logger
}

// NewRedisConsumer creates a consumer for the named queue. maxAttempts
// bounds total deliveries per message; values below 1 mean one delivery
// and no retries.
func NewRedisConsumer(client redis.UniversalClient, name string, maxAttempts int, handler Handler, logger *slog.Logger) *RedisConsumer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisConsumer{
		client:      client,
		name:        name,
		maxAttempts: maxAttempts,
		handler:     handler,
		logger:      logger,
	}
}

// retryKey is the sorted set holding parked retries, scored by the unix
// time at which each message becomes due.
func (c *RedisConsumer) retryKey() string {
	return c.name + ":retry"
}

// Enqueue pushes a fresh job descriptor onto the queue.
func Enqueue(ctx context.Context, client redis.UniversalClient, name string, d job.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	payload, err := encodeEnvelope(envelope{Descriptor: d})
	if err != nil {
		return fmt.Errorf("encode job payload: %w", err)
	}
	if err := client.LPush(ctx, name, payload).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", d.JobID, err)
	}
	return nil
}

// Run consumes messages until the context is canceled. It returns nil on
// cancellation and an error only when Redis becomes unusable.
func (c *RedisConsumer) Run(ctx context.Context) error {
	c.logger.Info("queue consumer started",
		slog.String("queue", c.name),
		slog.Int("max_attempts", c.maxAttempts),
	)

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("queue consumer stopping", slog.String("queue", c.name))
			return nil
		}

		if err := c.promoteDue(ctx); err != nil && !isShutdown(err) {
			c.logger.Warn("promoting due retries failed", slog.String("error", err.Error()))
		}

		values, err := c.client.BRPop(ctx, popTimeout, c.name).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if isShutdown(err) {
				return nil
			}
			return fmt.Errorf("pop from queue %s: %w", c.name, err)
		}

		// BRPop returns [key, value].
		if len(values) != 2 {
			continue
		}
		c.dispatch(ctx, values[1])
	}
}

// dispatch decodes and executes one message, scheduling a retry when the
// handler reports a transient failure.
func (c *RedisConsumer) dispatch(ctx context.Context, payload string) {
	env, err := decodeEnvelope([]byte(payload))
	if err != nil {
		c.logger.Error("dropping undecodable queue message",
			slog.String("queue", c.name),
			slog.String("error", err.Error()),
		)
		return
	}

	err = c.handler(ctx, env.Descriptor)
	if err == nil {
		return
	}

	if errors.Is(err, job.ErrInvalidDescriptor) {
		c.logger.Error("dropping invalid job descriptor",
			slog.String("queue", c.name),
			slog.String("error", err.Error()),
		)
		return
	}

	env.Attempts++
	if env.Attempts >= c.maxAttempts {
		c.logger.Error("giving up on job after exhausting deliveries",
			slog.String("job_id", env.JobID),
			slog.Int("attempts", env.Attempts),
			slog.String("error", err.Error()),
		)
		return
	}

	delay := Backoff(env.Attempts)
	c.logger.Warn("job execution failed, scheduling retry",
		slog.String("job_id", env.JobID),
		slog.Int("attempts", env.Attempts),
		slog.Duration("delay", delay),
		slog.String("error", err.Error()),
	)

	if err := c.park(ctx, env, time.Now().Add(delay)); err != nil {
		c.logger.Error("parking retry failed, message lost",
			slog.String("job_id", env.JobID),
			slog.String("error", err.Error()),
		)
	}
}

// park stores the message in the retry set, due at readyAt.
func (c *RedisConsumer) park(ctx context.Context, env envelope, readyAt time.Time) error {
	payload, err := encodeEnvelope(env)
	if err != nil {
		return fmt.Errorf("encode retry payload: %w", err)
	}
	return c.client.ZAdd(ctx, c.retryKey(), redis.Z{
		Score:  float64(readyAt.Unix()),
		Member: payload,
	}).Err()
}

// promoteDue moves retries whose ready time has passed back onto the
// queue. Promotion and removal run in one transaction per message so a
// crash cannot duplicate or lose it.
func (c *RedisConsumer) promoteDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)

	due, err := c.client.ZRangeByScore(ctx, c.retryKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: 10,
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range due {
		pipe := c.client.TxPipeline()
		pipe.ZRem(ctx, c.retryKey(), member)
		pipe.LPush(ctx, c.name, member)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// isShutdown reports whether err is the consumer's context going away.
func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

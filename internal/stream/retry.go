package stream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 500 * time.Millisecond
)

// ErrDeadLettered marks a message that was moved to the dead-letter queue
var ErrDeadLettered = errors.New("message dead-lettered")

// DeadLetterQueue receives messages that exhausted their retries
type DeadLetterQueue interface {
	Push(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error
}

// redisDeadLetterQueue appends failed messages to a Redis stream
type redisDeadLetterQueue struct {
	client *redis.Client
	key    string
}

func (q *redisDeadLetterQueue) Push(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["originalId"] = messageID
	values["error"] = cause.Error()
	values["failedAt"] = time.Now().UTC().Format(time.RFC3339)

	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.key,
		Values: values,
	}).Err()
}

type RetryHandler struct {
	deadLetter DeadLetterQueue
	maxRetries int
	baseDelay  time.Duration
}

// NewRetryHandler retries with exponential backoff and dead-letters to a
// Redis stream
func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return NewRetryHandlerWithQueue(&redisDeadLetterQueue{client: client, key: deadLetterKey}, defaultMaxRetries, defaultBaseDelay)
}

func NewRetryHandlerWithQueue(deadLetter DeadLetterQueue, maxRetries int, baseDelay time.Duration) *RetryHandler {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &RetryHandler{
		deadLetter: deadLetter,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// RetryWithBackoff runs fn up to maxRetries times, sleeping baseDelay,
// 2*baseDelay, ... between attempts. When every attempt fails the message is
// pushed to the dead-letter queue and the last error is returned.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var lastErr error

	for attempt := 0; attempt < h.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * h.baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		log.Warn().
			Err(lastErr).
			Str("message_id", messageID).
			Int("attempt", attempt+1).
			Int("max_retries", h.maxRetries).
			Msg("Message processing failed")
	}

	if err := h.deadLetter.Push(ctx, messageID, fields, lastErr); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to push message to dead letter queue")
		return fmt.Errorf("dead letter failed: %v (processing error: %w)", err, lastErr)
	}

	log.Error().
		Err(lastErr).
		Str("message_id", messageID).
		Msg("Message sent to dead letter queue")

	return fmt.Errorf("%w: %w", ErrDeadLettered, lastErr)
}

package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SubmissionProcessor scans and stores one submission event
type SubmissionProcessor interface {
	ProcessSubmission(ctx context.Context, event *models.SubmissionEvent) (*models.Submission, error)
}

// ConsumerOptions tunes the read loop; zero fields take defaults
type ConsumerOptions struct {
	ReadCount           int64
	BlockTimeout        time.Duration
	PELRecoveryInterval time.Duration
	PELMinIdle          time.Duration
	CleanupInterval     time.Duration
	RetentionDuration   time.Duration
}

func (o ConsumerOptions) withDefaults() ConsumerOptions {
	if o.ReadCount <= 0 {
		o.ReadCount = 10
	}
	if o.BlockTimeout <= 0 {
		o.BlockTimeout = time.Second
	}
	if o.PELRecoveryInterval <= 0 {
		o.PELRecoveryInterval = 30 * time.Second
	}
	if o.PELMinIdle <= 0 {
		o.PELMinIdle = time.Minute
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = time.Hour
	}
	if o.RetentionDuration <= 0 {
		o.RetentionDuration = 24 * time.Hour
	}
	return o
}

// Consumer reads submission events from a Redis stream consumer group
type Consumer struct {
	client        *redis.Client
	streamKey     string
	consumerGroup string
	consumerName  string
	processor     SubmissionProcessor
	retryHandler  *RetryHandler
	opts          ConsumerOptions
	lastPELCheck  time.Time
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	processor SubmissionProcessor,
	retryHandler *RetryHandler,
	opts ConsumerOptions,
) *Consumer {
	return &Consumer{
		client:        client,
		streamKey:     streamKey,
		consumerGroup: consumerGroup,
		consumerName:  consumerName,
		processor:     processor,
		retryHandler:  retryHandler,
		opts:          opts.withDefaults(),
	}
}

// Start blocks reading the stream until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group")
	}

	// Crash recovery: entries delivered to a dead consumer stay pending
	if err := c.recoverPending(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover pending submissions on startup")
	}
	c.lastPELCheck = time.Now()

	go c.runTrimLoop(ctx)

	log.Info().
		Str("stream", c.streamKey).
		Str("group", c.consumerGroup).
		Str("consumer", c.consumerName).
		Dur("retention", c.opts.RetentionDuration).
		Msg("Submission consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("Error reading submission stream")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// MKSTREAM creates the stream if it doesn't exist; "$" skips history
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Debug().Str("group", c.consumerGroup).Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created consumer group")
	return nil
}

// recoverPending claims entries idle in the Pending Entry List and processes them
func (c *Consumer) recoverPending(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  100,
		Idle:   c.opts.PELMinIdle,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get pending messages: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	messageIDs := make([]string, 0, len(pending))
	for _, p := range pending {
		messageIDs = append(messageIDs, p.ID)
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  c.opts.PELMinIdle,
		Messages: messageIDs,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim messages: %w", err)
	}

	log.Info().
		Int("pending", len(pending)).
		Int("claimed", len(claimed)).
		Msg("Claimed idle pending submissions")

	c.processBatch(ctx, claimed)
	return nil
}

func (c *Consumer) poll(ctx context.Context) error {
	if time.Since(c.lastPELCheck) > c.opts.PELRecoveryInterval {
		if err := c.recoverPending(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover pending submissions")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    c.opts.ReadCount,
		Block:    c.opts.BlockTimeout,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		if stream.Stream != c.streamKey {
			continue
		}
		c.processBatch(ctx, stream.Messages)
	}

	return nil
}

func (c *Consumer) processBatch(ctx context.Context, messages []redis.XMessage) {
	for i := range messages {
		if err := c.processMessage(ctx, &messages[i]); err != nil {
			log.Error().
				Err(err).
				Str("message_id", messages[i].ID).
				Msg("Failed to process submission message")
		}
	}
}

// processMessage processes a single message
func (c *Consumer) processMessage(ctx context.Context, msg *redis.XMessage) error {
	streamMsg := toStreamMessage(msg)

	event, err := ParseSubmission(streamMsg)
	if err != nil {
		// Acknowledge bad messages to avoid reprocessing
		c.acknowledge(ctx, msg.ID)
		return err
	}

	fields := make(map[string]interface{}, len(streamMsg.Fields))
	for k, v := range streamMsg.Fields {
		fields[k] = v
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		_, err := c.processor.ProcessSubmission(ctx, event)
		return err
	}, msg.ID, fields)

	if errors.Is(err, ErrDeadLettered) {
		// Parked in the dead letter queue, drop it from the PEL
		c.acknowledge(ctx, msg.ID)
		return err
	}
	if err != nil {
		// Left pending, recoverPending claims it again
		return err
	}

	return c.acknowledge(ctx, msg.ID)
}

// toStreamMessage keeps the string-valued fields of a stream entry
func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}

	return &StreamMessage{
		ID:     msg.ID,
		Fields: fields,
	}
}

// trimOld removes entries older than the retention window
func (c *Consumer) trimOld(ctx context.Context) error {
	cutoff := time.Now().Add(-c.opts.RetentionDuration)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}

	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Trimmed old submission entries")
	}

	return nil
}

func (c *Consumer) runTrimLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.CleanupInterval)
	defer ticker.Stop()

	if err := c.trimOld(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run initial stream trim")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.trimOld(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to trim stream")
			}
		}
	}
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err()
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge message")
		return err
	}

	log.Debug().Str("message_id", messageID).Msg("Message acknowledged")
	return nil
}

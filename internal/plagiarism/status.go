package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/infra/redis"
	"github.com/Duy-Thong/CopyCheck/internal/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statusKeyPrefix = "copycheck:compare_status:"
	statusTTL       = 12 * time.Hour
)

var validSteps = map[models.Step]bool{
	models.StepIdle:      true,
	models.StepInitiated: true,
	models.StepStarted:   true,
	models.StepComparing: true,
	models.StepCompleted: true,
	models.StepFailed:    true,
}

// StatusTracker records the step of each scope's compare run in Redis
type StatusTracker struct {
	redisClient *redis.Client
}

func NewStatusTracker(redisClient *redis.Client) *StatusTracker {
	return &StatusTracker{redisClient: redisClient}
}

func statusKey(scopeID string) string {
	return statusKeyPrefix + scopeID
}

func (t *StatusTracker) UpdateStatus(ctx context.Context, scopeID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(scopeID)

	err := t.redisClient.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("scopeId", scopeID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("scopeId", scopeID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns the stored step, or idle when no run is recorded
func (t *StatusTracker) GetStatus(ctx context.Context, scopeID string) (models.Step, error) {
	value, err := t.redisClient.Get(ctx, statusKey(scopeID)).Result()
	if errors.Is(err, goredis.Nil) {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}

	step := models.Step(value)
	if !validSteps[step] {
		return "", fmt.Errorf("unknown step stored: %s", value)
	}
	return step, nil
}

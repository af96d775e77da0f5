package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushedMessage struct {
	messageID string
	fields    map[string]interface{}
	cause     error
}

type fakeDeadLetterQueue struct {
	pushed []pushedMessage
	err    error
}

func (q *fakeDeadLetterQueue) Push(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	if q.err != nil {
		return q.err
	}
	q.pushed = append(q.pushed, pushedMessage{messageID: messageID, fields: fields, cause: cause})
	return nil
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	dlq := &fakeDeadLetterQueue{}
	handler := NewRetryHandlerWithQueue(dlq, 3, time.Millisecond)

	attempts := 0
	err := handler.RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, "1-0", nil)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Empty(t, dlq.pushed)
}

func TestRetryWithBackoff_DeadLetters(t *testing.T) {
	dlq := &fakeDeadLetterQueue{}
	handler := NewRetryHandlerWithQueue(dlq, 2, time.Millisecond)
	cause := errors.New("mongo down")

	attempts := 0
	err := handler.RetryWithBackoff(context.Background(), func() error {
		attempts++
		return cause
	}, "7-0", map[string]interface{}{"scopeId": "class-1"})

	assert.ErrorIs(t, err, ErrDeadLettered)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 2, attempts)
	require.Len(t, dlq.pushed, 1)
	assert.Equal(t, "7-0", dlq.pushed[0].messageID)
	assert.Equal(t, "class-1", dlq.pushed[0].fields["scopeId"])
}

func TestRetryWithBackoff_DeadLetterFailure(t *testing.T) {
	dlq := &fakeDeadLetterQueue{err: errors.New("redis down")}
	handler := NewRetryHandlerWithQueue(dlq, 1, time.Millisecond)
	cause := errors.New("bad text")

	err := handler.RetryWithBackoff(context.Background(), func() error { return cause }, "8-0", nil)

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDeadLettered)
	assert.ErrorContains(t, err, "redis down")
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	dlq := &fakeDeadLetterQueue{}
	handler := NewRetryHandlerWithQueue(dlq, 3, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	err := handler.RetryWithBackoff(ctx, func() error {
		cancel()
		return errors.New("fails")
	}, "9-0", nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dlq.pushed)
}

func TestNewRetryHandlerWithQueue_DefaultRetries(t *testing.T) {
	handler := NewRetryHandlerWithQueue(&fakeDeadLetterQueue{}, 0, time.Millisecond)
	assert.Equal(t, defaultMaxRetries, handler.maxRetries)
}

package stream

import (
	"fmt"
	"strings"
	"time"

	"github.com/Duy-Thong/CopyCheck/internal/models"
)

const streamIDPrefix = "stream-"

// StreamMessage is a raw Redis stream entry with string fields
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission converts a stream entry into a submission event.
// scopeId and displayName are required; text may be empty. Entries without an
// id are keyed by their stream entry ID so a redelivery maps to the same
// submission.
func ParseSubmission(msg *StreamMessage) (*models.SubmissionEvent, error) {
	scopeID := strings.TrimSpace(msg.Fields["scopeId"])
	if scopeID == "" {
		return nil, fmt.Errorf("message %s: scopeId is required", msg.ID)
	}

	displayName := strings.TrimSpace(msg.Fields["displayName"])
	if displayName == "" {
		return nil, fmt.Errorf("message %s: displayName is required", msg.ID)
	}

	id := strings.TrimSpace(msg.Fields["id"])
	if id == "" {
		id = streamIDPrefix + msg.ID
	}

	event := &models.SubmissionEvent{
		ID:          id,
		ScopeID:     scopeID,
		DisplayName: displayName,
		Text:        msg.Fields["text"],
	}

	if raw := strings.TrimSpace(msg.Fields["uploadedAt"]); raw != "" {
		uploadedAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("message %s: invalid uploadedAt %q: %w", msg.ID, raw, err)
		}
		event.UploadedAt = uploadedAt.UTC()
	}

	return event, nil
}

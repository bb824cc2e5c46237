// Package audit appends records of sensitive actions. Recording is
// fire-and-forget from the caller's perspective: failures are logged by
// the caller, never joined into the request path.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valuelab/fundpipe/internal/blob"
	"github.com/valuelab/fundpipe/internal/core"
	"go.uber.org/zap"
)

// Recorder appends a single audit event. Events are never read back by
// this service.
type Recorder interface {
	Record(ctx context.Context, event core.AuditEvent) error
}

// NewEvent builds an audit event for the given caller and action.
func NewEvent(identity *core.Identity, action string, details map[string]any) core.AuditEvent {
	event := core.AuditEvent{
		ID:        uuid.NewString(),
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	if identity != nil {
		event.UserID = identity.ID
		event.OrganizationID = identity.OrganizationID
	}
	return event
}

// LogRecorder writes audit events to the structured log.
type LogRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder creates a log-backed recorder.
func NewLogRecorder(log *zap.Logger) *LogRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogRecorder{logger: log}
}

func (r *LogRecorder) Record(ctx context.Context, event core.AuditEvent) error {
	r.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("organization_id", event.OrganizationID),
		zap.String("action", event.Action),
		zap.Any("details", event.Details),
		zap.Time("timestamp", event.Timestamp),
	)
	return nil
}

// BlobRecorder appends audit events to blob storage, one object per event.
type BlobRecorder struct {
	storage blob.Storage
}

// NewBlobRecorder creates a blob-backed recorder.
func NewBlobRecorder(storage blob.Storage) *BlobRecorder {
	return &BlobRecorder{storage: storage}
}

func (r *BlobRecorder) Record(ctx context.Context, event core.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("audit/%s/%s-%s.json",
		event.OrganizationID,
		event.Timestamp.UTC().Format("20060102T150405.000000000"),
		event.ID,
	)
	return r.storage.Write(ctx, path, data)
}

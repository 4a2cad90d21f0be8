package permissions

import (
	"context"

	"brandops/internal/events"
	"brandops/internal/models"
	console "brandops/internal/utils/logger"
)

// Recorder appends immutable audit entries for permission changes and
// dashboard/brand transitions. Audit is best-effort observability, not a
// transactional guard: a failed write never rolls back the mutation it
// describes, but it is logged loudly and pushed onto the event bus so a
// silent gap cannot go unnoticed.
type Recorder struct {
	store *Store
	log   *console.Logger
}

func NewRecorder(store *Store) *Recorder {
	return &Recorder{
		store: store,
		log:   console.New("AUDIT"),
	}
}

// Record validates the required fields and appends the entry.
func (r *Recorder) Record(ctx context.Context, entry *models.PermissionAuditLog) error {
	if entry.UserID == "" || entry.Action == "" || entry.OccurredAt.IsZero() {
		return invalidInput("audit entry", ErrInvalidInput)
	}

	if err := r.store.AppendAuditEntry(ctx, entry); err != nil {
		events.Emit(events.TopicAuditWriteFailed, entry)
		return r.log.Error("failed to append audit entry for user %s action %s: %v", err, entry.UserID, entry.Action)
	}
	return nil
}

// Query returns a user's audit trail, most recent first.
func (r *Recorder) Query(ctx context.Context, userID string, limit int) ([]models.PermissionAuditLog, error) {
	return r.store.QueryAuditLog(ctx, userID, limit)
}

package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"brandops/internal/config"
	"brandops/internal/permissions"
	"brandops/internal/services"
	"brandops/internal/utils/crypto"
	"brandops/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db      *gorm.DB
	logger  *logger.Logger
	perms   *permissions.Service
	archive *services.S3Service
	cfg     *config.Config
}

// NewTaskHandler creates a new TaskHandler. The archive service may be nil
// when S3 is not configured; the archive task then fails loudly instead of
// silently dropping rows.
func NewTaskHandler(db *gorm.DB, perms *permissions.Service, archive *services.S3Service, cfg *config.Config) *TaskHandler {
	return &TaskHandler{
		db:      db,
		logger:  logger.New("task_handler"),
		perms:   perms,
		archive: archive,
		cfg:     cfg,
	}
}

// HandleSessionSweep expires every overdue active session, honoring the
// per-user timeout exemption. The local watcher only covers the session this
// process created; the sweep covers sessions left behind by crashed or
// restarted processes.
func (h *TaskHandler) HandleSessionSweep(ctx context.Context, t *asynq.Task) error {
	now := time.Now().UTC()

	sessions, err := h.perms.Store.ListExpiredSessions(ctx, now)
	if err != nil {
		return h.logger.Error("session sweep failed to list expired sessions ❌", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	expired := 0
	for _, session := range sessions {
		record, err := h.perms.Engine.GetUserPermissions(ctx, session.UserID)
		if err != nil {
			h.logger.Warn("sweep skipped session %s: %v", session.ID, err)
			continue
		}
		if record != nil && record.TimeoutExempt {
			continue
		}
		if err := h.perms.Sessions.ExpireSession(ctx, session.ID); err != nil {
			h.logger.Warn("sweep failed to expire session %s: %v", session.ID, err)
			continue
		}
		expired++
	}

	h.logger.Success("✅ session sweep expired %d of %d overdue sessions", expired, len(sessions))
	return nil
}

// auditArchiveManifest accompanies each exported batch so operators can
// verify integrity offline.
type auditArchiveManifest struct {
	Key        string `json:"key"`
	Count      int    `json:"count"`
	Digest     string `json:"digest"`
	HMAC       string `json:"hmac"`
	Signature  string `json:"signature"`
	ExportedAt string `json:"exportedAt"`
}

// HandleAuditArchive exports audit rows older than the retention window to
// S3 in signed batches and flags them archived. Rows are only flagged after
// the upload succeeds; a failed batch is retried whole.
func (h *TaskHandler) HandleAuditArchive(ctx context.Context, t *asynq.Task) error {
	if h.archive == nil {
		return h.logger.Error("audit archive skipped ❌", fmt.Errorf("S3 archive service not configured"))
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -h.cfg.Audit.RetentionDays)
	entries, err := h.perms.Store.ListUnarchivedAuditEntries(ctx, cutoff, h.cfg.Audit.BatchSize)
	if err != nil {
		return h.logger.Error("audit archive failed to list entries ❌", err)
	}
	if len(entries) == 0 {
		return nil
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return h.logger.Error("audit archive failed to encode batch ❌", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("audit/%s/batch-%d.json", now.Format("2006/01/02"), now.UnixNano())
	if _, err := h.archive.UploadArchive(ctx, key, payload); err != nil {
		return err
	}

	digest := sha256.Sum256(payload)
	digestHex := hex.EncodeToString(digest[:])
	signature, err := crypto.SignManifest(digestHex)
	if err != nil {
		return h.logger.Error("audit archive failed to sign manifest ❌", err)
	}

	manifest := auditArchiveManifest{
		Key:        key,
		Count:      len(entries),
		Digest:     digestHex,
		HMAC:       crypto.ComputeArchiveSignature(payload, h.cfg.Crypto.ArchiveSecret),
		Signature:  signature,
		ExportedAt: now.Format(time.RFC3339),
	}
	manifestBody, err := json.Marshal(manifest)
	if err != nil {
		return h.logger.Error("audit archive failed to encode manifest ❌", err)
	}
	if _, err := h.archive.UploadArchive(ctx, key+".manifest.json", manifestBody); err != nil {
		return err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	if err := h.perms.Store.MarkAuditArchived(ctx, ids); err != nil {
		return h.logger.Error("audit archive uploaded but failed to flag rows ❌", err)
	}

	h.logger.Success("✅ archived %d audit entries to %s", len(entries), key)
	return nil
}

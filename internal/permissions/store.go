package permissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brandops/internal/models"
	console "brandops/internal/utils/logger"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Store is the accessor over the persisted permission, session and audit
// tables. Pure data mapping, no policy. Every value flowing into a query
// predicate is validated for shape first and then bound as a parameter by
// gorm; a malicious userId/brandContext is either rejected here or inert
// downstream; no unintended row is ever read, written or dropped.
type Store struct {
	db       *gorm.DB
	validate *playgroundvalidator.Validate
	log      *console.Logger
}

func NewStore(db *gorm.DB) *Store {
	v := playgroundvalidator.New()

	// Tags referenced by the model structs.
	_ = v.RegisterValidation("dashboard_type", func(fl playgroundvalidator.FieldLevel) bool {
		return models.IsValidDashboardType(models.DashboardType(fl.Field().String()))
	})
	_ = v.RegisterValidation("audit_action", func(fl playgroundvalidator.FieldLevel) bool {
		return models.IsValidAuditAction(models.AuditAction(fl.Field().String()))
	})

	return &Store{
		db:       db,
		validate: v,
		log:      console.New("PERM-STORE"),
	}
}

func (s *Store) checkUserID(userID string) error {
	if err := s.validate.Var(userID, "required,uuid"); err != nil {
		return invalidInput("userId", err)
	}
	return nil
}

func (s *Store) checkID(field, id string) error {
	if err := s.validate.Var(id, "required,uuid"); err != nil {
		return invalidInput(field, err)
	}
	return nil
}

// GetPermissions returns the permission record for a user, or nil when none
// exists. Callers must treat "no record" as "no access".
func (s *Store) GetPermissions(ctx context.Context, userID string) (*models.UserPermission, error) {
	if err := s.checkUserID(userID); err != nil {
		return nil, err
	}

	record := &models.UserPermission{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFault("get permissions", err)
	}
	return record, nil
}

// SavePermissions inserts or updates a user's permission record. Records are
// superseded in place, never deleted.
func (s *Store) SavePermissions(ctx context.Context, record *models.UserPermission) error {
	if err := s.validate.Struct(record); err != nil {
		return invalidInput("permission record", err)
	}

	existing := &models.UserPermission{}
	err := s.db.WithContext(ctx).Where("user_id = ?", record.UserID).First(existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
			return storeFault("insert permissions", err)
		}
		return nil
	}
	if err != nil {
		return storeFault("load permissions", err)
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return storeFault("update permissions", err)
	}
	return nil
}

// InsertSession persists a freshly created session row. The partial unique
// index on (user_id) WHERE is_active makes the loser of a concurrent
// create race fail here instead of leaving two active rows.
func (s *Store) InsertSession(ctx context.Context, session *models.DashboardSession) error {
	if err := s.validate.Struct(session); err != nil {
		return invalidInput("session", err)
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return storeFault("insert session", err)
	}
	return nil
}

// GetSession loads a session row by id regardless of active state.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.DashboardSession, error) {
	if err := s.checkID("sessionId", sessionID); err != nil {
		return nil, err
	}

	session := &models.DashboardSession{}
	err := s.db.WithContext(ctx).Where("id = ?", sessionID).First(session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, storeFault("get session", err)
	}
	return session, nil
}

// GetActiveSession returns the user's single active session, or nil.
func (s *Store) GetActiveSession(ctx context.Context, userID string) (*models.DashboardSession, error) {
	if err := s.checkUserID(userID); err != nil {
		return nil, err
	}

	session := &models.DashboardSession{}
	err := s.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).First(session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFault("get active session", err)
	}
	return session, nil
}

// UpdateSession applies a patch to an active session row. Fails with
// ErrNotFound when no active row matches.
func (s *Store) UpdateSession(ctx context.Context, sessionID string, patch map[string]interface{}) error {
	if err := s.checkID("sessionId", sessionID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&models.DashboardSession{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Updates(patch)
	if result.Error != nil {
		return storeFault("update session", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: active session %s", ErrNotFound, sessionID)
	}
	return nil
}

// DeactivateAllSessions flips every active session for the user. Idempotent;
// zero rows affected is a success.
func (s *Store) DeactivateAllSessions(ctx context.Context, userID string) error {
	if err := s.checkUserID(userID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Model(&models.DashboardSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
	if err != nil {
		return storeFault("deactivate sessions", err)
	}
	return nil
}

// ListExpiredSessions returns active sessions whose deadline has passed.
// Exemption policy is the caller's concern.
func (s *Store) ListExpiredSessions(ctx context.Context, now time.Time) ([]models.DashboardSession, error) {
	var sessions []models.DashboardSession
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Find(&sessions).Error
	if err != nil {
		return nil, storeFault("list expired sessions", err)
	}
	return sessions, nil
}

// CountActiveSessions is used by operators and the test suite.
func (s *Store) CountActiveSessions(ctx context.Context, userID string) (int64, error) {
	if err := s.checkUserID(userID); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.DashboardSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, storeFault("count active sessions", err)
	}
	return count, nil
}

// AppendAuditEntry writes one immutable audit row.
func (s *Store) AppendAuditEntry(ctx context.Context, entry *models.PermissionAuditLog) error {
	if err := s.validate.Struct(entry); err != nil {
		return invalidInput("audit entry", err)
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return storeFault("append audit entry", err)
	}
	return nil
}

// QueryAuditLog returns a user's audit trail, most recent first.
func (s *Store) QueryAuditLog(ctx context.Context, userID string, limit int) ([]models.PermissionAuditLog, error) {
	if err := s.checkUserID(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	var entries []models.PermissionAuditLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, storeFault("query audit log", err)
	}
	return entries, nil
}

// ListUnarchivedAuditEntries returns entries older than the cutoff that have
// not been archived yet, oldest first, for the archive job.
func (s *Store) ListUnarchivedAuditEntries(ctx context.Context, cutoff time.Time, limit int) ([]models.PermissionAuditLog, error) {
	var entries []models.PermissionAuditLog
	err := s.db.WithContext(ctx).
		Where("archived = ? AND occurred_at < ?", false, cutoff).
		Order("occurred_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, storeFault("list unarchived audit entries", err)
	}
	return entries, nil
}

// MarkAuditArchived flags exported rows. The flag is the only sanctioned
// post-write mutation of an audit entry.
func (s *Store) MarkAuditArchived(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&models.PermissionAuditLog{}).
		Where("id IN ?", ids).
		Update("archived", true).Error
	if err != nil {
		return storeFault("mark audit archived", err)
	}
	return nil
}

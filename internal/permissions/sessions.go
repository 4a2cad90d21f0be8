package permissions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"brandops/internal/events"
	"brandops/internal/models"
	"brandops/internal/utils/crypto"
	console "brandops/internal/utils/logger"
)

// RequestMeta carries request-level metadata into audit entries.
type RequestMeta struct {
	IPAddress string
	Reason    string
}

// SessionManager owns the dashboard-session lifecycle: creation with
// single-active-session enforcement, brand switching, expiration and
// termination. Sessions move NONE → ACTIVE → ENDED; brand switches are a
// self-loop on ACTIVE, and ENDED is terminal; a new session is always a
// fresh row, never a revival.
type SessionManager struct {
	store   *Store
	engine  *Engine
	audit   *Recorder
	log     *console.Logger
	timeout time.Duration

	mu      sync.Mutex
	current *models.DashboardSession
}

func NewSessionManager(store *Store, engine *Engine, audit *Recorder, timeout time.Duration) *SessionManager {
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &SessionManager{
		store:   store,
		engine:  engine,
		audit:   audit,
		log:     console.New("SESSIONS"),
		timeout: timeout,
	}
}

// CreateSession verifies access, deactivates every other session for the
// user ("last login wins"), inserts a fresh ACTIVE row with an unguessable
// token, and writes exactly one dashboard_switch audit entry. A denial
// writes nothing: no row, no audit entry.
func (m *SessionManager) CreateSession(ctx context.Context, userID string, dashboardType models.DashboardType, brandContext string, meta RequestMeta) (*models.DashboardSession, error) {
	allowed, err := m.engine.CanAccessDashboard(ctx, userID, dashboardType, brandContext)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s dashboard", ErrAccessDenied, dashboardType)
	}

	previous, err := m.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Moving between planes is additionally gated by the hybrid capability;
	// entering the same plane again (re-login) is not a switch.
	if previous != nil && previous.DashboardType != dashboardType {
		record, err := m.engine.GetUserPermissions(ctx, userID)
		if err != nil {
			return nil, err
		}
		if record == nil || !record.Hybrid.Data().CanSwitchBetweenDashboards {
			return nil, fmt.Errorf("%w: switching between dashboards", ErrAccessDenied)
		}
	}

	if err := m.store.DeactivateAllSessions(ctx, userID); err != nil {
		return nil, err
	}

	token, err := crypto.NewSessionToken()
	if err != nil {
		return nil, storeFault("generate session token", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(m.timeout)
	session := &models.DashboardSession{
		UserID:        userID,
		DashboardType: dashboardType,
		SessionToken:  token,
		IsActive:      true,
		StartedAt:     now,
		ExpiresAt:     &expiresAt,
		BrandSwitches: []models.BrandSwitch{},
	}
	if brandContext != "" {
		session.BrandContext = &brandContext
	}

	if err := m.store.InsertSession(ctx, session); err != nil {
		return nil, err
	}

	entry := &models.PermissionAuditLog{
		UserID:      userID,
		Action:      models.AuditActionDashboardSwitch,
		OccurredAt:  now,
		ToDashboard: &session.DashboardType,
		Reason:      meta.Reason,
		IPAddress:   meta.IPAddress,
	}
	if previous != nil {
		entry.FromDashboard = &previous.DashboardType
	}
	if session.BrandContext != nil {
		entry.BrandContext = session.BrandContext
	}
	if err := m.audit.Record(ctx, entry); err != nil {
		m.log.Warn("session %s created but audit write failed: %v", session.ID, err)
	}

	m.setCurrent(session)
	return session, nil
}

// SwitchBrand moves an ACTIVE session to a new brand context. The target
// brand is re-validated against current permissions; a session grants no
// implicit rights to brands outside them, even mid-session. Returns false
// without mutation when the session is missing, inactive, expired, or the
// move is not permitted; an error only for faults or invalid input.
func (m *SessionManager) SwitchBrand(ctx context.Context, sessionID, fromBrand, toBrand, reason string) (bool, error) {
	if toBrand == "" || len(toBrand) > maxScopeIDLength {
		return false, invalidInput("toBrand", ErrInvalidInput)
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !session.IsActive || session.Expired(time.Now().UTC()) {
		return false, nil
	}

	record, err := m.engine.GetUserPermissions(ctx, session.UserID)
	if err != nil {
		return false, err
	}
	if record == nil || !record.Hybrid.Data().BrandContextSwitching {
		return false, nil
	}

	allowed, err := m.engine.CanAccessDashboard(ctx, session.UserID, models.DashboardTypeBrand, toBrand)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, nil
	}

	now := time.Now().UTC()
	if fromBrand == "" && session.BrandContext != nil {
		fromBrand = *session.BrandContext
	}
	switches := append(session.BrandSwitches, models.BrandSwitch{
		FromBrand:  fromBrand,
		ToBrand:    toBrand,
		SwitchedAt: now,
		Reason:     reason,
	})

	err = m.store.UpdateSession(ctx, sessionID, map[string]interface{}{
		"brand_context":  toBrand,
		"brand_switches": switches,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	session.BrandContext = &toBrand
	session.BrandSwitches = switches

	entry := &models.PermissionAuditLog{
		UserID:       session.UserID,
		Action:       models.AuditActionBrandSwitch,
		OccurredAt:   now,
		BrandContext: &toBrand,
		Reason:       reason,
	}
	if err := m.audit.Record(ctx, entry); err != nil {
		m.log.Warn("brand switch on session %s recorded but audit write failed: %v", sessionID, err)
	}

	m.mu.Lock()
	if m.current != nil && m.current.ID == sessionID {
		m.current = session
	}
	m.mu.Unlock()

	events.Emit(events.TopicBrandSwitched, session)
	return true, nil
}

// EndSession terminates a session. Idempotent: ending an already ended or
// unknown session is a no-op, never an error.
func (m *SessionManager) EndSession(ctx context.Context, sessionID string) error {
	return m.endSession(ctx, sessionID, models.AuditActionSessionEnd)
}

func (m *SessionManager) endSession(ctx context.Context, sessionID string, action models.AuditAction) error {
	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if !session.IsActive {
		return nil
	}

	err = m.store.UpdateSession(ctx, sessionID, map[string]interface{}{"is_active": false})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost a race with another terminator; the end state holds.
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	entry := &models.PermissionAuditLog{
		UserID:        session.UserID,
		Action:        action,
		OccurredAt:    now,
		FromDashboard: &session.DashboardType,
	}
	if session.BrandContext != nil {
		entry.BrandContext = session.BrandContext
	}
	if err := m.audit.Record(ctx, entry); err != nil {
		m.log.Warn("session %s ended but audit write failed: %v", sessionID, err)
	}

	m.mu.Lock()
	if m.current != nil && m.current.ID == sessionID {
		m.current = nil
	}
	m.mu.Unlock()

	events.Emit(events.TopicSessionEnded, session)
	return nil
}

// ExpireSession is the watcher/sweeper entry point; identical to EndSession
// but audited as an expiry.
func (m *SessionManager) ExpireSession(ctx context.Context, sessionID string) error {
	return m.endSession(ctx, sessionID, models.AuditActionSessionExpired)
}

// CurrentSession returns the in-memory handle to the last session this
// process created or loaded. It is a local cache, not a fresh store read;
// callers needing authoritative state must reconcile via the store.
func (m *SessionManager) CurrentSession() *models.DashboardSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *SessionManager) setCurrent(session *models.DashboardSession) {
	m.mu.Lock()
	m.current = session
	m.mu.Unlock()
}

// Timeout reports the configured session lifetime.
func (m *SessionManager) Timeout() time.Duration {
	return m.timeout
}

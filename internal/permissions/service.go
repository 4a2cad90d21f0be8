package permissions

import (
	"context"
	"time"

	"brandops/internal/models"
	console "brandops/internal/utils/logger"

	"gorm.io/gorm"
)

// Options tunes one Service instance.
type Options struct {
	SessionTimeout time.Duration
	CacheTTL       time.Duration
	CacheSize      int
	WatchInterval  time.Duration
}

// Service is the coordinating object UI-layer callers talk to: one per
// process, owning the permission cache and the current-session handle.
// It is constructed explicitly and passed by injection, never held as an
// ambient singleton, so tests can run isolated instances side by side.
type Service struct {
	Store    *Store
	Cache    *Cache
	Engine   *Engine
	Sessions *SessionManager
	Audit    *Recorder

	watcher *Watcher
	log     *console.Logger
}

func NewService(db *gorm.DB, opts Options) *Service {
	store := NewStore(db)
	cache := NewCache(opts.CacheSize, opts.CacheTTL)
	audit := NewRecorder(store)
	engine := NewEngine(store, cache, audit)
	sessions := NewSessionManager(store, engine, audit, opts.SessionTimeout)
	watcher := NewWatcher(sessions, engine, opts.WatchInterval)

	return &Service{
		Store:    store,
		Cache:    cache,
		Engine:   engine,
		Sessions: sessions,
		Audit:    audit,
		watcher:  watcher,
		log:      console.New("PERM-SERVICE"),
	}
}

// Start launches the expiry watcher.
func (s *Service) Start() error {
	return s.watcher.Start()
}

// Stop halts the expiry watcher.
func (s *Service) Stop() {
	s.watcher.Stop()
}

// CanAccessDashboard answers the guard question for route guards and
// conditional rendering.
func (s *Service) CanAccessDashboard(ctx context.Context, userID string, dashboardType models.DashboardType, brandID string) (bool, error) {
	return s.Engine.CanAccessDashboard(ctx, userID, dashboardType, brandID)
}

// SwitchToDashboard creates a fresh dashboard session for the user.
func (s *Service) SwitchToDashboard(ctx context.Context, userID string, dashboardType models.DashboardType, brandContext string, meta RequestMeta) (*models.DashboardSession, error) {
	return s.Sessions.CreateSession(ctx, userID, dashboardType, brandContext, meta)
}

// SwitchBrand moves an active session to a new brand context. The from-brand
// is derived from the session's current context.
func (s *Service) SwitchBrand(ctx context.Context, sessionID, toBrand, reason string) (bool, error) {
	return s.Sessions.SwitchBrand(ctx, sessionID, "", toBrand, reason)
}

// HasPermission checks a module/action grant. With an empty dashboardType it
// resolves against the current session's plane, defaulting to company when
// no session is tracked.
func (s *Service) HasPermission(ctx context.Context, userID, module string, action models.ModuleAction, dashboardType models.DashboardType) (bool, error) {
	if dashboardType == "" {
		dashboardType = models.DashboardTypeCompany
		if current := s.Sessions.CurrentSession(); current != nil && current.UserID == userID {
			dashboardType = current.DashboardType
		}
	}
	return s.Engine.HasPermission(ctx, userID, module, action, dashboardType)
}

// RefreshPermissions forces cache invalidation and reload for the user.
func (s *Service) RefreshPermissions(ctx context.Context, userID string) error {
	return s.Engine.RefreshPermissions(ctx, userID)
}

// EndSession terminates a session; idempotent.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	return s.Sessions.EndSession(ctx, sessionID)
}

// CurrentSession returns the locally tracked session handle, or nil.
func (s *Service) CurrentSession() *models.DashboardSession {
	return s.Sessions.CurrentSession()
}

// AuditTrail returns the user's audit entries, most recent first.
func (s *Service) AuditTrail(ctx context.Context, userID string, limit int) ([]models.PermissionAuditLog, error) {
	return s.Audit.Query(ctx, userID, limit)
}

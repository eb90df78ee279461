package rbac

import (
	"fmt"
	"sync/atomic"
)

// Engine answers authorization queries against the currently loaded
// GrantTable. The table is replaced atomically by Load; a query observes
// either the old table or the new one in full, and never blocks or performs
// I/O.
type Engine struct {
	table  atomic.Pointer[GrantTable]
	caps   CapabilityCache
	onLoad []func(prev, next *GrantTable)
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapabilityCache replaces the default in-memory capability memo.
func WithCapabilityCache(c CapabilityCache) Option {
	return func(e *Engine) {
		if c != nil {
			e.caps = c
		}
	}
}

// WithLoadHook registers fn to run after every successful Load. prev is nil
// on the first load.
func WithLoadHook(fn func(prev, next *GrantTable)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.onLoad = append(e.onLoad, fn)
		}
	}
}

// WithTable loads t during construction. NewEngine fails if t does not pass
// hierarchy validation.
func WithTable(t *GrantTable) Option {
	return func(e *Engine) {
		e.table.Store(t)
	}
}

// NewEngine returns an engine. Until a table is loaded every query fails with
// ErrNotReady.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{caps: newMemoCache()}
	for _, opt := range opts {
		opt(e)
	}
	if t := e.table.Swap(nil); t != nil {
		if err := e.Load(t); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// MustNewEngine compiles cfg and returns an engine serving it. It panics on
// an invalid cfg and is meant for known-good presets.
func MustNewEngine(cfg Config, opts ...Option) *Engine {
	e, err := NewEngine(append(opts, WithTable(MustCompile(cfg)))...)
	if err != nil {
		panic(fmt.Sprintf("rbac.MustNewEngine: %v", err))
	}
	return e
}

// Load validates t against the intended hierarchy, restricted to the roles t
// declares, and makes it the active table. If validation fails the previously
// loaded table stays active.
func (e *Engine) Load(t *GrantTable) error {
	if t == nil {
		return fmt.Errorf("%w: nil grant table", ErrConfiguration)
	}
	if err := t.ValidateHierarchy(t.intendedOrder()); err != nil {
		return err
	}
	prev := e.table.Swap(t)
	if prev == nil || prev.Fingerprint() != t.Fingerprint() {
		e.caps.Clear()
	}
	for _, fn := range e.onLoad {
		fn(prev, t)
	}
	return nil
}

// Ready reports whether a validated table is loaded.
func (e *Engine) Ready() bool {
	return e.table.Load() != nil
}

// Table returns the active table, or nil before the first Load.
func (e *Engine) Table() *GrantTable {
	return e.table.Load()
}

// Fingerprint returns the active table's fingerprint, or "" when not ready.
func (e *Engine) Fingerprint() string {
	if t := e.table.Load(); t != nil {
		return t.Fingerprint()
	}
	return ""
}

func (e *Engine) active() (*GrantTable, error) {
	t := e.table.Load()
	if t == nil {
		return nil, ErrNotReady
	}
	return t, nil
}

func (e *Engine) Can(s Subject, p Permission) (bool, error) {
	t, err := e.active()
	if err != nil {
		return false, err
	}
	return t.Can(s, p)
}

func (e *Engine) HasRole(s Subject, r Role) (bool, error) {
	if _, err := e.active(); err != nil {
		return false, err
	}
	return hasRole(s, r)
}

func (e *Engine) HasAnyRole(s Subject, roles []Role) (bool, error) {
	if _, err := e.active(); err != nil {
		return false, err
	}
	return hasAnyRole(s, roles)
}

func (e *Engine) HasAnyPermission(s Subject, perms []Permission) (bool, error) {
	t, err := e.active()
	if err != nil {
		return false, err
	}
	return t.HasAnyPermission(s, perms)
}

func (e *Engine) HasAllPermissions(s Subject, perms []Permission) (bool, error) {
	t, err := e.active()
	if err != nil {
		return false, err
	}
	return t.HasAllPermissions(s, perms)
}

// GrantSet returns the permissions s holds under the active table.
func (e *Engine) GrantSet(s Subject) (PermissionSet, error) {
	t, err := e.active()
	if err != nil {
		return PermissionSet{}, err
	}
	return t.GrantSet(s), nil
}

// Authorize is Can in error form: nil when s holds p, an error wrapping
// ErrDenied when it does not.
func (e *Engine) Authorize(s Subject, p Permission) error {
	ok, err := e.Can(s, p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: role %s does not hold %s", ErrDenied, s.Role, p)
	}
	return nil
}

// Capabilities derives the capability flags for s. Results are memoized per
// table fingerprint and role; subjects with a role outside the enumeration
// are evaluated without touching the memo.
func (e *Engine) Capabilities(s Subject) (Capabilities, error) {
	t, err := e.active()
	if err != nil {
		return Capabilities{}, err
	}
	if !RoleExists(s.Role) {
		return DeriveCapabilities(t.GrantSet(s)), nil
	}
	key := CapabilityKey(t.Fingerprint(), s.Role)
	if caps, ok := e.caps.Get(key); ok {
		return caps, nil
	}
	caps := DeriveCapabilities(t.GrantSet(s))
	e.caps.Set(key, caps)
	return caps, nil
}

func (e *Engine) capabilities(s Subject) Capabilities {
	caps, err := e.Capabilities(s)
	if err != nil {
		return Capabilities{}
	}
	return caps
}

func (e *Engine) CanManageUsers(s Subject) bool {
	return e.capabilities(s).ManageUsers
}

// CanViewAnalytics holds for any of the operational, advanced or full
// analytics grants.
func (e *Engine) CanViewAnalytics(s Subject) bool {
	return e.capabilities(s).ViewAnalytics
}

func (e *Engine) CanManageFleet(s Subject) bool {
	return e.capabilities(s).ManageFleet
}

func (e *Engine) CanUploadSDS(s Subject) bool {
	return e.capabilities(s).UploadSDS
}

func (e *Engine) CanGenerateDocuments(s Subject) bool {
	return e.capabilities(s).GenerateDocuments
}

func (e *Engine) CanGenerateDGDocuments(s Subject) bool {
	return e.capabilities(s).GenerateDGDocuments
}

func (e *Engine) CanGenerateComplianceCertificates(s Subject) bool {
	return e.capabilities(s).GenerateComplianceCertificates
}

func (e *Engine) CanReportIncidents(s Subject) bool {
	return e.capabilities(s).ReportIncidents
}

func (e *Engine) CanManageIoTDevices(s Subject) bool {
	return e.capabilities(s).ManageIoTDevices
}

func (e *Engine) CanViewAuditLogs(s Subject) bool {
	return e.capabilities(s).ViewAuditLogs
}

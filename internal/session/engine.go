// Package session owns the current identity and the role checks used to gate views.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/meaw-storefront/internal/latency"
	"github.com/angelmondragon/meaw-storefront/internal/signal"
	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/google/uuid"
)

// Engine exposes the session operations.
type Engine interface {
	State() State
	Login(ctx context.Context, email, password string) (State, error)
	Register(ctx context.Context, input RegisterInput) (State, error)
	Logout() State
	UpdateUser(patch UserPatch) (State, error)
	ClearError() State

	IsAuthenticated() bool
	IsAdmin() bool
	IsVendor() bool
	IsCustomer() bool
	Authorize(guard Guard) Decision

	Snapshot() Snapshot
	Restore(snapshot Snapshot)
	Subscribe(fn func(Snapshot)) (cancel func())
}

type authenticator interface {
	Authenticate(email, password string) (User, bool, error)
}

type languageSource interface {
	Language() enums.Language
}

// EngineParams configures a session engine.
type EngineParams struct {
	Directory    authenticator
	Language     languageSource
	LoginLatency time.Duration
	Now          func() time.Time
}

type engine struct {
	mu        sync.Mutex
	user      *User
	authed    bool
	loading   bool
	lastError string
	seq       uint64

	directory authenticator
	language  languageSource
	latency   time.Duration
	now       func() time.Time
	changes   signal.Hub[Snapshot]
}

// NewEngine builds an anonymous session.
func NewEngine(params EngineParams) (Engine, error) {
	if params.Directory == nil {
		return nil, fmt.Errorf("identity directory is required")
	}
	if params.LoginLatency < 0 {
		return nil, fmt.Errorf("login latency must be non-negative")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &engine{
		directory: params.Directory,
		language:  params.Language,
		latency:   params.LoginLatency,
		now:       now,
	}, nil
}

func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *engine) Subscribe(fn func(Snapshot)) func() {
	return e.changes.Subscribe(fn)
}

// Login checks the credentials after the simulated round trip. A failure leaves the
// session anonymous with a localized LastError and returns an UNAUTHORIZED error.
func (e *engine) Login(ctx context.Context, email, password string) (State, error) {
	ticket := e.begin()

	if err := latency.Wait(ctx, e.latency); err != nil {
		return e.abort(ticket, fmt.Errorf("login: %w", err))
	}

	user, ok, authErr := e.directory.Authenticate(email, password)

	e.mu.Lock()
	defer e.mu.Unlock()

	if ticket != e.seq {
		return e.stateLocked(), supersededError()
	}
	e.loading = false

	if authErr != nil || !ok {
		e.user = nil
		e.authed = false
		e.lastError = localizedInvalidCredentials(e.languageLocked())
		e.changes.Emit(e.snapshotLocked())
		if authErr != nil {
			return e.stateLocked(), pkgerrors.Wrap(pkgerrors.CodeInternal, authErr, "authenticate")
		}
		return e.stateLocked(), pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	e.user = &user
	e.authed = true
	e.lastError = ""
	e.changes.Emit(e.snapshotLocked())
	return e.stateLocked(), nil
}

// Register creates a new identity and signs it in. Absent a malformed role it always succeeds.
func (e *engine) Register(ctx context.Context, input RegisterInput) (State, error) {
	role := enums.UserRoleCustomer
	if input.Role != nil {
		if !input.Role.IsValid() {
			return e.State(), pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
				WithDetails(map[string]any{"role": string(*input.Role)})
		}
		role = *input.Role
	}

	ticket := e.begin()

	if err := latency.Wait(ctx, e.latency); err != nil {
		return e.abort(ticket, fmt.Errorf("register: %w", err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if ticket != e.seq {
		return e.stateLocked(), supersededError()
	}

	now := e.now()
	email := strings.TrimSpace(input.Email)
	user := &User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          strings.TrimSpace(input.Name),
		Avatar:        avatarURL(email),
		Role:          role,
		CreatedAt:     now,
		UpdatedAt:     now,
		IsActive:      true,
		EmailVerified: false,
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		user.Phone = &phone
	}

	e.user = user
	e.authed = true
	e.loading = false
	e.lastError = ""
	e.changes.Emit(e.snapshotLocked())
	return e.stateLocked(), nil
}

// Logout clears the identity. Any in-flight login or register is superseded.
func (e *engine) Logout() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	e.user = nil
	e.authed = false
	e.loading = false
	e.lastError = ""
	e.changes.Emit(e.snapshotLocked())
	return e.stateLocked()
}

// UpdateUser merges patch into the current identity. It is a no-op when anonymous.
func (e *engine) UpdateUser(patch UserPatch) (State, error) {
	if patch.Role != nil && !patch.Role.IsValid() {
		return e.State(), pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]any{"role": string(*patch.Role)})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.authed || e.user == nil {
		return e.stateLocked(), nil
	}

	updated := e.user.clone()
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Phone != nil {
		phone := *patch.Phone
		updated.Phone = &phone
	}
	if patch.Avatar != nil {
		updated.Avatar = *patch.Avatar
	}
	if patch.Role != nil {
		updated.Role = *patch.Role
	}
	if patch.EmailVerified != nil {
		updated.EmailVerified = *patch.EmailVerified
	}
	updated.UpdatedAt = e.now()

	e.user = updated
	e.changes.Emit(e.snapshotLocked())
	return e.stateLocked(), nil
}

// ClearError resets LastError.
func (e *engine) ClearError() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastError = ""
	return e.stateLocked()
}

func (e *engine) IsAuthenticated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authed && e.user != nil
}

func (e *engine) IsAdmin() bool    { return e.hasRole(enums.UserRoleAdmin) }
func (e *engine) IsVendor() bool   { return e.hasRole(enums.UserRoleVendor) }
func (e *engine) IsCustomer() bool { return e.hasRole(enums.UserRoleCustomer) }

// Authorize evaluates guard against the current state.
func (e *engine) Authorize(guard Guard) Decision {
	return guard.Evaluate(e.State())
}

// Restore loads a persisted snapshot without notifying subscribers. A snapshot that
// claims authentication without a usable user falls back to anonymous.
func (e *engine) Restore(snapshot Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.loading = false
	e.lastError = ""
	if !snapshot.IsAuthenticated || snapshot.User == nil || snapshot.User.ID == "" || !snapshot.User.Role.IsValid() {
		e.user = nil
		e.authed = false
		return
	}
	e.user = snapshot.User.clone()
	e.authed = true
}

// begin moves to the authenticating state and returns the request's sequence ticket.
func (e *engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.loading = true
	e.lastError = ""
	return e.seq
}

// abort leaves the authenticating state after a cancelled wait, unless a newer request owns it.
func (e *engine) abort(ticket uint64, cause error) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ticket == e.seq {
		e.loading = false
	}
	return e.stateLocked(), cause
}

func (e *engine) hasRole(role enums.UserRole) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authed && e.user != nil && e.user.Role == role
}

func (e *engine) languageLocked() enums.Language {
	if e.language == nil {
		return enums.DefaultLanguage
	}
	return e.language.Language()
}

func (e *engine) stateLocked() State {
	status := enums.SessionStateAnonymous
	switch {
	case e.loading:
		status = enums.SessionStateAuthenticating
	case e.authed && e.user != nil:
		status = enums.SessionStateAuthenticated
	}
	return State{
		User:            e.user.clone(),
		IsAuthenticated: e.authed && e.user != nil,
		IsLoading:       e.loading,
		Status:          status,
		LastError:       e.lastError,
	}
}

func (e *engine) snapshotLocked() Snapshot {
	return Snapshot{User: e.user.clone(), IsAuthenticated: e.authed && e.user != nil}
}

func supersededError() error {
	return pkgerrors.New(pkgerrors.CodeSuperseded, "a newer sign-in request replaced this one")
}

package controllers

import (
	"net/http"
	"testing"

	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/pkg/enums"
)

func TestLoginSuccess(t *testing.T) {
	ws := newTestWorkspace(t)

	resp := do(t, Login(nil, testLogger()), ws, call{
		method: http.MethodPost,
		path:   "/api/v1/session/login",
		body:   map[string]string{"email": "admin@meaw.com", "password": "password"},
	})
	expectStatus(t, resp, http.StatusOK)

	var state session.State
	decodeData(t, resp, &state)
	if !state.IsAuthenticated || state.User == nil || state.User.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected state %+v", state)
	}
	if !ws.Session.IsAdmin() {
		t.Fatal("expected workspace session to be admin")
	}
}

func TestLoginFailureLocalizesLastError(t *testing.T) {
	ws := newTestWorkspace(t)
	if _, err := ws.Preferences.SetLanguage(enums.LanguageEnglish); err != nil {
		t.Fatalf("set language: %v", err)
	}

	resp := do(t, Login(nil, testLogger()), ws, call{
		method: http.MethodPost,
		path:   "/api/v1/session/login",
		body:   map[string]string{"email": "admin@meaw.com", "password": "wrong"},
	})
	expectStatus(t, resp, http.StatusUnauthorized)
	if apiErr := decodeError(t, resp); apiErr.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}

	resp = do(t, GetSession(testLogger()), ws, call{method: http.MethodGet, path: "/api/v1/session"})
	var state session.State
	decodeData(t, resp, &state)
	if state.IsAuthenticated || state.LastError != "Invalid email or password" {
		t.Fatalf("unexpected state %+v", state)
	}

	resp = do(t, ClearSessionError(testLogger()), ws, call{method: http.MethodDelete, path: "/api/v1/session/error"})
	state = session.State{}
	decodeData(t, resp, &state)
	if state.LastError != "" {
		t.Fatalf("expected cleared error, got %q", state.LastError)
	}
}

func TestLoginValidation(t *testing.T) {
	ws := newTestWorkspace(t)
	resp := do(t, Login(nil, testLogger()), ws, call{
		method: http.MethodPost,
		path:   "/api/v1/session/login",
		body:   map[string]string{"email": "not-an-email", "password": "password"},
	})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	ws := newTestWorkspace(t)

	resp := do(t, Register(testLogger()), ws, call{
		method: http.MethodPost,
		path:   "/api/v1/session/register",
		body:   map[string]string{"email": "rahim@example.com", "password": "secret1", "name": " Rahim "},
	})
	expectStatus(t, resp, http.StatusCreated)

	var state session.State
	decodeData(t, resp, &state)
	if state.User == nil || state.User.Role != enums.UserRoleCustomer || state.User.Name != "Rahim" {
		t.Fatalf("unexpected user %+v", state.User)
	}
	if state.User.EmailVerified {
		t.Fatal("new users start unverified")
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	ws := newTestWorkspace(t)

	resp := do(t, Register(testLogger()), ws, call{
		method: http.MethodPost,
		path:   "/api/v1/session/register",
		body:   map[string]string{"email": "rahim@example.com", "password": "secret1", "name": "Rahim", "role": "superuser"},
	})
	expectStatus(t, resp, http.StatusBadRequest)
	if ws.Session.IsAuthenticated() {
		t.Fatal("rejected registration must not sign in")
	}
}

func TestUpdateUserAndLogout(t *testing.T) {
	ws := newTestWorkspace(t)
	do(t, Login(nil, testLogger()), ws, call{
		method: http.MethodPost,
		path:   "/api/v1/session/login",
		body:   map[string]string{"email": "customer@meaw.com", "password": "password"},
	})

	resp := do(t, UpdateSessionUser(testLogger()), ws, call{
		method: http.MethodPatch,
		path:   "/api/v1/session/user",
		body:   map[string]any{"name": "Karim", "email_verified": true},
	})
	expectStatus(t, resp, http.StatusOK)
	var state session.State
	decodeData(t, resp, &state)
	if state.User.Name != "Karim" || !state.User.EmailVerified || state.User.Email != "customer@meaw.com" {
		t.Fatalf("unexpected user %+v", state.User)
	}

	resp = do(t, Logout(testLogger()), ws, call{method: http.MethodPost, path: "/api/v1/session/logout"})
	expectStatus(t, resp, http.StatusOK)
	state = session.State{}
	decodeData(t, resp, &state)
	if state.IsAuthenticated || state.User != nil {
		t.Fatalf("expected anonymous session, got %+v", state)
	}
}

func TestLoginResult(t *testing.T) {
	if got := loginResult(nil); got != loginOK {
		t.Fatalf("expected ok, got %s", got)
	}
	if got := loginResult(errContextCanceled()); got != loginCanceled {
		t.Fatalf("expected canceled, got %s", got)
	}
}

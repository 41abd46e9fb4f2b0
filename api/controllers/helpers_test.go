package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/meaw-storefront/api/middleware"
	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/internal/notifications"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/internal/workspace"
	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/storage"
)

var testNow = time.Date(2024, 4, 14, 9, 0, 0, 0, time.UTC)

type stubDirectory struct{}

func (stubDirectory) Authenticate(email, password string) (session.User, bool, error) {
	if password != session.SentinelPassword {
		return session.User{}, false, nil
	}
	switch email {
	case "admin@meaw.com":
		return session.User{ID: "1", Email: email, Name: "Admin", Role: enums.UserRoleAdmin, IsActive: true}, true, nil
	case "vendor@meaw.com":
		return session.User{ID: "2", Email: email, Name: "Vendor", Role: enums.UserRoleVendor, IsActive: true}, true, nil
	case "customer@meaw.com":
		return session.User{ID: "3", Email: email, Name: "Customer", Role: enums.UserRoleCustomer, IsActive: true}, true, nil
	}
	return session.User{}, false, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestRegistry(t *testing.T) *workspace.Registry {
	t.Helper()
	reg, err := workspace.NewRegistry(workspace.Params{
		Store:     storage.NewMemoryStore("meaw"),
		Directory: stubDirectory{},
		Capacity:  8,
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func newTestWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := newTestRegistry(t).Get(context.Background(), "client-test")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	return ws
}

type call struct {
	method string
	path   string
	body   any
	params map[string]string
}

func do(t *testing.T, handler http.HandlerFunc, ws *workspace.Workspace, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch v := c.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(c.method, c.path, body)
	if ws != nil {
		req = req.WithContext(middleware.WithWorkspace(req.Context(), ws))
	}
	if len(c.params) > 0 {
		routeCtx := chi.NewRouteContext()
		for k, v := range c.params {
			routeCtx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}

	resp := httptest.NewRecorder()
	handler(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) responses.APIError {
	t.Helper()
	var envelope responses.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}

func expectStatus(t *testing.T, resp *httptest.ResponseRecorder, status int) {
	t.Helper()
	if resp.Code != status {
		t.Fatalf("expected status %d got %d: %s", status, resp.Code, resp.Body.String())
	}
}

func notificationsAll() notifications.ListParams {
	return notifications.ListParams{}
}

func errContextCanceled() error {
	return fmt.Errorf("apply discount: %w", context.Canceled)
}

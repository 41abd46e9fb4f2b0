package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
)

type samplePayload struct {
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"min=1,max=10"`
	Role     string `json:"role" validate:"omitempty,role"`
	Language string `json:"language" validate:"omitempty,language"`
}

func newJSONRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newJSONRequest(`{"email":"customer@meaw.com","quantity":2,"role":"vendor","language":"en"}`), &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Quantity != 2 || p.Role != "vendor" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newJSONRequest(`{"email":"nope","quantity":0,"role":"owner","language":"fr"}`), &p)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	for _, field := range []string{"email", "quantity", "role", "language"} {
		if details[field] == "" {
			t.Fatalf("expected error for %s in %v", field, details)
		}
	}
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndEmptyBody(t *testing.T) {
	var p samplePayload
	if err := DecodeJSONBody(newJSONRequest(`{"email":"a@b.co","quantity":1,"extra":true}`), &p); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
	if err := DecodeJSONBody(newJSONRequest(``), &p); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=5&unread=true&bad=x", nil)
	if v, err := ParseQueryInt(r, "limit", 20, 1, 100); err != nil || v != 5 {
		t.Fatalf("limit: got %d, %v", v, err)
	}
	if v, err := ParseQueryInt(r, "missing", 20, 1, 100); err != nil || v != 20 {
		t.Fatalf("default: got %d, %v", v, err)
	}
	if _, err := ParseQueryInt(r, "limit", 20, 10, 100); err == nil {
		t.Fatal("expected out of range error")
	}
	if v, err := ParseQueryBool(r, "unread", false); err != nil || !v {
		t.Fatalf("unread: got %v, %v", v, err)
	}
	if _, err := ParseQueryBool(r, "bad", false); err == nil {
		t.Fatal("expected bool parse error")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  করিম আহমেদ  ", 4); got != "করিম" {
		t.Fatalf("unexpected sanitize result %q", got)
	}
	if got := SanitizeString(" meaw ", 0); got != "meaw" {
		t.Fatalf("unexpected sanitize result %q", got)
	}
	if SanitizeOptional(nil, 3) != nil {
		t.Fatal("expected nil passthrough")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"abc":          "abc",
	}
	for in, want := range cases {
		got, err := BearerToken(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "   ", "Bearer  "} {
		if _, err := BearerToken(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

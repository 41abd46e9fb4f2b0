package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	for _, raw := range []string{"admin", "vendor", "customer", "guest"} {
		role, err := ParseUserRole(raw)
		if err != nil {
			t.Fatalf("ParseUserRole(%q) returned error: %v", raw, err)
		}
		if !role.IsValid() {
			t.Fatalf("expected %q to be valid", raw)
		}
	}
	if _, err := ParseUserRole("ADMIN"); err == nil {
		t.Fatal("expected role parsing to be case sensitive")
	}
	if UserRole("owner").IsValid() {
		t.Fatal("owner is not a storefront role")
	}
}

func TestLanguageToggle(t *testing.T) {
	if DefaultLanguage != LanguageBengali {
		t.Fatalf("expected bn default, got %s", DefaultLanguage)
	}
	if LanguageBengali.Other() != LanguageEnglish {
		t.Fatal("bn should toggle to en")
	}
	if LanguageEnglish.Other() != LanguageBengali {
		t.Fatal("en should toggle to bn")
	}
	if _, err := ParseLanguage("fr"); err == nil {
		t.Fatal("expected fr to be rejected")
	}
}

func TestSessionStateIsValid(t *testing.T) {
	if !SessionStateAuthenticating.IsValid() {
		t.Fatal("authenticating should be valid")
	}
	if SessionState("loading").IsValid() {
		t.Fatal("loading is not a session state")
	}
}

func TestParseNotificationType(t *testing.T) {
	got, err := ParseNotificationType("promotion")
	if err != nil || got != NotificationTypePromotion {
		t.Fatalf("unexpected parse result %q, %v", got, err)
	}
	if _, err := ParseNotificationType("market_update"); err == nil {
		t.Fatal("expected unknown type to be rejected")
	}
}

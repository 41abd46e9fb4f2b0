package enums

// SessionState tracks where the session engine is in its login lifecycle.
type SessionState string

const (
	SessionStateAnonymous      SessionState = "anonymous"
	SessionStateAuthenticating SessionState = "authenticating"
	SessionStateAuthenticated  SessionState = "authenticated"
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}

// IsValid reports whether the state is one of the known session states.
func (s SessionState) IsValid() bool {
	switch s {
	case SessionStateAnonymous, SessionStateAuthenticating, SessionStateAuthenticated:
		return true
	default:
		return false
	}
}

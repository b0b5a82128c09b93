package model

// PrincipalKind identifies which credential class authenticated a request.
type PrincipalKind string

const (
	PrincipalAPIKey PrincipalKind = "api_key"
	PrincipalAdmin  PrincipalKind = "admin"
)

// Principal holds authenticated request context.
// This is injected into the request context by the auth middleware.
// KeyPrefix is the masked credential, safe to log.
type Principal struct {
	Kind      PrincipalKind
	KeyPrefix string
}

// IsAdmin reports whether the request was authenticated with the admin secret.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Kind == PrincipalAdmin
}

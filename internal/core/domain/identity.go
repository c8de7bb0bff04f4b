package domain

// Identity is the authenticated principal carried through a single request or
// embedded in a token: who the caller is plus the roles and permission scopes
// granted to them. Instances are built fresh per login or per token validation
// and never mutated afterwards.
type Identity struct {
	Username string
	Roles    []string
	Scopes   []string
}

// NewIdentity normalises roles and scopes to non-nil slices so callers can
// range over them without nil checks.
func NewIdentity(username string, roles, scopes []string) Identity {
	if roles == nil {
		roles = []string{}
	}
	if scopes == nil {
		scopes = []string{}
	}
	return Identity{Username: username, Roles: roles, Scopes: scopes}
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

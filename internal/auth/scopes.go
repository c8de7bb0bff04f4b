package auth

import "sort"

// defaultRoleScopes is the built-in role → scope map. Loaded once at startup
// and read-only thereafter.
var defaultRoleScopes = map[string][]string{
	"USER": {
		"read:simulations",
		"write:simulations",
		"read:profile",
		"write:profile",
	},
	"ADMIN": {
		"read:simulations",
		"write:simulations",
		"delete:simulations",
		"read:profile",
		"write:profile",
		"read:users",
		"write:users",
	},
}

// ScopePolicy answers which permission scopes a role grants. Read-only after
// construction; lookups return copies so callers cannot mutate shared state.
type ScopePolicy struct {
	grants map[string][]string
}

// NewScopePolicy builds a policy from the given role → scopes map, copying it
// defensively. A nil map yields the built-in defaults.
func NewScopePolicy(grants map[string][]string) *ScopePolicy {
	if grants == nil {
		grants = defaultRoleScopes
	}
	copied := make(map[string][]string, len(grants))
	for role, scopes := range grants {
		copied[role] = append([]string(nil), scopes...)
	}
	return &ScopePolicy{grants: copied}
}

// DefaultScopePolicy returns a policy over the built-in role map.
func DefaultScopePolicy() *ScopePolicy {
	return NewScopePolicy(nil)
}

// ScopesFor returns the scopes granted by a role. Unknown roles yield an
// empty set, not an error. The returned slice is a fresh copy.
func (p *ScopePolicy) ScopesFor(role string) []string {
	scopes, ok := p.grants[role]
	if !ok {
		return []string{}
	}
	return append([]string(nil), scopes...)
}

// UnionFor returns the deduplicated, sorted union of scopes across roles.
func (p *ScopePolicy) UnionFor(roles []string) []string {
	seen := make(map[string]struct{})
	for _, role := range roles {
		for _, scope := range p.grants[role] {
			seen[scope] = struct{}{}
		}
	}
	union := make([]string, 0, len(seen))
	for scope := range seen {
		union = append(union, scope)
	}
	sort.Strings(union)
	return union
}

package auth

import (
	"sort"
	"strings"
)

// Authority prefixes. Authorities are the prefixed permission strings access
// checks run against: ROLE_* for coarse roles, SCOPE_* for fine permissions.
const (
	RolePrefix  = "ROLE_"
	ScopePrefix = "SCOPE_"
)

// MapToAuthorities normalises roles and scopes into a single deduplicated,
// sorted authority set. Entries already carrying their prefix are kept as-is,
// blank entries are dropped, and nil inputs are treated as empty.
func MapToAuthorities(roles, scopes []string) []string {
	seen := make(map[string]struct{}, len(roles)+len(scopes))
	for _, role := range roles {
		if a := prefixed(role, RolePrefix); a != "" {
			seen[a] = struct{}{}
		}
	}
	for _, scope := range scopes {
		if a := prefixed(scope, ScopePrefix); a != "" {
			seen[a] = struct{}{}
		}
	}

	authorities := make([]string, 0, len(seen))
	for a := range seen {
		authorities = append(authorities, a)
	}
	sort.Strings(authorities)
	return authorities
}

func prefixed(value, prefix string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, prefix) {
		return value
	}
	return prefix + value
}

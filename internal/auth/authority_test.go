package auth

import (
	"reflect"
	"testing"
)

func TestMapToAuthorities_Prefixing(t *testing.T) {
	got := MapToAuthorities([]string{"ADMIN"}, []string{"read:users"})
	want := []string{"ROLE_ADMIN", "SCOPE_read:users"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMapToAuthorities_PrefixIdempotence(t *testing.T) {
	plain := MapToAuthorities([]string{"ADMIN"}, []string{"x"})
	prefixed := MapToAuthorities([]string{"ROLE_ADMIN"}, []string{"SCOPE_x"})
	if !reflect.DeepEqual(plain, prefixed) {
		t.Fatalf("pre-prefixed input should map identically: %v vs %v", plain, prefixed)
	}
}

func TestMapToAuthorities_Dedup(t *testing.T) {
	got := MapToAuthorities([]string{"USER", "ROLE_USER", "USER"}, []string{"a", "SCOPE_a"})
	want := []string{"ROLE_USER", "SCOPE_a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMapToAuthorities_DropsBlanksAndNil(t *testing.T) {
	got := MapToAuthorities([]string{"", "  ", "USER"}, nil)
	want := []string{"ROLE_USER"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if empty := MapToAuthorities(nil, nil); len(empty) != 0 {
		t.Fatalf("nil inputs should yield an empty set, got %v", empty)
	}
}

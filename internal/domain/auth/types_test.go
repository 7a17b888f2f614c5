package auth

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "staff", "customer"} {
		r, err := ParseRole(valid)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", valid, err)
		}
		if string(r) != valid {
			t.Fatalf("ParseRole(%q) = %q", valid, r)
		}
	}
	if _, err := ParseRole("guest"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
	if _, err := ParseRole(""); err == nil {
		t.Fatalf("expected error for empty role")
	}
}

func TestRole_UnmarshalText(t *testing.T) {
	var r Role
	if err := r.UnmarshalText([]byte("staff")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r != RoleStaff {
		t.Fatalf("unexpected role: %q", r)
	}
	if err := r.UnmarshalText([]byte("root")); err == nil {
		t.Fatalf("expected error for invalid role")
	}
}

func TestState_Authenticated(t *testing.T) {
	if (State{}).Authenticated() {
		t.Fatalf("empty state must not be authenticated")
	}
	st := State{User: &Profile{ID: "u", Role: RoleCustomer, CreatedAt: time.Now()}}
	if !st.Authenticated() {
		t.Fatalf("expected authenticated")
	}
	role, ok := st.RoleOf()
	if !ok || role != RoleCustomer {
		t.Fatalf("unexpected role: %q, %v", role, ok)
	}
	if _, ok := (State{Loading: true}).RoleOf(); ok {
		t.Fatalf("loading state without user must report no role")
	}
}

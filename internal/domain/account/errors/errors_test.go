package errors

import "testing"

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidArgument("bad")
	if !IsInvalidArgument(err) {
		t.Fatal("expected invalid argument")
	}

	wrapped := WrapInternal(err, "ctx")
	if !IsInternal(wrapped) {
		t.Fatal("expected internal")
	}
}

func TestTokenReasonsCollapse(t *testing.T) {
	for _, err := range []error{ErrNoTokenIssued, ErrTokenExpired, ErrTokenMismatch} {
		if !IsInvalidToken(err) {
			t.Fatalf("%v must collapse to ErrInvalidToken", err)
		}
	}

	if IsTokenExpired(ErrTokenMismatch) {
		t.Fatal("reasons must stay distinguishable")
	}
	if IsNoTokenIssued(ErrTokenExpired) {
		t.Fatal("reasons must stay distinguishable")
	}
}

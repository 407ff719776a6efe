package errors

import (
	stderrors "errors"
	"testing"
)

func TestEAssemblesFields(t *testing.T) {
	wrapped := stderrors.New("connection refused")
	err := E(Service, "data service request failed", wrapped)

	var e *Error
	if !As(err, &e) {
		t.Fatal("E() did not produce an *Error")
	}
	if e.Kind != Service {
		t.Errorf("kind = %v, want Service", e.Kind)
	}
	if e.Message != "data service request failed" {
		t.Errorf("message = %q", e.Message)
	}
	if !Is(err, wrapped) {
		t.Error("wrapped error not reachable through Unwrap")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "session", err: E(Session, "invalid payment session"), want: Session},
		{name: "invalid", err: E(Invalid, "amount is required"), want: Invalid},
		{name: "wrapped application error", err: E(Internal, "outer", E(Service, "inner")), want: Internal},
		{name: "plain error", err: stderrors.New("boom"), want: Other},
		{name: "no kind given", err: E("just a message"), want: Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(E(Invalid, "name is required")); got != "name is required" {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(stderrors.New("boom")); got != "boom" {
		t.Errorf("MessageOf() fallback = %q", got)
	}
}

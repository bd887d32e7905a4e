package cpu

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		before  Flags
		derived uint16
		want    Flags
	}{
		{
			name:   "no change keeps everything",
			policy: Policy{},
			before: Flags{Zero: true, Subtract: true, HalfCarry: true, Carry: true},
			want:   Flags{Zero: true, Subtract: true, HalfCarry: true, Carry: true},
		},
		{
			name:    "zero from low byte",
			policy:  Policy{Zero: DataDependent},
			derived: 0x0100,
			want:    Flags{Zero: true},
		},
		{
			name:    "non-zero low byte",
			policy:  Policy{Zero: DataDependent},
			before:  Flags{Zero: true},
			derived: 0x0001,
			want:    Flags{},
		},
		{
			name:   "forced values",
			policy: Policy{Zero: ForceFalse, Subtract: ForceTrue, HalfCarry: ForceTrue, Carry: ForceFalse},
			before: Flags{Zero: true, Carry: true},
			want:   Flags{Subtract: true, HalfCarry: true},
		},
		{
			name:   "data-dependent carries keep handler values",
			policy: Policy{HalfCarry: DataDependent, Carry: DataDependent},
			before: Flags{HalfCarry: true, Carry: true},
			want:   Flags{HalfCarry: true, Carry: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.before
			f.resolve(tt.policy, NOP, tt.derived)
			if f != tt.want {
				t.Errorf("resolve = %s, want %s", f, tt.want)
			}
		})
	}
}

func TestResolvePanicsOnDataDependentSubtract(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("recover() = %v, want an error", r)
		}
		var violation *PolicyViolation
		if !errors.As(err, &violation) || violation.Mnemonic != ADD {
			t.Errorf("panic = %v, want *PolicyViolation for ADD", err)
		}
	}()

	var f Flags
	f.resolve(Policy{Subtract: DataDependent}, ADD, 0)
}

func TestPolicyString(t *testing.T) {
	p := Policy{Zero: DataDependent, Subtract: ForceFalse, HalfCarry: ForceTrue, Carry: NoChange}
	if got := p.String(); got != "* 0 1 -" {
		t.Errorf("String() = %q, want %q", got, "* 0 1 -")
	}
}

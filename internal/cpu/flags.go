package cpu

import "fmt"

// FlagRule describes what an instruction does to one status flag.
type FlagRule uint8

// Flag rules, as written in the opcode reference ('-', letter, '1', '0').
const (
	NoChange FlagRule = iota
	DataDependent
	ForceTrue
	ForceFalse
)

func (r FlagRule) String() string {
	switch r {
	case NoChange:
		return "-"
	case DataDependent:
		return "*"
	case ForceTrue:
		return "1"
	case ForceFalse:
		return "0"
	}
	return "?"
}

// Policy holds one FlagRule per status flag.
type Policy struct {
	Zero      FlagRule
	Subtract  FlagRule
	HalfCarry FlagRule
	Carry     FlagRule
}

// String renders the policy in reference order "Z N H C".
func (p Policy) String() string {
	return fmt.Sprintf("%s %s %s %s", p.Zero, p.Subtract, p.HalfCarry, p.Carry)
}

// validate rejects rules that resolve cannot honour.
func (p Policy) validate(m Mnemonic) error {
	if p.Subtract == DataDependent {
		return &PolicyViolation{Flag: "N", Mnemonic: m}
	}
	return nil
}

// resolve finalizes the flag record after a handler has run.
//
// Half-carry and carry are computed by the handler itself; a DataDependent
// rule for them leaves the handler's value in place. Zero is derived from
// the low byte of derived.
func (f *Flags) resolve(p Policy, m Mnemonic, derived uint16) {
	switch p.Zero {
	case DataDependent:
		f.Zero = derived&0xFF == 0
	case ForceTrue:
		f.Zero = true
	case ForceFalse:
		f.Zero = false
	case NoChange:
	}

	switch p.Subtract {
	case DataDependent:
		panic(&PolicyViolation{Flag: "N", Mnemonic: m})
	case ForceTrue:
		f.Subtract = true
	case ForceFalse:
		f.Subtract = false
	case NoChange:
	}

	f.HalfCarry = forced(p.HalfCarry, f.HalfCarry)
	f.Carry = forced(p.Carry, f.Carry)
}

func forced(rule FlagRule, current bool) bool {
	switch rule {
	case ForceTrue:
		return true
	case ForceFalse:
		return false
	default:
		return current
	}
}

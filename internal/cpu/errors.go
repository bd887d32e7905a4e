package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOpcode indicates an opcode that does not exist on the SM83.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrFaulted indicates Step was called after a fatal decode failure.
	ErrFaulted = errors.New("cpu faulted")
)

// DecodeError reports an opcode that is absent from the decode tables.
// Execution cannot continue past it: the length of the unknown instruction
// is unknowable, so every later fetch would be misaligned.
type DecodeError struct {
	PC       uint16
	Opcode   uint8
	Prefixed bool
}

func (e *DecodeError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("invalid opcode 0xCB 0x%02X at 0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("invalid opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

// Is reports whether target is ErrInvalidOpcode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidOpcode
}

// PolicyViolation reports a flag policy that the resolver cannot apply.
// It only arises from a broken opcode table.
type PolicyViolation struct {
	Flag     string
	Mnemonic Mnemonic
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("%s: flag %s cannot be data-dependent", e.Mnemonic, e.Flag)
}

package cpu

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// The decode tables are built from machine-readable opcode references
// rather than written out as Go literals. See opcodes.txt for the format.
var (
	//go:embed opcodes.txt
	plainReference string

	//go:embed opcodes_cb.txt
	prefixedReference string
)

// PrefixOpcode selects the CB table for the following byte.
const PrefixOpcode = 0xCB

var (
	plainTable    = mustParseTable(plainReference, false)
	prefixedTable = mustParseTable(prefixedReference, true)
)

var errMalformed = errors.New("malformed opcode reference")

// Decode returns the instruction for an opcode byte. ok is false for the
// holes in the SM83 opcode space; callers must treat that as fatal.
func Decode(opcode uint8, prefixed bool) (Instruction, bool) {
	in := table(prefixed)[opcode]
	if in == nil {
		return Instruction{}, false
	}
	return *in, true
}

// Length returns the encoded size of an instruction in bytes, including the
// prefix byte for prefixed instructions. It returns 0 for invalid opcodes.
func Length(opcode uint8, prefixed bool) int {
	if in := table(prefixed)[opcode]; in != nil {
		return int(in.Length)
	}
	return 0
}

// Cycles returns the static cycle count of an instruction. It returns 0
// for invalid opcodes.
func Cycles(opcode uint8, prefixed bool) int {
	if in := table(prefixed)[opcode]; in != nil {
		return int(in.Cycles)
	}
	return 0
}

func table(prefixed bool) *[256]*Instruction {
	if prefixed {
		return &prefixedTable
	}
	return &plainTable
}

func mustParseTable(ref string, prefixed bool) [256]*Instruction {
	t, err := parseTable(ref, prefixed)
	if err != nil {
		panic(err)
	}
	return t
}

// parseTable builds a 256-entry table from a reference listing.
func parseTable(ref string, prefixed bool) ([256]*Instruction, error) {
	var t [256]*Instruction
	for n, line := range strings.Split(ref, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		in, err := parseLine(line, prefixed)
		if err != nil {
			return t, fmt.Errorf("line %d: %w", n+1, err)
		}
		if t[in.Opcode] != nil {
			return t, fmt.Errorf("line %d: %w: duplicate opcode 0x%02X", n+1, errMalformed, in.Opcode)
		}
		t[in.Opcode] = in
	}
	return t, nil
}

// parseLine parses "opcode length cycles Z N H C mnemonic [operands]".
func parseLine(line string, prefixed bool) (*Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) < 8 || len(fields) > 9 {
		return nil, fmt.Errorf("%w: %q", errMalformed, line)
	}

	op, err := strconv.ParseUint(fields[0], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: opcode %q", errMalformed, fields[0])
	}
	length, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: length %q", errMalformed, fields[1])
	}
	taken, notTaken, err := parseCycles(fields[2])
	if err != nil {
		return nil, err
	}
	policy, err := parsePolicy(fields[3:7])
	if err != nil {
		return nil, err
	}

	m, ok := mnemonicByName[fields[7]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown mnemonic %q", errMalformed, fields[7])
	}
	if err := policy.validate(m); err != nil {
		return nil, err
	}

	in := &Instruction{
		Mnemonic:       m,
		Flags:          policy,
		Opcode:         uint8(op),
		Prefixed:       prefixed,
		Length:         uint8(length),
		Cycles:         taken,
		CyclesNotTaken: notTaken,
		text:           strings.Join(fields[7:], " "),
	}

	var operands []string
	if len(fields) == 9 {
		operands = strings.Split(fields[8], ",")
	}
	if err := in.bindOperands(operands); err != nil {
		return nil, fmt.Errorf("%s: %w", in.text, err)
	}

	want := 1 + in.Dst.immediateBytes() + in.Src.immediateBytes()
	if prefixed {
		want++
	}
	if int(in.Length) != want {
		return nil, fmt.Errorf("%w: %s: length %d, operands imply %d", errMalformed, in.text, in.Length, want)
	}
	return in, nil
}

func parseCycles(s string) (taken, notTaken uint8, err error) {
	a, b, split := strings.Cut(s, "/")
	t, err := strconv.ParseUint(a, 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: cycles %q", errMalformed, s)
	}
	if !split {
		return uint8(t), uint8(t), nil
	}
	nt, err := strconv.ParseUint(b, 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: cycles %q", errMalformed, s)
	}
	return uint8(t), uint8(nt), nil
}

func parsePolicy(codes []string) (Policy, error) {
	var rules [4]FlagRule
	for i, code := range codes {
		switch code {
		case "-":
			rules[i] = NoChange
		case "0":
			rules[i] = ForceFalse
		case "1":
			rules[i] = ForceTrue
		case "Z", "N", "H", "C":
			rules[i] = DataDependent
		default:
			return Policy{}, fmt.Errorf("%w: flag code %q", errMalformed, code)
		}
	}
	return Policy{Zero: rules[0], Subtract: rules[1], HalfCarry: rules[2], Carry: rules[3]}, nil
}

// bindOperands places the written operands into Cond, Dst and Src.
func (in *Instruction) bindOperands(ops []string) error {
	switch in.Mnemonic {
	case JP, JR, CALL, RET:
		// A leading condition is only a condition when something follows
		// it, or when the instruction is RET.
		if len(ops) > 0 && (len(ops) == 2 || in.Mnemonic == RET) {
			if cond, ok := conditionByName[ops[0]]; ok {
				in.Cond = cond
				ops = ops[1:]
			}
		}
	case SUB, AND, XOR, OR, CP:
		if len(ops) == 1 {
			ops = []string{"A", ops[0]}
		}
	case BIT, RES, SET:
		if len(ops) != 2 {
			return fmt.Errorf("%w: want bit,target", errMalformed)
		}
		bit, err := strconv.ParseUint(ops[0], 10, 3)
		if err != nil {
			return fmt.Errorf("%w: bit %q", errMalformed, ops[0])
		}
		target, err := parseOperand(ops[1])
		if err != nil {
			return err
		}
		in.Dst = target
		in.Src = Operand{Mode: ModeConst, Value: uint16(bit)}
		return nil
	case RST:
		if len(ops) != 1 || !strings.HasSuffix(ops[0], "H") {
			return fmt.Errorf("%w: want vector", errMalformed)
		}
		vec, err := strconv.ParseUint(strings.TrimSuffix(ops[0], "H"), 16, 8)
		if err != nil || vec&^0x38 != 0 {
			return fmt.Errorf("%w: vector %q", errMalformed, ops[0])
		}
		in.Dst = Operand{Mode: ModeConst, Value: uint16(vec)}
		return nil
	}

	if len(ops) > 2 {
		return fmt.Errorf("%w: too many operands", errMalformed)
	}
	for i, tok := range ops {
		o, err := parseOperand(tok)
		if err != nil {
			return err
		}
		if i == 0 {
			in.Dst = o
		} else {
			in.Src = o
		}
	}
	return nil
}

func parseOperand(tok string) (Operand, error) {
	o, ok := operandByName[tok]
	if !ok {
		return Operand{}, fmt.Errorf("%w: operand %q", errMalformed, tok)
	}
	return o, nil
}

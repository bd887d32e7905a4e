package cpu

import (
	"fmt"
	"strings"
)

// Disassemble decodes the instruction at addr without executing it and
// returns its text with immediates filled in, plus its length in bytes.
// Invalid opcodes are rendered as a data byte of length 1.
func Disassemble(m Memory, addr uint16) (string, int) {
	opcode := m.Read(addr)
	prefixed := opcode == PrefixOpcode
	operands := addr + 1
	if prefixed {
		opcode = m.Read(addr + 1)
		operands = addr + 2
	}

	in, ok := Decode(opcode, prefixed)
	if !ok {
		return fmt.Sprintf("DB $%02X", m.Read(addr)), 1
	}

	name, args, found := strings.Cut(in.text, " ")
	if !found {
		return name, int(in.Length)
	}

	next := addr + uint16(in.Length)
	imm8 := m.Read(operands)
	imm16 := ReadWord(m, operands)

	parts := strings.Split(args, ",")
	for i, p := range parts {
		switch p {
		case "d8":
			parts[i] = fmt.Sprintf("$%02X", imm8)
		case "d16", "a16":
			parts[i] = fmt.Sprintf("$%04X", imm16)
		case "(a16)":
			parts[i] = fmt.Sprintf("($%04X)", imm16)
		case "(a8)":
			parts[i] = fmt.Sprintf("($FF%02X)", imm8)
		case "r8":
			if in.Mnemonic == JR {
				parts[i] = fmt.Sprintf("$%04X", next+signExtend(imm8))
			} else {
				parts[i] = fmt.Sprintf("%+d", int8(imm8)) //nolint:gosec // G115: Intentional signed conversion
			}
		case "SP+r8":
			parts[i] = fmt.Sprintf("SP%+d", int8(imm8)) //nolint:gosec // G115: Intentional signed conversion
		}
	}
	return name + " " + strings.Join(parts, ","), int(in.Length)
}

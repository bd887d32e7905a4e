package cpu

import "fmt"

// Mode is an operand addressing mode.
type Mode uint8

// Addressing modes.
const (
	ModeNone        Mode = iota
	ModeReg8             // B, C, D, E, H, L, A
	ModeReg16            // AF, BC, DE, HL, SP
	ModeIndirect         // (BC), (DE), (HL)
	ModeIndirectInc      // (HL+)
	ModeIndirectDec      // (HL-)
	ModeImm8             // d8
	ModeImm16            // d16, a16
	ModeSigned8          // r8
	ModeHighImm          // (a8): 0xFF00 + d8
	ModeHighC            // (C): 0xFF00 + C
	ModeAbsolute         // (a16)
	ModeSPOffset         // SP+r8
	ModeConst            // RST vector or bit index
)

// Operand describes where an instruction reads or writes a value.
//
// Operands are plain values; Read and Write dispatch on Mode. Immediate
// modes consume bytes from the instruction stream as they are read.
type Operand struct {
	Mode  Mode
	Reg   Reg8
	Pair  Reg16
	Value uint16
}

// Wide reports whether the operand carries a 16-bit value.
func (o Operand) Wide() bool {
	switch o.Mode {
	case ModeReg16, ModeImm16, ModeSPOffset:
		return true
	}
	return false
}

// Memory reports whether the operand addresses the bus.
func (o Operand) Memory() bool {
	switch o.Mode {
	case ModeIndirect, ModeIndirectInc, ModeIndirectDec, ModeHighImm, ModeHighC, ModeAbsolute:
		return true
	}
	return false
}

// immediateBytes is the number of instruction-stream bytes the operand consumes.
func (o Operand) immediateBytes() int {
	switch o.Mode {
	case ModeImm8, ModeSigned8, ModeHighImm, ModeSPOffset:
		return 1
	case ModeImm16, ModeAbsolute:
		return 2
	}
	return 0
}

// Read returns the operand's current value.
//
// (HL+) and (HL-) adjust HL after the access. ModeSigned8 returns the
// sign-extended displacement and ModeSPOffset returns SP plus that
// displacement.
func (o Operand) Read(c *CPU) uint16 {
	r := c.Registers
	switch o.Mode {
	case ModeReg8:
		return uint16(r.Get8(o.Reg))
	case ModeReg16:
		return r.Get16(o.Pair)
	case ModeIndirect:
		return uint16(c.Memory.Read(r.Get16(o.Pair)))
	case ModeIndirectInc:
		addr := r.HL()
		r.SetHL(addr + 1)
		return uint16(c.Memory.Read(addr))
	case ModeIndirectDec:
		addr := r.HL()
		r.SetHL(addr - 1)
		return uint16(c.Memory.Read(addr))
	case ModeImm8:
		return uint16(c.fetchByte())
	case ModeImm16:
		return c.fetchWord()
	case ModeSigned8:
		return signExtend(c.fetchByte())
	case ModeHighImm:
		return uint16(c.Memory.Read(0xFF00 | uint16(c.fetchByte())))
	case ModeHighC:
		return uint16(c.Memory.Read(0xFF00 | uint16(r.C)))
	case ModeAbsolute:
		return uint16(c.Memory.Read(c.fetchWord()))
	case ModeSPOffset:
		return r.SP + signExtend(c.fetchByte())
	case ModeConst:
		return o.Value
	}
	panic(fmt.Sprintf("read from operand mode %d", o.Mode))
}

// Write stores v and returns the value actually stored after truncation
// to the operand's width (and, for AF, after clearing the low nibble).
func (o Operand) Write(c *CPU, v uint16) uint16 {
	r := c.Registers
	b := uint8(v) //nolint:gosec // G115: byte-wide destinations keep the low byte
	switch o.Mode {
	case ModeReg8:
		r.Set8(o.Reg, b)
		return uint16(b)
	case ModeReg16:
		r.Set16(o.Pair, v)
		return r.Get16(o.Pair)
	case ModeIndirect:
		c.Memory.Write(r.Get16(o.Pair), b)
		return uint16(b)
	case ModeIndirectInc:
		addr := r.HL()
		r.SetHL(addr + 1)
		c.Memory.Write(addr, b)
		return uint16(b)
	case ModeIndirectDec:
		addr := r.HL()
		r.SetHL(addr - 1)
		c.Memory.Write(addr, b)
		return uint16(b)
	case ModeHighImm:
		c.Memory.Write(0xFF00|uint16(c.fetchByte()), b)
		return uint16(b)
	case ModeHighC:
		c.Memory.Write(0xFF00|uint16(r.C), b)
		return uint16(b)
	case ModeAbsolute:
		c.Memory.Write(c.fetchWord(), b)
		return uint16(b)
	}
	panic(fmt.Sprintf("write to operand mode %d", o.Mode))
}

func signExtend(b uint8) uint16 {
	return uint16(int16(int8(b))) //nolint:gosec // G115: Intentional signed conversion for displacement
}

// operandByName maps the fixed operand spellings of the opcode reference.
var operandByName = map[string]Operand{
	"A":     {Mode: ModeReg8, Reg: RegA},
	"B":     {Mode: ModeReg8, Reg: RegB},
	"C":     {Mode: ModeReg8, Reg: RegC},
	"D":     {Mode: ModeReg8, Reg: RegD},
	"E":     {Mode: ModeReg8, Reg: RegE},
	"H":     {Mode: ModeReg8, Reg: RegH},
	"L":     {Mode: ModeReg8, Reg: RegL},
	"AF":    {Mode: ModeReg16, Pair: RegAF},
	"BC":    {Mode: ModeReg16, Pair: RegBC},
	"DE":    {Mode: ModeReg16, Pair: RegDE},
	"HL":    {Mode: ModeReg16, Pair: RegHL},
	"SP":    {Mode: ModeReg16, Pair: RegSP},
	"(BC)":  {Mode: ModeIndirect, Pair: RegBC},
	"(DE)":  {Mode: ModeIndirect, Pair: RegDE},
	"(HL)":  {Mode: ModeIndirect, Pair: RegHL},
	"(HL+)": {Mode: ModeIndirectInc, Pair: RegHL},
	"(HL-)": {Mode: ModeIndirectDec, Pair: RegHL},
	"(C)":   {Mode: ModeHighC},
	"(a8)":  {Mode: ModeHighImm},
	"(a16)": {Mode: ModeAbsolute},
	"d8":    {Mode: ModeImm8},
	"d16":   {Mode: ModeImm16},
	"a16":   {Mode: ModeImm16},
	"r8":    {Mode: ModeSigned8},
	"SP+r8": {Mode: ModeSPOffset},
}

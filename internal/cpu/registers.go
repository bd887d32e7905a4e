package cpu

// Flag bit positions when the flags are packed into the low byte of AF.
const (
	FlagZ uint8 = 0b10000000 // Zero flag (bit 7)
	FlagN uint8 = 0b01000000 // Subtraction flag (bit 6)
	FlagH uint8 = 0b00100000 // Half-carry flag (bit 5)
	FlagC uint8 = 0b00010000 // Carry flag (bit 4)
)

// Flags is the SM83 status-flag record.
//
// Only the four documented flags are stored, so the packed byte always has
// a zero low nibble.
type Flags struct {
	Zero      bool
	Subtract  bool
	HalfCarry bool
	Carry     bool
}

// Byte packs the flags into the F register layout.
func (f Flags) Byte() uint8 {
	var b uint8
	if f.Zero {
		b |= FlagZ
	}
	if f.Subtract {
		b |= FlagN
	}
	if f.HalfCarry {
		b |= FlagH
	}
	if f.Carry {
		b |= FlagC
	}
	return b
}

// FlagsFromByte unpacks an F register value. The low nibble is discarded.
func FlagsFromByte(b uint8) Flags {
	return Flags{
		Zero:      b&FlagZ != 0,
		Subtract:  b&FlagN != 0,
		HalfCarry: b&FlagH != 0,
		Carry:     b&FlagC != 0,
	}
}

// String renders the flags as "ZNHC" with unset flags shown as '-'.
func (f Flags) String() string {
	out := []byte("----")
	if f.Zero {
		out[0] = 'Z'
	}
	if f.Subtract {
		out[1] = 'N'
	}
	if f.HalfCarry {
		out[2] = 'H'
	}
	if f.Carry {
		out[3] = 'C'
	}
	return string(out)
}

// Registers represents the SM83 CPU registers.
type Registers struct {
	A  uint8  // Accumulator
	F  Flags  // Flags
	B  uint8  // General purpose
	C  uint8  // General purpose
	D  uint8  // General purpose
	E  uint8  // General purpose
	H  uint8  // General purpose (high byte of HL pointer)
	L  uint8  // General purpose (low byte of HL pointer)
	SP uint16 // Stack pointer
	PC uint16 // Program counter
}

// NewRegisters creates a new Registers instance with the DMG post-boot values.
func NewRegisters() *Registers {
	return &Registers{
		A:  0x01,
		F:  FlagsFromByte(0xB0),
		B:  0x00,
		C:  0x13,
		D:  0x00,
		E:  0xD8,
		H:  0x01,
		L:  0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
	}
}

// 16-bit register pair getters

// AF returns the 16-bit AF register pair.
func (r *Registers) AF() uint16 {
	return uint16(r.A)<<8 | uint16(r.F.Byte())
}

// BC returns the 16-bit BC register pair.
func (r *Registers) BC() uint16 {
	return uint16(r.B)<<8 | uint16(r.C)
}

// DE returns the 16-bit DE register pair.
func (r *Registers) DE() uint16 {
	return uint16(r.D)<<8 | uint16(r.E)
}

// HL returns the 16-bit HL register pair.
func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

// 16-bit register pair setters

// SetAF sets the 16-bit AF register pair. The low nibble of F is forced to zero.
func (r *Registers) SetAF(value uint16) {
	r.A = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.F = FlagsFromByte(uint8(value))
}

// SetBC sets the 16-bit BC register pair.
func (r *Registers) SetBC(value uint16) {
	r.B = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.C = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetDE sets the 16-bit DE register pair.
func (r *Registers) SetDE(value uint16) {
	r.D = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.E = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetHL sets the 16-bit HL register pair.
func (r *Registers) SetHL(value uint16) {
	r.H = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.L = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// Reg8 names an 8-bit register.
type Reg8 uint8

// 8-bit registers in the order used by the opcode encoding (with (HL) at 6 omitted).
const (
	RegB Reg8 = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegA
)

var reg8Names = [...]string{"B", "C", "D", "E", "H", "L", "A"}

func (r Reg8) String() string {
	if int(r) < len(reg8Names) {
		return reg8Names[r]
	}
	return "?"
}

// Reg16 names a 16-bit register pair or SP.
type Reg16 uint8

// 16-bit registers.
const (
	RegAF Reg16 = iota
	RegBC
	RegDE
	RegHL
	RegSP
)

var reg16Names = [...]string{"AF", "BC", "DE", "HL", "SP"}

func (r Reg16) String() string {
	if int(r) < len(reg16Names) {
		return reg16Names[r]
	}
	return "?"
}

// Get8 returns the value of an 8-bit register.
func (r *Registers) Get8(reg Reg8) uint8 {
	switch reg {
	case RegA:
		return r.A
	case RegB:
		return r.B
	case RegC:
		return r.C
	case RegD:
		return r.D
	case RegE:
		return r.E
	case RegH:
		return r.H
	case RegL:
		return r.L
	}
	return 0
}

// Set8 sets an 8-bit register.
func (r *Registers) Set8(reg Reg8, value uint8) {
	switch reg {
	case RegA:
		r.A = value
	case RegB:
		r.B = value
	case RegC:
		r.C = value
	case RegD:
		r.D = value
	case RegE:
		r.E = value
	case RegH:
		r.H = value
	case RegL:
		r.L = value
	}
}

// Get16 returns the value of a register pair or SP.
func (r *Registers) Get16(reg Reg16) uint16 {
	switch reg {
	case RegAF:
		return r.AF()
	case RegBC:
		return r.BC()
	case RegDE:
		return r.DE()
	case RegHL:
		return r.HL()
	case RegSP:
		return r.SP
	}
	return 0
}

// Set16 sets a register pair or SP.
func (r *Registers) Set16(reg Reg16, value uint16) {
	switch reg {
	case RegAF:
		r.SetAF(value)
	case RegBC:
		r.SetBC(value)
	case RegDE:
		r.SetDE(value)
	case RegHL:
		r.SetHL(value)
	case RegSP:
		r.SP = value
	}
}

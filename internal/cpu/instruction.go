package cpu

// Mnemonic identifies the operation an Instruction performs.
type Mnemonic uint8

// SM83 mnemonics. PREFIX is the 0xCB escape in the unprefixed table.
const (
	NOP Mnemonic = iota
	LD
	LDH
	INC
	DEC
	ADD
	ADC
	SUB
	SBC
	AND
	XOR
	OR
	CP
	RLCA
	RRCA
	RLA
	RRA
	DAA
	CPL
	SCF
	CCF
	JR
	JP
	CALL
	RET
	RETI
	RST
	PUSH
	POP
	HALT
	STOP
	DI
	EI
	PREFIX
	RLC
	RRC
	RL
	RR
	SLA
	SRA
	SWAP
	SRL
	BIT
	RES
	SET

	mnemonicCount
)

var mnemonicNames = [mnemonicCount]string{
	NOP: "NOP", LD: "LD", LDH: "LDH", INC: "INC", DEC: "DEC",
	ADD: "ADD", ADC: "ADC", SUB: "SUB", SBC: "SBC", AND: "AND", XOR: "XOR", OR: "OR", CP: "CP",
	RLCA: "RLCA", RRCA: "RRCA", RLA: "RLA", RRA: "RRA",
	DAA: "DAA", CPL: "CPL", SCF: "SCF", CCF: "CCF",
	JR: "JR", JP: "JP", CALL: "CALL", RET: "RET", RETI: "RETI", RST: "RST",
	PUSH: "PUSH", POP: "POP",
	HALT: "HALT", STOP: "STOP", DI: "DI", EI: "EI", PREFIX: "PREFIX",
	RLC: "RLC", RRC: "RRC", RL: "RL", RR: "RR", SLA: "SLA", SRA: "SRA", SWAP: "SWAP", SRL: "SRL",
	BIT: "BIT", RES: "RES", SET: "SET",
}

var mnemonicByName = func() map[string]Mnemonic {
	m := make(map[string]Mnemonic, mnemonicCount)
	for i, name := range mnemonicNames {
		m[name] = Mnemonic(i) //nolint:gosec // G115: index bounded by mnemonicCount
	}
	return m
}()

func (m Mnemonic) String() string {
	if m < mnemonicCount {
		return mnemonicNames[m]
	}
	return "???"
}

// Condition is the branch condition of JP, JR, CALL and RET.
type Condition uint8

// Branch conditions.
const (
	Always Condition = iota
	CondNZ
	CondZ
	CondNC
	CondC
)

var conditionByName = map[string]Condition{
	"NZ": CondNZ,
	"Z":  CondZ,
	"NC": CondNC,
	"C":  CondC,
}

func (c Condition) String() string {
	switch c {
	case CondNZ:
		return "NZ"
	case CondZ:
		return "Z"
	case CondNC:
		return "NC"
	case CondC:
		return "C"
	}
	return ""
}

// holds reports whether the condition is met by the given flags.
func (c Condition) holds(f Flags) bool {
	switch c {
	case CondNZ:
		return !f.Zero
	case CondZ:
		return f.Zero
	case CondNC:
		return !f.Carry
	case CondC:
		return f.Carry
	}
	return true
}

// Instruction is one decoded opcode.
//
// Dst and Src are the operands in the sense of the operation: for the
// single-operand ALU forms (SUB, AND, XOR, OR, CP) Dst is the accumulator,
// and for BIT/RES/SET Dst is the target and Src the bit index. Unused
// operands have ModeNone. Instructions are immutable once the tables are
// built.
type Instruction struct {
	Mnemonic Mnemonic
	Cond     Condition
	Dst      Operand
	Src      Operand
	Flags    Policy

	Opcode   uint8
	Prefixed bool

	// Length includes the 0xCB prefix for prefixed instructions.
	Length uint8
	// Cycles is the static cycle count (the taken figure for conditional
	// branches). CyclesNotTaken differs from Cycles only for conditional
	// branches and is informational.
	Cycles         uint8
	CyclesNotTaken uint8

	text string
}

// String returns the instruction in reference syntax, e.g. "LD B,d8".
func (in Instruction) String() string {
	return in.text
}

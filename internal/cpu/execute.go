package cpu

import "fmt"

// execute runs one decoded instruction and resolves its flags.
//
//nolint:gocyclo // One case per mnemonic
func (c *CPU) execute(in *Instruction) {
	var result uint16

	switch in.Mnemonic {
	case NOP, PREFIX:
	case LD, LDH:
		c.ld(in)
	case INC:
		result = c.incDec(in, c.inc8, 1)
	case DEC:
		result = c.incDec(in, c.dec8, 0xFFFF)
	case ADD:
		result = c.add(in)
	case ADC, SUB, SBC, AND, XOR, OR, CP:
		result = c.alu(in)
	case RLCA:
		c.Registers.A = c.rlc(c.Registers.A)
	case RRCA:
		c.Registers.A = c.rrc(c.Registers.A)
	case RLA:
		c.Registers.A = c.rl(c.Registers.A)
	case RRA:
		c.Registers.A = c.rr(c.Registers.A)
	case DAA:
		result = uint16(c.daa())
	case CPL:
		c.Registers.A = ^c.Registers.A
	case SCF:
	case CCF:
		c.Registers.F.Carry = !c.Registers.F.Carry
	case JP:
		target := in.Dst.Read(c)
		if in.Cond.holds(c.Registers.F) {
			c.jump(target)
		}
	case JR:
		offset := in.Dst.Read(c)
		if in.Cond.holds(c.Registers.F) {
			c.jump(c.next(in) + offset)
		}
	case CALL:
		target := in.Dst.Read(c)
		if in.Cond.holds(c.Registers.F) {
			c.push(c.next(in))
			c.jump(target)
		}
	case RET:
		if in.Cond.holds(c.Registers.F) {
			c.jump(c.pop())
		}
	case RETI:
		c.jump(c.pop())
		c.IME = true
	case RST:
		c.push(c.next(in))
		c.jump(in.Dst.Read(c))
	case PUSH:
		c.push(in.Dst.Read(c))
	case POP:
		in.Dst.Write(c, c.pop())
	case HALT:
		c.halted = true
	case STOP:
		c.stopped = true
	case DI:
		c.IME = false
	case EI:
		c.IME = true
	case RLC, RRC, RL, RR, SLA, SRA, SWAP, SRL:
		result = c.shift(in)
	case BIT:
		result = in.Dst.Read(c) & (1 << in.Src.Read(c))
	case RES:
		in.Dst.Write(c, in.Dst.Read(c)&^(1<<in.Src.Read(c)))
	case SET:
		in.Dst.Write(c, in.Dst.Read(c)|1<<in.Src.Read(c))
	default:
		panic(fmt.Sprintf("no handler for %s", in.Mnemonic))
	}

	c.Registers.F.resolve(in.Flags, in.Mnemonic, result)
}

// next is the address of the instruction following in.
func (c *CPU) next(in *Instruction) uint16 {
	return c.Registers.PC + uint16(in.Length)
}

// ld handles every LD and LDH form.
func (c *CPU) ld(in *Instruction) {
	switch {
	case in.Dst.Mode == ModeAbsolute && in.Src.Wide():
		// LD (a16), SP
		WriteWord(c.Memory, c.fetchWord(), in.Src.Read(c))
	case in.Src.Mode == ModeSPOffset:
		// LD HL, SP+r8
		sp := c.Registers.SP
		value := in.Src.Read(c)
		c.offsetFlags(sp, uint8(value-sp)) //nolint:gosec // G115: low byte is the displacement
		in.Dst.Write(c, value)
	default:
		in.Dst.Write(c, in.Src.Read(c))
	}
}

// incDec handles INC and DEC. The 16-bit forms touch no flags.
func (c *CPU) incDec(in *Instruction, op8 func(uint8) uint8, delta uint16) uint16 {
	value := in.Dst.Read(c)
	if in.Dst.Wide() {
		return in.Dst.Write(c, value+delta)
	}
	return in.Dst.Write(c, uint16(op8(uint8(value)))) //nolint:gosec // G115: 8-bit operand
}

// add handles ADD A,x, ADD HL,rr and ADD SP,r8.
func (c *CPU) add(in *Instruction) uint16 {
	switch {
	case in.Src.Mode == ModeSigned8:
		sp := in.Dst.Read(c)
		offset := in.Src.Read(c)
		c.offsetFlags(sp, uint8(offset)) //nolint:gosec // G115: low byte of the displacement
		return in.Dst.Write(c, sp+offset)
	case in.Dst.Wide():
		return in.Dst.Write(c, c.add16(in.Dst.Read(c), in.Src.Read(c)))
	default:
		a := uint8(in.Dst.Read(c)) //nolint:gosec // G115: 8-bit operand
		b := uint8(in.Src.Read(c)) //nolint:gosec // G115: 8-bit operand
		return in.Dst.Write(c, uint16(c.add8(a, b, false)))
	}
}

// alu handles the 8-bit accumulator operations other than ADD.
// CP computes the subtraction and discards it.
func (c *CPU) alu(in *Instruction) uint16 {
	a := uint8(in.Dst.Read(c)) //nolint:gosec // G115: 8-bit operand
	b := uint8(in.Src.Read(c)) //nolint:gosec // G115: 8-bit operand

	var result uint8
	switch in.Mnemonic {
	case ADC:
		result = c.add8(a, b, true)
	case SUB, CP:
		result = c.sub8(a, b, false)
	case SBC:
		result = c.sub8(a, b, true)
	case AND:
		result = a & b
	case XOR:
		result = a ^ b
	case OR:
		result = a | b
	}

	if in.Mnemonic == CP {
		return uint16(result)
	}
	return in.Dst.Write(c, uint16(result))
}

// shift handles the CB rotate and shift family.
func (c *CPU) shift(in *Instruction) uint16 {
	value := uint8(in.Dst.Read(c)) //nolint:gosec // G115: 8-bit operand

	var result uint8
	switch in.Mnemonic {
	case RLC:
		result = c.rlc(value)
	case RRC:
		result = c.rrc(value)
	case RL:
		result = c.rl(value)
	case RR:
		result = c.rr(value)
	case SLA:
		result = c.sla(value)
	case SRA:
		result = c.sra(value)
	case SWAP:
		result = c.swap(value)
	case SRL:
		result = c.srl(value)
	}

	return in.Dst.Write(c, uint16(result))
}

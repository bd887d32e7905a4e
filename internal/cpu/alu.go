package cpu

// Arithmetic helpers. Each computes its result with wrapping arithmetic and
// sets the half-carry and carry flags it defines; zero and subtract are
// left to the instruction's flag policy.

// add8 performs 8-bit addition, optionally adding the carry flag.
func (c *CPU) add8(a, b uint8, withCarry bool) uint8 {
	carry := c.carryIn(withCarry)
	result := a + b + carry

	c.Registers.F.HalfCarry = (a&0x0F)+(b&0x0F)+carry > 0x0F
	c.Registers.F.Carry = uint16(a)+uint16(b)+uint16(carry) > 0xFF

	return result
}

// sub8 performs 8-bit subtraction, optionally subtracting the carry flag.
func (c *CPU) sub8(a, b uint8, withCarry bool) uint8 {
	carry := c.carryIn(withCarry)
	result := a - b - carry

	c.Registers.F.HalfCarry = (a & 0x0F) < (b&0x0F)+carry
	c.Registers.F.Carry = uint16(a) < uint16(b)+uint16(carry)

	return result
}

func (c *CPU) carryIn(use bool) uint8 {
	if use && c.Registers.F.Carry {
		return 1
	}
	return 0
}

// add16 performs 16-bit addition (ADD HL, rr): carries out of bits 11 and 15.
func (c *CPU) add16(a, b uint16) uint16 {
	c.Registers.F.HalfCarry = (a&0x0FFF)+(b&0x0FFF) > 0x0FFF
	c.Registers.F.Carry = uint32(a)+uint32(b) > 0xFFFF
	return a + b
}

// offsetFlags sets H and C for SP plus a signed displacement. Both come
// from the unsigned addition of the low bytes.
func (c *CPU) offsetFlags(sp uint16, offset uint8) {
	low := uint8(sp) //nolint:gosec // G115: Intentional byte extraction
	c.Registers.F.HalfCarry = (low&0x0F)+(offset&0x0F) > 0x0F
	c.Registers.F.Carry = uint16(low)+uint16(offset) > 0xFF
}

// inc8 increments an 8-bit value. Carry is not affected.
func (c *CPU) inc8(value uint8) uint8 {
	c.Registers.F.HalfCarry = value&0x0F == 0x0F
	return value + 1
}

// dec8 decrements an 8-bit value. Carry is not affected.
func (c *CPU) dec8(value uint8) uint8 {
	c.Registers.F.HalfCarry = value&0x0F == 0
	return value - 1
}

// Rotate and shift helpers. Carry receives the bit shifted out.

func (c *CPU) rlc(value uint8) uint8 {
	c.Registers.F.Carry = value&0x80 != 0
	return value<<1 | value>>7
}

func (c *CPU) rrc(value uint8) uint8 {
	c.Registers.F.Carry = value&0x01 != 0
	return value>>1 | value<<7
}

// rl rotates left through carry.
func (c *CPU) rl(value uint8) uint8 {
	in := c.carryIn(true)
	c.Registers.F.Carry = value&0x80 != 0
	return value<<1 | in
}

// rr rotates right through carry.
func (c *CPU) rr(value uint8) uint8 {
	in := c.carryIn(true)
	c.Registers.F.Carry = value&0x01 != 0
	return value>>1 | in<<7
}

func (c *CPU) sla(value uint8) uint8 {
	c.Registers.F.Carry = value&0x80 != 0
	return value << 1
}

// sra shifts right arithmetic (preserves sign bit).
func (c *CPU) sra(value uint8) uint8 {
	c.Registers.F.Carry = value&0x01 != 0
	return value>>1 | value&0x80
}

func (c *CPU) srl(value uint8) uint8 {
	c.Registers.F.Carry = value&0x01 != 0
	return value >> 1
}

// swap swaps upper and lower nibbles.
func (c *CPU) swap(value uint8) uint8 {
	c.Registers.F.Carry = false
	return value<<4 | value>>4
}

// daa performs the BCD correction of A after an addition or subtraction.
func (c *CPU) daa() uint8 {
	f := &c.Registers.F
	a := c.Registers.A

	if !f.Subtract {
		// After addition
		if f.Carry || a > 0x99 {
			a += 0x60
			f.Carry = true
		}
		if f.HalfCarry || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		// After subtraction
		if f.Carry {
			a -= 0x60
		}
		if f.HalfCarry {
			a -= 0x06
		}
	}

	c.Registers.A = a
	return a
}

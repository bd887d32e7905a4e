// Package cpu implements the Sharp SM83 CPU emulation for the Game Boy.
package cpu

import (
	"fmt"
	"math/bits"
)

// Memory interface for CPU to access memory bus.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// ReadWord reads a little-endian 16-bit value.
func ReadWord(m Memory, addr uint16) uint16 {
	low := uint16(m.Read(addr))
	high := uint16(m.Read(addr + 1))
	return high<<8 | low
}

// WriteWord writes a little-endian 16-bit value.
func WriteWord(m Memory, addr uint16, value uint16) {
	m.Write(addr, uint8(value))      //nolint:gosec // G115: Intentional byte extraction from 16-bit value
	m.Write(addr+1, uint8(value>>8)) //nolint:gosec // G115: Intentional byte extraction from 16-bit value
}

// Interrupt register addresses.
const (
	AddrIF uint16 = 0xFF0F
	AddrIE uint16 = 0xFFFF
)

// Interrupt sources in priority order.
const (
	IntVBlank uint8 = iota
	IntLCDStat
	IntTimer
	IntSerial
	IntJoypad
)

// CPU represents the Sharp SM83 CPU.
type CPU struct {
	Registers *Registers
	Memory    Memory

	// Interrupt master enable flag
	IME bool

	// Halt and stop states
	halted  bool
	stopped bool

	// Cycle counter
	Cycles uint64

	// Per-step decode state: cursor is the next instruction-stream byte
	// for immediate operands, jumped records a PC redirect.
	cursor uint16
	jumped bool

	fault error
}

// New creates a new CPU instance.
func New(mem Memory) *CPU {
	return &CPU{
		Registers: NewRegisters(),
		Memory:    mem,
	}
}

// Halted reports whether HALT is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether STOP is waiting for an interrupt.
func (c *CPU) Stopped() bool { return c.stopped }

// Fault returns the decode error that stopped the CPU, if any.
func (c *CPU) Fault() error { return c.fault }

// Step executes one instruction and returns cycles taken.
//
// An invalid opcode is fatal: Step returns a *DecodeError and every later
// call fails with ErrFaulted.
func (c *CPU) Step() (int, error) {
	if c.fault != nil {
		return 0, fmt.Errorf("%w: %w", ErrFaulted, c.fault)
	}

	if cycles, ok := c.serviceInterrupt(); ok {
		c.Cycles += uint64(cycles)
		return cycles, nil
	}

	// Handle halt state
	if c.halted || c.stopped {
		c.Cycles += 4
		return 4, nil
	}

	pc := c.Registers.PC
	opcode := c.Memory.Read(pc)
	prefixed := opcode == PrefixOpcode
	c.cursor = pc + 1
	if prefixed {
		opcode = c.Memory.Read(pc + 1)
		c.cursor = pc + 2
	}

	in, ok := Decode(opcode, prefixed)
	if !ok {
		c.fault = &DecodeError{PC: pc, Opcode: opcode, Prefixed: prefixed}
		return 0, c.fault
	}

	c.jumped = false
	c.execute(&in)
	if !c.jumped {
		c.Registers.PC = pc + uint16(in.Length)
	}

	cycles := int(in.Cycles)
	c.Cycles += uint64(cycles)
	return cycles, nil
}

// RequestInterrupt sets the interrupt's bit in IF.
func (c *CPU) RequestInterrupt(interrupt uint8) {
	c.Memory.Write(AddrIF, c.Memory.Read(AddrIF)|1<<interrupt)
}

// pendingInterrupts returns the enabled and requested interrupt bits.
func (c *CPU) pendingInterrupts() uint8 {
	return c.Memory.Read(AddrIE) & c.Memory.Read(AddrIF) & 0x1F
}

// serviceInterrupt wakes HALT/STOP on any pending interrupt and, when IME
// is set, dispatches the highest-priority one.
func (c *CPU) serviceInterrupt() (int, bool) {
	pending := c.pendingInterrupts()
	if pending == 0 {
		return 0, false
	}
	c.halted = false
	c.stopped = false
	if !c.IME {
		return 0, false
	}

	n := uint8(bits.TrailingZeros8(pending)) //nolint:gosec // G115: at most 7
	c.IME = false
	c.Memory.Write(AddrIF, c.Memory.Read(AddrIF)&^(1<<n))
	c.push(c.Registers.PC)
	c.Registers.PC = 0x0040 + uint16(n)*8
	return 20, true
}

// fetchByte reads the next instruction-stream byte for an immediate operand.
func (c *CPU) fetchByte() uint8 {
	value := c.Memory.Read(c.cursor)
	c.cursor++
	return value
}

// fetchWord reads the next little-endian immediate word.
func (c *CPU) fetchWord() uint16 {
	low := uint16(c.fetchByte())
	high := uint16(c.fetchByte())
	return high<<8 | low
}

// push pushes a 16-bit value onto the stack, high byte first.
func (c *CPU) push(value uint16) {
	c.Registers.SP--
	c.Memory.Write(c.Registers.SP, uint8(value>>8)) //nolint:gosec // G115: Intentional byte extraction from 16-bit value
	c.Registers.SP--
	c.Memory.Write(c.Registers.SP, uint8(value)) //nolint:gosec // G115: Intentional byte extraction from 16-bit value
}

// pop pops a 16-bit value from the stack, low byte first.
func (c *CPU) pop() uint16 {
	low := uint16(c.Memory.Read(c.Registers.SP))
	c.Registers.SP++
	high := uint16(c.Memory.Read(c.Registers.SP))
	c.Registers.SP++
	return high<<8 | low
}

// jump redirects PC and suppresses the post-execute length advance.
func (c *CPU) jump(addr uint16) {
	c.Registers.PC = addr
	c.jumped = true
}

// State is a snapshot of the CPU for tooling.
type State struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IME                    bool
	Halted                 bool
	Stopped                bool
	Cycles                 uint64
}

// State returns a snapshot of the registers and latches.
func (c *CPU) State() State {
	r := c.Registers
	return State{
		A: r.A, F: r.F.Byte(), B: r.B, C: r.C, D: r.D, E: r.E, H: r.H, L: r.L,
		SP: r.SP, PC: r.PC,
		IME:     c.IME,
		Halted:  c.halted,
		Stopped: c.stopped,
		Cycles:  c.Cycles,
	}
}

func (s State) String() string {
	return fmt.Sprintf("A:%02X F:%s BC:%02X%02X DE:%02X%02X HL:%02X%02X SP:%04X PC:%04X IME:%t",
		s.A, FlagsFromByte(s.F), s.B, s.C, s.D, s.E, s.H, s.L, s.SP, s.PC, s.IME)
}

// Package script drives an emulator from Lua.
//
// Scripts see these globals:
//
//	step([n])          execute n instructions (default 1), returns cycles
//	reg(name)          read A..L, AF, BC, DE, HL, SP or PC
//	setreg(name, v)    write a register
//	flag(name)         read Z, N, H or C as a boolean
//	peek(addr)         read a byte from the bus
//	poke(addr, v)      write a byte to the bus
//	disasm(addr)       instruction text and length at addr
//	cycles()           total cycles executed
//	serial()           serial output so far
//	print(...)         write to the engine's output
package script

import (
	"context"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/emulator"
)

// Engine is a Lua state bound to one emulator.
type Engine struct {
	emu *emulator.Emulator
	out io.Writer
	L   *lua.LState
}

var reg8ByName = map[string]cpu.Reg8{
	"A": cpu.RegA, "B": cpu.RegB, "C": cpu.RegC, "D": cpu.RegD,
	"E": cpu.RegE, "H": cpu.RegH, "L": cpu.RegL,
}

var reg16ByName = map[string]cpu.Reg16{
	"AF": cpu.RegAF, "BC": cpu.RegBC, "DE": cpu.RegDE, "HL": cpu.RegHL, "SP": cpu.RegSP,
}

// New creates an engine. print writes to out.
func New(emu *emulator.Emulator, out io.Writer) *Engine {
	e := &Engine{emu: emu, out: out, L: lua.NewState()}

	for name, fn := range map[string]lua.LGFunction{
		"step":   e.step,
		"reg":    e.reg,
		"setreg": e.setreg,
		"flag":   e.flag,
		"peek":   e.peek,
		"poke":   e.poke,
		"disasm": e.disasm,
		"cycles": e.cycles,
		"serial": e.serial,
		"print":  e.print,
	} {
		e.L.SetGlobal(name, e.L.NewFunction(fn))
	}
	return e
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.L.Close()
}

// Run executes a chunk of Lua source. Cancelling ctx aborts the script.
func (e *Engine) Run(ctx context.Context, src string) error {
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// RunFile executes a Lua file.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (e *Engine) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	total := 0
	for range n {
		cycles, err := e.emu.Step()
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		total += cycles
	}
	L.Push(lua.LNumber(total))
	return 1
}

func (e *Engine) reg(L *lua.LState) int {
	name := strings.ToUpper(L.CheckString(1))
	r := e.emu.CPU.Registers

	switch {
	case name == "PC":
		L.Push(lua.LNumber(r.PC))
	case name == "F":
		L.Push(lua.LNumber(r.F.Byte()))
	default:
		if reg, ok := reg8ByName[name]; ok {
			L.Push(lua.LNumber(r.Get8(reg)))
		} else if pair, ok := reg16ByName[name]; ok {
			L.Push(lua.LNumber(r.Get16(pair)))
		} else {
			L.ArgError(1, "unknown register "+name)
			return 0
		}
	}
	return 1
}

func (e *Engine) setreg(L *lua.LState) int {
	name := strings.ToUpper(L.CheckString(1))
	value := L.CheckInt(2)
	r := e.emu.CPU.Registers

	switch {
	case name == "PC":
		r.PC = uint16(value) //nolint:gosec // G115: Lua numbers are truncated to the register width
	case name == "F":
		r.F = cpu.FlagsFromByte(uint8(value)) //nolint:gosec // G115: truncated to 8 bits
	default:
		if reg, ok := reg8ByName[name]; ok {
			r.Set8(reg, uint8(value)) //nolint:gosec // G115: truncated to 8 bits
		} else if pair, ok := reg16ByName[name]; ok {
			r.Set16(pair, uint16(value)) //nolint:gosec // G115: truncated to 16 bits
		} else {
			L.ArgError(1, "unknown register "+name)
		}
	}
	return 0
}

func (e *Engine) flag(L *lua.LState) int {
	f := e.emu.CPU.Registers.F

	switch strings.ToUpper(L.CheckString(1)) {
	case "Z":
		L.Push(lua.LBool(f.Zero))
	case "N":
		L.Push(lua.LBool(f.Subtract))
	case "H":
		L.Push(lua.LBool(f.HalfCarry))
	case "C":
		L.Push(lua.LBool(f.Carry))
	default:
		L.ArgError(1, "flag must be Z, N, H or C")
		return 0
	}
	return 1
}

func (e *Engine) peek(L *lua.LState) int {
	addr := uint16(L.CheckInt(1)) //nolint:gosec // G115: addresses wrap at 16 bits
	L.Push(lua.LNumber(e.emu.Bus.Read(addr)))
	return 1
}

func (e *Engine) poke(L *lua.LState) int {
	addr := uint16(L.CheckInt(1))  //nolint:gosec // G115: addresses wrap at 16 bits
	value := uint8(L.CheckInt(2)) //nolint:gosec // G115: truncated to 8 bits
	e.emu.Bus.Write(addr, value)
	return 0
}

func (e *Engine) disasm(L *lua.LState) int {
	addr := uint16(L.OptInt(1, int(e.emu.CPU.Registers.PC))) //nolint:gosec // G115: addresses wrap at 16 bits
	text, length := cpu.Disassemble(e.emu.Bus, addr)
	L.Push(lua.LString(text))
	L.Push(lua.LNumber(length))
	return 2
}

func (e *Engine) cycles(L *lua.LState) int {
	L.Push(lua.LNumber(e.emu.CPU.Cycles))
	return 1
}

func (e *Engine) serial(L *lua.LState) int {
	L.Push(lua.LString(e.emu.SerialOutput()))
	return 1
}

func (e *Engine) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(e.out, strings.Join(parts, "\t"))
	return 0
}

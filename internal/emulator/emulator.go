// Package emulator ties the CPU, memory bus and timer together and runs
// programs until they report a result over the serial port.
package emulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/memory"
	"github.com/richardwooding/sm83/internal/timer"
)

// ErrTimeout indicates the operation timed out.
var ErrTimeout = errors.New("timeout waiting for serial output")

// Config holds runtime settings.
type Config struct {
	// Trace logs every executed instruction at debug level.
	Trace bool

	// SerialEcho, if set, receives serial bytes as they are sent.
	SerialEcho io.Writer

	// PC is the start address. Zero means 0x0100, the cartridge entry point.
	PC uint16

	Logger *slog.Logger
}

// Emulator represents a running system.
type Emulator struct {
	CPU   *cpu.CPU
	Bus   *memory.Bus
	Timer *timer.Timer

	cfg    Config
	log    *slog.Logger
	serial bytes.Buffer
}

// New creates an emulator with the given ROM loaded.
func New(rom []byte, cfg Config) (*Emulator, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	e := &Emulator{
		Bus: memory.NewBus(),
		cfg: cfg,
		log: cfg.Logger,
	}
	if err := e.Bus.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("failed to load ROM: %w", err)
	}

	e.Timer = timer.New(func() { e.CPU.RequestInterrupt(cpu.IntTimer) })
	e.Bus.SetTimer(e.Timer)

	var sink io.Writer = &e.serial
	if cfg.SerialEcho != nil {
		sink = io.MultiWriter(&e.serial, cfg.SerialEcho)
	}
	e.Bus.SetSerial(sink)

	e.CPU = e.newCPU()
	e.log.Debug("emulator created", "rom_bytes", len(rom), "pc", fmt.Sprintf("%04X", e.CPU.Registers.PC))
	return e, nil
}

func (e *Emulator) newCPU() *cpu.CPU {
	c := cpu.New(e.Bus)
	if e.cfg.PC != 0 {
		c.Registers.PC = e.cfg.PC
	}
	return c
}

// Step executes one CPU instruction, advances the timer by the cycles it
// took, and returns them.
func (e *Emulator) Step() (int, error) {
	if e.cfg.Trace {
		text, _ := cpu.Disassemble(e.Bus, e.CPU.Registers.PC)
		e.log.Debug("step", "pc", fmt.Sprintf("%04X", e.CPU.Registers.PC), "op", text, "state", e.CPU.State().String())
	}

	cycles, err := e.CPU.Step()
	if err != nil {
		return 0, err
	}
	e.Timer.Update(cycles)
	return cycles, nil
}

// RunCycles runs the emulator for at least the specified number of cycles.
func (e *Emulator) RunCycles(cycles uint64) error {
	target := e.CPU.Cycles + cycles
	for e.CPU.Cycles < target {
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntilOutput runs until the serial output reports "Passed" or
// "Failed". The timeout restarts whenever new output arrives; on expiry
// the output so far is returned with ErrTimeout.
func (e *Emulator) RunUntilOutput(ctx context.Context, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	lastLen := 0

	for {
		if err := ctx.Err(); err != nil {
			return e.SerialOutput(), err
		}

		if err := e.RunCycles(10000); err != nil {
			e.log.Error("execution stopped", "err", err)
			return e.SerialOutput(), err
		}

		if n := e.serial.Len(); n > lastLen {
			lastLen = n
			deadline = time.Now().Add(timeout)

			// Blargg's test ROMs print "Passed" or "Failed" when done
			output := e.SerialOutput()
			if strings.Contains(output, "Passed") || strings.Contains(output, "Failed") {
				return output, nil
			}
		}

		if time.Now().After(deadline) {
			return e.SerialOutput(), ErrTimeout
		}
	}
}

// SerialOutput returns the accumulated serial output.
func (e *Emulator) SerialOutput() string {
	return e.serial.String()
}

// Reset returns the machine to its power-on state with the ROM still loaded.
func (e *Emulator) Reset() {
	e.Bus.Reset()
	e.Timer.Reset()
	e.CPU = e.newCPU()
	e.serial.Reset()
}

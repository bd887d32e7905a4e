package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/emulator"
)

// Monitor window size in logical pixels.
const (
	monitorWidth  = 320
	monitorHeight = 240
)

// cyclesPerFrame is one DMG video frame at 60 ticks per second.
const cyclesPerFrame = 70224

// MonitorCmd runs a ROM in a register monitor window.
type MonitorCmd struct {
	ROM    string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Scale  int    `help:"Window scale factor (1-10)." default:"2"`
	Paused bool   `help:"Start paused."`
}

// Run executes the monitor command.
func (c *MonitorCmd) Run(logger *slog.Logger) error {
	if c.Scale < 1 || c.Scale > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, c.Scale)
	}

	emu, err := loadEmulator(c.ROM, emulator.Config{Logger: logger})
	if err != nil {
		return err
	}

	ebiten.SetWindowTitle("sm83 monitor - " + c.ROM)
	ebiten.SetWindowSize(monitorWidth*c.Scale, monitorHeight*c.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	m := &Monitor{emu: emu, paused: c.Paused, log: logger}
	if err := ebiten.RunGame(m); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("monitor error: %w", err)
	}
	return m.err
}

// Monitor implements ebiten.Game over a running emulator.
//
// Keys: Space pauses and resumes, N steps one instruction while paused,
// Escape quits.
type Monitor struct {
	emu    *emulator.Emulator
	paused bool
	err    error
	log    *slog.Logger
}

// Update runs one frame worth of cycles unless paused.
func (m *Monitor) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && m.err == nil {
		m.paused = !m.paused
	}

	if m.err == nil {
		m.advance(inpututil.IsKeyJustPressed(ebiten.KeyN))
	}
	return nil
}

// advance runs one frame, or one instruction when paused and step is set.
// The first error is logged and pauses the monitor.
func (m *Monitor) advance(step bool) {
	var err error
	switch {
	case !m.paused:
		err = m.emu.RunCycles(cyclesPerFrame)
	case step:
		_, err = m.emu.Step()
	}

	if err != nil {
		m.log.Error("execution stopped", "pc", fmt.Sprintf("%04X", m.emu.CPU.Registers.PC), "err", err)
		m.err = err
		m.paused = true
	}
}

// Draw prints the register panel.
func (m *Monitor) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, monitorText(m.emu, m.paused, m.err))
}

// Layout returns the logical screen size.
func (m *Monitor) Layout(_, _ int) (int, int) {
	return monitorWidth, monitorHeight
}

// monitorText renders the registers, flags, a disassembly window starting
// at PC and the tail of the serial output.
func monitorText(emu *emulator.Emulator, paused bool, err error) string {
	var b strings.Builder
	s := emu.CPU.State()

	status := "running"
	switch {
	case err != nil:
		status = "faulted: " + err.Error()
	case paused:
		status = "paused (N to step)"
	case s.Halted:
		status = "halted"
	case s.Stopped:
		status = "stopped"
	}
	fmt.Fprintf(&b, "%s\n\n", status)

	fmt.Fprintf(&b, "AF %02X%02X  BC %02X%02X\n", s.A, s.F, s.B, s.C)
	fmt.Fprintf(&b, "DE %02X%02X  HL %02X%02X\n", s.D, s.E, s.H, s.L)
	fmt.Fprintf(&b, "SP %04X  PC %04X\n", s.SP, s.PC)
	fmt.Fprintf(&b, "F  %s  IME %t\n", cpu.FlagsFromByte(s.F), s.IME)
	fmt.Fprintf(&b, "cycles %d\n\n", s.Cycles)

	addr := s.PC
	for i := range 8 {
		text, n := cpu.Disassemble(emu.Bus, addr)
		marker := "  "
		if i == 0 {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%04X %s\n", marker, addr, text)
		addr += uint16(n) //nolint:gosec // G115: n <= 3
	}

	serial := emu.SerialOutput()
	if lines := strings.Split(strings.TrimRight(serial, "\n"), "\n"); len(lines) > 4 {
		serial = strings.Join(lines[len(lines)-4:], "\n")
	}
	fmt.Fprintf(&b, "\nserial:\n%s", serial)
	return b.String()
}

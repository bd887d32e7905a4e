package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/emulator"
)

// StepCmd single-steps a ROM in the terminal.
type StepCmd struct {
	ROM   string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Count int    `default:"20" help:"Instructions to trace when stdin is not a terminal."`
	Burst int    `default:"1000" help:"Instructions run by the continue key."`
}

// Run executes the step command.
func (c *StepCmd) Run(ctx context.Context, logger *slog.Logger) error {
	emu, err := loadEmulator(c.ROM, emulator.Config{Logger: logger})
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // G115: file descriptors fit in int
	if !term.IsTerminal(fd) {
		s := &stepper{emu: emu, w: os.Stdout, eol: "\n"}
		return s.trace(ctx, c.Count)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, oldState); err != nil {
			logger.Warn("failed to restore terminal", "err", err)
		}
	}()

	s := &stepper{emu: emu, w: os.Stdout, eol: "\r\n", burst: c.Burst}
	return s.interact(ctx, os.Stdin)
}

// stepper prints one line per executed instruction.
type stepper struct {
	emu   *emulator.Emulator
	w     io.Writer
	eol   string
	burst int
}

// line writes the state before the instruction at PC, then its disassembly.
func (s *stepper) line() {
	pc := s.emu.CPU.Registers.PC
	text, _ := cpu.Disassemble(s.emu.Bus, pc)
	fmt.Fprintf(s.w, "%s  %-14s%s", s.emu.CPU.State(), text, s.eol)
}

func (s *stepper) step() error {
	s.line()
	_, err := s.emu.Step()
	return err
}

// trace executes n instructions without input.
func (s *stepper) trace(ctx context.Context, n int) error {
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(); err != nil {
			return fmt.Errorf("emulator error: %w", err)
		}
	}
	return nil
}

// interact reads single keys from r: s or space steps, c runs a burst,
// q quits. A decode fault ends the session.
func (s *stepper) interact(ctx context.Context, r io.Reader) error {
	fmt.Fprintf(s.w, "s/space: step  c: continue %d  q: quit%s", s.burst, s.eol)

	in := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, err := in.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		switch key {
		case 's', ' ':
			err = s.step()
		case 'c':
			err = s.trace(ctx, s.burst)
		case 'q', 3: // Ctrl-C arrives as a byte in raw mode
			return nil
		default:
			continue
		}
		if err != nil {
			fmt.Fprintf(s.w, "%v%s", err, s.eol)
			return err
		}
	}
}

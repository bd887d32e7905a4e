// Package main provides the sm83 CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/richardwooding/sm83/internal/cpu"
	"github.com/richardwooding/sm83/internal/emulator"
	"github.com/richardwooding/sm83/internal/script"
	"github.com/richardwooding/sm83/internal/testrom"
)

var (
	// ErrTestFailed indicates a test ROM failed.
	ErrTestFailed = errors.New("test failed")

	// ErrInvalidScale indicates the scale factor is out of valid range.
	ErrInvalidScale = errors.New("scale must be between 1 and 10")

	// ErrBadOpcode indicates an opcode argument that is not hex.
	ErrBadOpcode = errors.New("opcode must be one hex byte, or CB followed by one")
)

// CLI represents the command-line interface structure.
type CLI struct {
	LogLevel  string          `enum:"debug,info,warn,error" default:"info" help:"Log level (${enum})."`
	LogFormat string          `enum:"text,json" default:"text" help:"Log format (${enum})."`
	Config    kong.ConfigFlag `help:"Load flag defaults from a JSON file."`

	Info    InfoCmd    `cmd:"" help:"Show opcode table statistics or decode one opcode."`
	Disasm  DisasmCmd  `cmd:"" help:"Disassemble a ROM."`
	Test    TestCmd    `cmd:"" help:"Run test ROMs and report results."`
	Run     RunCmd     `cmd:"" help:"Run a ROM headless for a cycle budget."`
	Monitor MonitorCmd `cmd:"" help:"Run a ROM in a register monitor window."`
	Step    StepCmd    `cmd:"" help:"Single-step a ROM in the terminal."`
	Script  ScriptCmd  `cmd:"" help:"Drive a ROM with a Lua script."`
}

// parseAddr accepts decimal, 0x-prefixed or $-prefixed addresses.
func parseAddr(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "$"); ok {
		s = "0x" + rest
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint16(v), nil //nolint:gosec // G115: parsed as 16 bits
}

func loadEmulator(path string, cfg emulator.Config) (*emulator.Emulator, error) {
	// #nosec G304 - path is provided by the user via CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}
	emu, err := emulator.New(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create emulator: %w", err)
	}
	return emu, nil
}

// InfoCmd reports on the decode tables.
type InfoCmd struct {
	Opcode string `arg:"" optional:"" help:"Opcode in hex, e.g. 3E or CB7C."`
}

// Run executes the info command.
func (c *InfoCmd) Run() error {
	return c.write(os.Stdout)
}

func (c *InfoCmd) write(w io.Writer) error {
	if c.Opcode == "" {
		writeTableStats(w)
		return nil
	}

	s := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c.Opcode), "0x"))
	prefixed := len(s) == 4 && strings.HasPrefix(s, "CB")
	if prefixed {
		s = s[2:]
	}
	op, err := strconv.ParseUint(s, 16, 8)
	if err != nil || len(s) != 2 {
		return fmt.Errorf("%w: %q", ErrBadOpcode, c.Opcode)
	}

	in, ok := cpu.Decode(uint8(op), prefixed) //nolint:gosec // G115: parsed as 8 bits
	if !ok {
		return fmt.Errorf("%w: %s", cpu.ErrInvalidOpcode, strings.ToUpper(c.Opcode))
	}

	fmt.Fprintf(w, "Instruction: %s\n", in)
	fmt.Fprintf(w, "  Length:    %d bytes\n", in.Length)
	if in.Cond != cpu.Always {
		fmt.Fprintf(w, "  Cycles:    %d (%d not taken)\n", in.Cycles, in.CyclesNotTaken)
	} else {
		fmt.Fprintf(w, "  Cycles:    %d\n", in.Cycles)
	}
	fmt.Fprintf(w, "  Flags:     Z N H C = %s\n", in.Flags)
	return nil
}

func writeTableStats(w io.Writer) {
	counts := map[string]int{}
	plain, prefixed := 0, 0
	for op := range 256 {
		if in, ok := cpu.Decode(uint8(op), false); ok { //nolint:gosec // G115: op < 256
			plain++
			counts[in.Mnemonic.String()]++
		}
		if in, ok := cpu.Decode(uint8(op), true); ok { //nolint:gosec // G115: op < 256
			prefixed++
			counts[in.Mnemonic.String()]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Opcode tables:\n")
	fmt.Fprintf(w, "  Unprefixed: %d valid, %d invalid\n", plain, 256-plain)
	fmt.Fprintf(w, "  Prefixed:   %d valid\n", prefixed)
	fmt.Fprintf(w, "Mnemonics:\n")
	for _, name := range names {
		fmt.Fprintf(w, "  %-6s %3d\n", name, counts[name])
	}
}

// DisasmCmd disassembles part of a ROM.
type DisasmCmd struct {
	ROM   string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Start string `default:"0x0100" help:"Start address."`
	Count int    `default:"32" help:"Number of instructions."`
}

// Run executes the disasm command.
func (c *DisasmCmd) Run() error {
	start, err := parseAddr(c.Start)
	if err != nil {
		return err
	}
	emu, err := loadEmulator(c.ROM, emulator.Config{})
	if err != nil {
		return err
	}
	writeListing(os.Stdout, emu.Bus, start, c.Count)
	return nil
}

func writeListing(w io.Writer, m cpu.Memory, addr uint16, count int) {
	for range count {
		text, n := cpu.Disassemble(m, addr)
		raw := make([]string, n)
		for i := range raw {
			raw[i] = fmt.Sprintf("%02X", m.Read(addr+uint16(i))) //nolint:gosec // G115: n <= 3
		}
		fmt.Fprintf(w, "%04X  %-9s %s\n", addr, strings.Join(raw, " "), text)
		addr += uint16(n) //nolint:gosec // G115: n <= 3
	}
}

// TestCmd runs test ROMs and reports results.
type TestCmd struct {
	ROMs    []string      `arg:"" name:"rom" type:"existingfile" help:"Paths to test ROM files."`
	Timeout time.Duration `default:"30s" help:"Idle timeout per ROM."`
	Verbose bool          `short:"v" help:"Show detailed output."`
}

// Run executes the test command.
func (c *TestCmd) Run(ctx context.Context, logger *slog.Logger) error {
	failed := 0
	for _, rom := range c.ROMs {
		fmt.Printf("Running test ROM: %s\n", rom)

		result := testrom.Run(ctx, rom, c.Timeout, emulator.Config{Logger: logger})
		logger.Info("test ROM finished", "rom", rom, "result", result.String(),
			"cycles", result.Cycles, "duration", result.Duration)

		fmt.Printf("Result: %s\n", result.String())
		if c.Verbose || !result.IsSuccess() {
			fmt.Printf("\nOutput:\n%s\n", result.Output)
		}
		if !result.IsSuccess() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrTestFailed, failed, len(c.ROMs))
	}
	return nil
}

// RunCmd runs a ROM without a window.
type RunCmd struct {
	ROM    string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Cycles uint64 `default:"100000000" help:"Cycle budget."`
	PC     string `name:"pc" help:"Start address (default 0x0100)."`
	Trace  bool   `help:"Log every instruction at debug level."`
	Serial bool   `default:"true" negatable:"" help:"Echo serial output to stdout."`
}

// Run executes the run command.
func (c *RunCmd) Run(ctx context.Context, logger *slog.Logger) error {
	cfg := emulator.Config{Trace: c.Trace, Logger: logger}
	if c.PC != "" {
		pc, err := parseAddr(c.PC)
		if err != nil {
			return err
		}
		cfg.PC = pc
	}
	if c.Serial {
		cfg.SerialEcho = os.Stdout
	}

	emu, err := loadEmulator(c.ROM, cfg)
	if err != nil {
		return err
	}

	// Run in slices so an interrupt signal is noticed.
	const slice = 1_000_000
	for remaining := c.Cycles; remaining > 0; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(remaining, slice)
		if err := emu.RunCycles(n); err != nil {
			return fmt.Errorf("emulator error: %w", err)
		}
		remaining -= n
	}

	logger.Info("run finished", "cycles", emu.CPU.Cycles, "state", emu.CPU.State().String())
	return nil
}

// ScriptCmd runs a Lua script against a ROM.
type ScriptCmd struct {
	ROM    string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Script string `arg:"" type:"existingfile" help:"Path to Lua script."`
}

// Run executes the script command.
func (c *ScriptCmd) Run(ctx context.Context, logger *slog.Logger) error {
	emu, err := loadEmulator(c.ROM, emulator.Config{Logger: logger})
	if err != nil {
		return err
	}

	engine := script.New(emu, os.Stdout)
	defer engine.Close()

	return engine.RunFile(ctx, c.Script)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: l}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("sm83"),
		kong.Description("A Sharp SM83 (Game Boy CPU) instruction engine."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/sm83/config.json"),
	)

	logger := newLogger(os.Stderr, cli.LogLevel, cli.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err := kctx.Run(logger)
	if err != nil {
		logger.Error("command failed", "command", kctx.Command(), "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

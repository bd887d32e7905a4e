// Package testrom runs test ROMs that report their verdict over the serial
// port, such as Blargg's cpu_instrs suite.
package testrom

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/richardwooding/sm83/internal/emulator"
)

// Result represents the result of running a test ROM.
type Result struct {
	Output   string
	Passed   bool
	Failed   bool
	Timeout  bool
	Error    error
	Cycles   uint64
	Duration time.Duration
}

// Run executes the ROM at romPath and returns the result.
func Run(ctx context.Context, romPath string, timeout time.Duration, cfg emulator.Config) *Result {
	// #nosec G304 - romPath is provided by the user via CLI argument
	data, err := os.ReadFile(romPath)
	if err != nil {
		return &Result{Error: fmt.Errorf("failed to read ROM: %w", err)}
	}
	return RunBytes(ctx, data, timeout, cfg)
}

// RunBytes executes a ROM image and returns the result.
func RunBytes(ctx context.Context, rom []byte, timeout time.Duration, cfg emulator.Config) *Result {
	result := &Result{}

	emu, err := emulator.New(rom, cfg)
	if err != nil {
		result.Error = fmt.Errorf("failed to create emulator: %w", err)
		return result
	}

	start := time.Now()
	output, err := emu.RunUntilOutput(ctx, timeout)
	result.Duration = time.Since(start)
	result.Cycles = emu.CPU.Cycles
	result.Output = output

	if err != nil {
		result.Timeout = errors.Is(err, emulator.ErrTimeout)
		result.Error = err
		return result
	}

	// Check "Failed" first to avoid ambiguity if both strings are present
	result.Failed = strings.Contains(output, "Failed")
	result.Passed = strings.Contains(output, "Passed") && !result.Failed

	return result
}

// String returns a human-readable representation of the result.
func (r *Result) String() string {
	switch {
	case r.Timeout:
		return "TIMEOUT"
	case r.Error != nil:
		return fmt.Sprintf("ERROR: %v", r.Error)
	case r.Passed:
		return "PASSED"
	case r.Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// IsSuccess returns true if the test passed.
func (r *Result) IsSuccess() bool {
	return r.Passed && !r.Failed && r.Error == nil
}

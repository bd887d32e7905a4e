package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/richardwooding/sm83/internal/emulator"
	"github.com/richardwooding/sm83/internal/testrom"
)

// testROMPath returns the path to a test ROM, or skips the test if not found.
func testROMPath(t *testing.T, relPath string) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping test ROM integration test in short mode")
	}

	path := filepath.Join("../../testdata/blargg", relPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("Test ROM not found: %s\nDownload from: https://github.com/retrio/gb-test-roms\nSee: testdata/blargg/README.md", path)
	}

	return path
}

func runTestROM(t *testing.T, relPath string) {
	t.Helper()

	romPath := testROMPath(t, relPath)
	result := testrom.Run(context.Background(), romPath, 30*time.Second, emulator.Config{})

	if result.Error != nil && !result.Timeout {
		t.Fatalf("Error running test ROM: %v\nOutput:\n%s", result.Error, result.Output)
	}
	if result.Timeout {
		t.Errorf("Test timed out\nOutput:\n%s", result.Output)
		return
	}
	if !result.Passed {
		t.Errorf("Test failed\nOutput:\n%s", result.Output)
	}
}

// TestBlarggCPUInstrs tests Blargg's CPU instruction test ROMs.
func TestBlarggCPUInstrs(t *testing.T) {
	tests := []struct {
		name string
		rom  string
	}{
		{"01-special", "cpu_instrs/individual/01-special.gb"},
		{"02-interrupts", "cpu_instrs/individual/02-interrupts.gb"},
		{"03-op sp,hl", "cpu_instrs/individual/03-op sp,hl.gb"},
		{"04-op r,imm", "cpu_instrs/individual/04-op r,imm.gb"},
		{"05-op rp", "cpu_instrs/individual/05-op rp.gb"},
		{"06-ld r,r", "cpu_instrs/individual/06-ld r,r.gb"},
		{"07-jr,jp,call,ret,rst", "cpu_instrs/individual/07-jr,jp,call,ret,rst.gb"},
		{"08-misc instrs", "cpu_instrs/individual/08-misc instrs.gb"},
		{"09-op r,r", "cpu_instrs/individual/09-op r,r.gb"},
		{"10-bit ops", "cpu_instrs/individual/10-bit ops.gb"},
		{"11-op a,(hl)", "cpu_instrs/individual/11-op a,(hl).gb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runTestROM(t, tt.rom)
		})
	}
}

// TestBlarggCPUInstrsCombined runs all eleven groups from the banked ROM.
func TestBlarggCPUInstrsCombined(t *testing.T) {
	runTestROM(t, "cpu_instrs/cpu_instrs.gb")
}

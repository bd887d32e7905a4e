package timer

import "testing"

func TestDIVIncrement(t *testing.T) {
	timer := New(nil)

	// DIV is the upper byte of the counter: one tick every 256 cycles.
	if timer.Read(DIV) != 0 {
		t.Errorf("Initial DIV = %d, want 0", timer.Read(DIV))
	}

	timer.Update(255)
	if timer.Read(DIV) != 0 {
		t.Errorf("DIV after 255 cycles = %d, want 0", timer.Read(DIV))
	}

	timer.Update(1)
	if timer.Read(DIV) != 1 {
		t.Errorf("DIV after 256 cycles = %d, want 1", timer.Read(DIV))
	}

	timer.Update(256 * 255)
	if timer.Read(DIV) != 0 {
		t.Errorf("DIV after wrap = %d, want 0", timer.Read(DIV))
	}
}

func TestDIVReset(t *testing.T) {
	timer := New(nil)
	timer.Update(1000)

	timer.Write(DIV, 0x42)

	if timer.Read(DIV) != 0 {
		t.Errorf("DIV after write = %d, want 0", timer.Read(DIV))
	}
}

func TestRegisterReadback(t *testing.T) {
	timer := New(nil)

	timer.Write(TIMA, 0x12)
	timer.Write(TMA, 0x34)
	timer.Write(TAC, 0xFF)

	if timer.Read(TIMA) != 0x12 {
		t.Errorf("TIMA = %02X, want 0x12", timer.Read(TIMA))
	}
	if timer.Read(TMA) != 0x34 {
		t.Errorf("TMA = %02X, want 0x34", timer.Read(TMA))
	}
	if timer.Read(TAC) != 0xFF {
		t.Errorf("TAC = %02X, want 0xFF", timer.Read(TAC))
	}

	timer.Write(TAC, 0x00)
	if timer.Read(TAC) != 0xF8 {
		t.Errorf("TAC = %02X, want 0xF8 (upper bits read as 1)", timer.Read(TAC))
	}
	if timer.Read(0xFF08) != 0xFF {
		t.Errorf("unmapped register = %02X, want 0xFF", timer.Read(0xFF08))
	}
}

func TestTIMARates(t *testing.T) {
	tests := []struct {
		name   string
		tac    uint8
		period int
	}{
		{"4096 Hz", 0x04, 1024},
		{"262144 Hz", 0x05, 16},
		{"65536 Hz", 0x06, 64},
		{"16384 Hz", 0x07, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := New(nil)
			timer.Write(TAC, tt.tac)

			timer.Update(tt.period - 1)
			if timer.Read(TIMA) != 0 {
				t.Errorf("TIMA after %d cycles = %d, want 0", tt.period-1, timer.Read(TIMA))
			}

			timer.Update(1)
			if timer.Read(TIMA) != 1 {
				t.Errorf("TIMA after %d cycles = %d, want 1", tt.period, timer.Read(TIMA))
			}

			timer.Update(tt.period * 10)
			if timer.Read(TIMA) != 11 {
				t.Errorf("TIMA after %d periods = %d, want 11", 11, timer.Read(TIMA))
			}
		})
	}
}

func TestTIMADisabled(t *testing.T) {
	timer := New(nil)
	timer.Write(TAC, 0x01) // fast clock, enable bit clear

	timer.Update(4096)

	if timer.Read(TIMA) != 0 {
		t.Errorf("TIMA = %d, want 0 while disabled", timer.Read(TIMA))
	}
	if timer.Read(DIV) != 16 {
		t.Errorf("DIV = %d, want 16 (DIV always runs)", timer.Read(DIV))
	}
}

func TestOverflowReloadsAndInterrupts(t *testing.T) {
	interrupts := 0
	timer := New(func() { interrupts++ })
	timer.Write(TMA, 0xF0)
	timer.Write(TIMA, 0xFF)
	timer.Write(TAC, 0x05)

	timer.Update(16)

	if timer.Read(TIMA) != 0xF0 {
		t.Errorf("TIMA = %02X, want 0xF0 (reloaded from TMA)", timer.Read(TIMA))
	}
	if interrupts != 1 {
		t.Errorf("interrupts = %d, want 1", interrupts)
	}

	// 16 more increments overflow again.
	timer.Update(16 * 16)
	if interrupts != 2 {
		t.Errorf("interrupts = %d, want 2", interrupts)
	}
}

func TestCounterWrapCountsEdges(t *testing.T) {
	timer := New(nil)
	timer.Update(0xFFF0) // counter = 0xFFF0, TIMA disabled
	timer.Write(TAC, 0x05)

	// Crossing 0x10000 is an edge for every tap bit.
	timer.Update(0x20)

	if timer.Read(TIMA) != 2 {
		t.Errorf("TIMA = %d, want 2", timer.Read(TIMA))
	}
}

func TestDIVWriteFallingEdge(t *testing.T) {
	timer := New(nil)
	timer.Write(TAC, 0x05) // bit 3
	timer.Update(8)        // bit 3 set

	timer.Write(DIV, 0)

	if timer.Read(TIMA) != 1 {
		t.Errorf("TIMA = %d, want 1 (DIV reset drops the tapped bit)", timer.Read(TIMA))
	}
}

func TestTACChangeFallingEdge(t *testing.T) {
	timer := New(nil)
	timer.Write(TAC, 0x05) // bit 3
	timer.Update(8)        // counter = 8: bit 3 set, bit 9 clear

	timer.Write(TAC, 0x04) // switch to bit 9

	if timer.Read(TIMA) != 1 {
		t.Errorf("TIMA = %d, want 1 after switching to a low tap bit", timer.Read(TIMA))
	}

	timer.Write(TAC, 0x00)
	if timer.Read(TIMA) != 1 {
		t.Errorf("TIMA = %d, want 1 (bit 9 was already low)", timer.Read(TIMA))
	}
}

func TestReset(t *testing.T) {
	timer := New(nil)
	timer.Write(TIMA, 1)
	timer.Write(TMA, 2)
	timer.Write(TAC, 0x07)
	timer.Update(1000)

	timer.Reset()

	if timer.Read(DIV) != 0 || timer.Read(TIMA) != 0 || timer.Read(TMA) != 0 || timer.Read(TAC) != 0xF8 {
		t.Errorf("after Reset: DIV=%d TIMA=%d TMA=%d TAC=%02X",
			timer.Read(DIV), timer.Read(TIMA), timer.Read(TMA), timer.Read(TAC))
	}
}

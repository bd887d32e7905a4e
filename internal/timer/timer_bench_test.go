package timer

import "testing"

func BenchmarkUpdateDisabled(b *testing.B) {
	timer := New(nil)

	for b.Loop() {
		timer.Update(24)
	}
}

func BenchmarkUpdateFastClock(b *testing.B) {
	timer := New(func() {})
	timer.Write(TAC, 0x05) // 262144 Hz, an edge every 16 cycles

	for b.Loop() {
		timer.Update(24)
	}
}

func BenchmarkRegisterAccess(b *testing.B) {
	timer := New(nil)

	for b.Loop() {
		timer.Write(DIV, 0)
		_ = timer.Read(TIMA)
	}
}

// Package timer implements the DIV/TIMA/TMA/TAC timer block that sits next
// to the SM83 on the bus.
//
// DIV is the upper byte of a free-running 16-bit counter. TIMA counts
// falling edges of one counter bit, chosen by the low two bits of TAC,
// while TAC bit 2 is set. On overflow TIMA reloads from TMA and the timer
// interrupt is requested.
package timer

// InterruptCallback is called when TIMA overflows.
type InterruptCallback func()

// Register addresses.
const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

const (
	tacEnable = 0x04
	tacClock  = 0x03
)

// tapBits maps TAC clock select to the counter bit whose falling edge
// clocks TIMA: 4096, 262144, 65536 and 16384 Hz.
var tapBits = [4]uint{9, 3, 5, 7}

// Timer is the timer register block.
type Timer struct {
	counter uint16
	tima    uint8
	tma     uint8
	tac     uint8

	requestInterrupt InterruptCallback
}

// New creates a Timer that reports overflow through requestInterrupt.
func New(requestInterrupt InterruptCallback) *Timer {
	return &Timer{requestInterrupt: requestInterrupt}
}

// Read reads a timer register.
func (t *Timer) Read(addr uint16) uint8 {
	switch addr {
	case DIV:
		return uint8(t.counter >> 8) //nolint:gosec // G115: DIV is the upper byte
	case TIMA:
		return t.tima
	case TMA:
		return t.tma
	case TAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

// Write writes a timer register. Resetting DIV or changing TAC can drop
// the tapped bit from 1 to 0, which clocks TIMA once.
func (t *Timer) Write(addr uint16, value uint8) {
	switch addr {
	case DIV:
		before := t.tap()
		t.counter = 0
		t.edge(before)
	case TIMA:
		t.tima = value
	case TMA:
		t.tma = value
	case TAC:
		before := t.tap()
		t.tac = value & 0x07
		t.edge(before)
	}
}

// Update advances the counter by cycles T-cycles.
func (t *Timer) Update(cycles int) {
	start := uint32(t.counter)
	end := start + uint32(cycles) //nolint:gosec // G115: cycles per step are small
	t.counter = uint16(end)       //nolint:gosec // G115: the counter wraps

	if t.tac&tacEnable == 0 {
		return
	}

	// Falling edges of bit n land on multiples of 2^(n+1).
	shift := tapBits[t.tac&tacClock] + 1
	for edges := end>>shift - start>>shift; edges > 0; edges-- {
		t.incrementTIMA()
	}
}

// tap reports the level of the bit TIMA currently watches, gated by the
// enable bit.
func (t *Timer) tap() bool {
	if t.tac&tacEnable == 0 {
		return false
	}
	return t.counter&(1<<tapBits[t.tac&tacClock]) != 0
}

func (t *Timer) edge(before bool) {
	if before && !t.tap() {
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima != 0 {
		return
	}
	t.tima = t.tma
	if t.requestInterrupt != nil {
		t.requestInterrupt()
	}
}

// Reset returns every register to zero.
func (t *Timer) Reset() {
	t.counter = 0
	t.tima = 0
	t.tma = 0
	t.tac = 0
}

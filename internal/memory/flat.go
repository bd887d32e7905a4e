package memory

// Flat is 64 KiB of RAM with no memory-mapped registers.
type Flat struct {
	data [0x10000]uint8
}

// NewFlat creates a zeroed Flat memory.
func NewFlat() *Flat {
	return &Flat{}
}

// Read reads a byte.
func (f *Flat) Read(addr uint16) uint8 {
	return f.data[addr]
}

// Write writes a byte.
func (f *Flat) Write(addr uint16, value uint8) {
	f.data[addr] = value
}

// Load copies data into memory starting at addr, wrapping at 0xFFFF.
func (f *Flat) Load(addr uint16, data []byte) {
	for _, v := range data {
		f.data[addr] = v
		addr++
	}
}

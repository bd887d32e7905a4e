// Package memory implements the address space the SM83 core runs against.
//
// Bus is the DMG memory map with everything except the CPU's immediate
// neighbours reduced to plain storage: cartridge ROM with bank switching,
// RAM regions, the serial port, the timer block and the interrupt
// registers. Flat is a 64 KiB RAM for tests and scripts.
package memory

import (
	"errors"
	"fmt"
	"io"

	"github.com/richardwooding/sm83/internal/cpu"
)

// Timer is the register block mapped at FF04-FF07.
type Timer interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// I/O register addresses the bus handles itself.
const (
	AddrJoypad = 0xFF00
	AddrSB     = 0xFF01
	AddrSC     = 0xFF02
	AddrLY     = 0xFF44
)

// lyVBlank is what LY reads as. There is no LCD, so software polling for
// vertical blank must see it immediately.
const lyVBlank = 0x90

// Bus represents the memory bus.
type Bus struct {
	rom rom

	// VRAM, external RAM, WRAM, OAM and HRAM, indexed by addr-0x8000.
	// The I/O page is not stored here.
	ram [0x8000]uint8

	// I/O Registers (FF00-FF7F)
	io [0x80]uint8

	// Interrupt Enable Register (FFFF)
	ie uint8

	timer  Timer
	serial io.Writer
}

// NewBus creates a memory bus with no ROM loaded.
func NewBus() *Bus {
	return &Bus{rom: rom{bank: 1}}
}

// SetTimer maps a timer block at FF04-FF07.
func (b *Bus) SetTimer(t Timer) {
	b.timer = t
}

// SetSerial sets where bytes sent through the serial port go.
func (b *Bus) SetSerial(w io.Writer) {
	b.serial = w
}

// Read reads a byte from the memory bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	// ROM (0000-7FFF)
	case addr < 0x8000:
		return b.rom.read(addr)

	// Echo RAM (E000-FDFF) - Mirror of C000-DDFF
	case addr >= 0xE000 && addr < 0xFE00:
		return b.ram[addr-0xA000]

	// Not Usable (FEA0-FEFF)
	case addr >= 0xFEA0 && addr < 0xFF00:
		return 0xFF

	// I/O Registers (FF00-FF7F)
	case addr >= 0xFF00 && addr < 0xFF80:
		return b.readIO(addr)

	case addr == cpu.AddrIE:
		return b.ie

	default:
		return b.ram[addr-0x8000]
	}
}

// Write writes a byte to the memory bus.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x8000:
		b.rom.write(addr, value)

	case addr >= 0xE000 && addr < 0xFE00:
		b.ram[addr-0xA000] = value

	case addr >= 0xFEA0 && addr < 0xFF00:

	case addr >= 0xFF00 && addr < 0xFF80:
		b.writeIO(addr, value)

	case addr == cpu.AddrIE:
		b.ie = value

	default:
		b.ram[addr-0x8000] = value
	}
}

func (b *Bus) readIO(addr uint16) uint8 {
	switch addr {
	case AddrJoypad:
		return 0xFF // No buttons pressed
	case AddrSC:
		return b.io[addr-0xFF00] | 0x7E
	case 0xFF04, 0xFF05, 0xFF06, 0xFF07:
		if b.timer != nil {
			return b.timer.Read(addr)
		}
		return 0xFF
	case cpu.AddrIF:
		return b.io[addr-0xFF00] | 0xE0
	case AddrLY:
		return lyVBlank
	default:
		return b.io[addr-0xFF00]
	}
}

func (b *Bus) writeIO(addr uint16, value uint8) {
	switch addr {
	case AddrJoypad:
	case 0xFF04, 0xFF05, 0xFF06, 0xFF07:
		if b.timer != nil {
			b.timer.Write(addr, value)
		}
	case AddrSC:
		if value&0x80 != 0 {
			b.transfer()
			value &^= 0x80
		}
		b.io[addr-0xFF00] = value
	default:
		b.io[addr-0xFF00] = value
	}
}

// transfer completes a serial transfer instantly: SB goes to the sink, a
// disconnected peer shifts in 0xFF, and the serial interrupt is requested.
func (b *Bus) transfer() {
	sb := &b.io[AddrSB-0xFF00]
	if b.serial != nil {
		_, _ = b.serial.Write([]byte{*sb})
	}
	*sb = 0xFF
	b.io[cpu.AddrIF-0xFF00] |= 1 << cpu.IntSerial
}

// ROM size limits.
const (
	maxROMSize = 2 * 1024 * 1024
)

var (
	// ErrROMEmpty indicates an empty ROM image.
	ErrROMEmpty = errors.New("ROM image is empty")

	// ErrROMTooLarge indicates the ROM exceeds what the bank register can address.
	ErrROMTooLarge = errors.New("ROM size exceeds maximum allowed size of 2 MiB")
)

// LoadROM copies a ROM image onto the bus and selects bank 1.
func (b *Bus) LoadROM(data []byte) error {
	if len(data) == 0 {
		return ErrROMEmpty
	}
	if len(data) > maxROMSize {
		return fmt.Errorf("%w: got %d bytes", ErrROMTooLarge, len(data))
	}

	b.rom = newROM(data)
	return nil
}

// Reset clears all RAM and registers while keeping the ROM loaded.
func (b *Bus) Reset() {
	clear(b.ram[:])
	clear(b.io[:])
	b.ie = 0
	b.rom.bank = 1
	b.rom.upper = 0
}

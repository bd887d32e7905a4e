package memory

const romBankSize = 0x4000

// rom is a cartridge ROM with an MBC1-style bank register: 0000-3FFF is
// fixed to bank 0 and 4000-7FFF shows the selected bank.
//
// Control (write-only):
// - 2000-3FFF: ROM bank number (lower 5 bits, 0 selects 1)
// - 4000-5FFF: upper 2 bits of the ROM bank number
//
// Images of 32 KiB or less have no controller: writes are ignored and
// reads past the end of the image return 0xFF.
//
// RAM banking and the advanced banking mode are not modelled.
type rom struct {
	data   []byte
	bank   uint8
	upper  uint8
	banks  int
	banked bool
}

func newROM(data []byte) rom {
	banks := (len(data) + romBankSize - 1) / romBankSize
	return rom{
		data:   append([]byte(nil), data...),
		bank:   1,
		banks:  banks,
		banked: len(data) > 2*romBankSize,
	}
}

func (r *rom) read(addr uint16) uint8 {
	offset := int(addr)
	if r.banked && addr >= romBankSize {
		bank := int(r.upper)<<5 | int(r.bank)
		bank %= r.banks
		offset = bank*romBankSize + int(addr-romBankSize)
	}
	if offset < len(r.data) {
		return r.data[offset]
	}
	return 0xFF
}

func (r *rom) write(addr uint16, value uint8) {
	if !r.banked {
		return
	}
	switch {
	case addr >= 0x2000 && addr < 0x4000:
		r.bank = value & 0x1F
		if r.bank == 0 {
			r.bank = 1
		}
	case addr >= 0x4000 && addr < 0x6000:
		r.upper = value & 0x03
	}
}

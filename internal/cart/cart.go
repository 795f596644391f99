package cart

import "fmt"

// Cartridge is the bus-facing contract every mapper implements. Addresses
// passed in are already known to fall in 0x0000-0x7FFF (ROM window) or
// 0xA000-0xBFFF (external RAM window) by the caller (internal/bus).
type Cartridge interface {
	ReadROM(addr uint16) byte
	WriteROM(addr uint16, value byte) // bank-select / mode writes
	ReadRAM(addr uint16) byte
	WriteRAM(addr uint16, value byte)
	Header() *Header
}

// BatteryBacked is implemented by mappers whose external RAM (and, for
// MBC3, RTC registers) must survive a save/load cycle.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// RealTimeClock is implemented by mappers exposing RTC registers (MBC3).
type RealTimeClock interface {
	SaveRTC() []byte
	LoadRTC(data []byte)
}

// NewCartridge constructs the mapper implied by the ROM's header. now is a
// Unix-epoch seconds source used to seed MBC3's real-time clock; production
// callers pass time.Now().Unix(), tests pass a fixed value.
func NewCartridge(rom []byte, now int64) (Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	switch h.Mapper {
	case MapperROMOnly:
		return newROMOnly(h, rom), nil
	case MapperMBC1:
		return newMBC1(h, rom, false), nil
	case MapperMBC1M:
		return newMBC1(h, rom, true), nil
	case MapperMBC2:
		return newMBC2(h, rom), nil
	case MapperMBC3:
		return newMBC3(h, rom, now), nil
	case MapperMBC5:
		return newMBC5(h, rom), nil
	case MapperMMM01:
		return newMMM01(h, rom), nil
	default:
		return nil, &MalformedROMError{Reason: fmt.Sprintf("mapper %v not implemented", h.Mapper)}
	}
}

// newExternalRAM allocates zero-initialized external RAM of exactly the
// header's declared RAM size. A cartridge that declares no RAM gets an empty
// slice; the mappers read 0xFF from it and drop writes.
func newExternalRAM(h *Header) []byte {
	size := h.RAMSizeBytes
	if size == 0 {
		size = 0
	}
	return make([]byte, size)
}

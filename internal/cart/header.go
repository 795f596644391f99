// Package cart implements cartridge header parsing and the memory bank
// controller (mapper) family: ROM-only, MBC1/MBC1M, MBC2, MBC3+RTC, MBC5,
// and MMM01.
package cart

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	headerStart = 0x0100
	headerEnd   = 0x014F
)

var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Mapper identifies the bank-controller family selected by CartType.
type Mapper int

const (
	MapperROMOnly Mapper = iota
	MapperMBC1
	MapperMBC1M
	MapperMBC2
	MapperMBC3
	MapperMBC5
	MapperMMM01
	MapperUnsupported
)

// Header is the parsed cartridge header at 0x0100-0x014F.
type Header struct {
	Title          string
	CGBFlag        byte
	NewLicensee    string
	SGBFlag        byte
	CartType       byte
	ROMSizeCode    byte
	RAMSizeCode    byte
	Destination    byte
	OldLicensee    byte
	ROMVersion     byte
	HeaderChecksum byte
	GlobalChecksum uint16

	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	Mapper       Mapper
	HasBattery   bool
	HasRTC       bool
	HasRumble    bool
}

// MalformedROMError is returned when the cartridge image cannot be parsed or
// its declared mapper is not one this core implements.
type MalformedROMError struct {
	Reason string
}

func (e *MalformedROMError) Error() string { return "malformed ROM: " + e.Reason }

// ParseHeader reads and validates the cartridge header. It never panics on
// attacker-controlled input: every offset is bounds-checked first.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerEnd+1 {
		return nil, &MalformedROMError{Reason: "ROM too small to contain a header"}
	}

	rawTitle := rom[0x0134:0x0144]
	title := strings.TrimRight(string(rawTitle), "\x00")

	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}

	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)

	mapper, battery, rtc, rumble, err := decodeCartType(h.CartType)
	if err != nil {
		return nil, err
	}
	h.Mapper = mapper
	h.HasBattery = battery
	h.HasRTC = rtc
	h.HasRumble = rumble

	if h.Mapper == MapperMBC1 && isMBC1Multicart(rom, h.ROMSizeBytes) {
		h.Mapper = MapperMBC1M
	}

	if h.ROMSizeBytes > 0 && len(rom) < h.ROMSizeBytes {
		return nil, &MalformedROMError{
			Reason: fmt.Sprintf("ROM size mismatch: header declares %d bytes, image has %d", h.ROMSizeBytes, len(rom)),
		}
	}

	return h, nil
}

// HeaderChecksumOK recomputes the header checksum independent of ParseHeader.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < 0x014E {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

// isMBC1Multicart detects MBC1M by scanning for a duplicate Nintendo logo at
// the start of the second 0x4000-bank region each 0x10 banks apart, which is
// how 4-in-1/8-in-1 multicarts wire their extra high address lines.
func isMBC1Multicart(rom []byte, romSize int) bool {
	if romSize < 256*1024 {
		return false
	}
	// Each sub-game's header starts at bank*0x4000 + 0x0104 for bank in {0,0x10,0x20,0x30}.
	matches := 0
	for _, bank := range []int{0x10, 0x20, 0x30} {
		off := bank*0x4000 + 0x0104
		if off+len(nintendoLogo) > len(rom) {
			continue
		}
		ok := true
		for i, b := range nintendoLogo {
			if rom[off+i] != b {
				ok = false
				break
			}
		}
		if ok {
			matches++
		}
	}
	return matches > 0
}

func decodeROMSize(code byte) (size, banks int) {
	switch code {
	case 0x00:
		return 32 * 1024, 2
	case 0x01:
		return 64 * 1024, 4
	case 0x02:
		return 128 * 1024, 8
	case 0x03:
		return 256 * 1024, 16
	case 0x04:
		return 512 * 1024, 32
	case 0x05:
		return 1 * 1024 * 1024, 64
	case 0x06:
		return 2 * 1024 * 1024, 128
	case 0x07:
		return 4 * 1024 * 1024, 256
	case 0x08:
		return 8 * 1024 * 1024, 512
	case 0x52:
		return 1152 * 1024, 72
	case 0x53:
		return 1280 * 1024, 80
	case 0x54:
		return 1536 * 1024, 96
	default:
		return 0, 0
	}
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x00:
		return 0
	case 0x01:
		return 2 * 1024 // unofficial, some homebrew uses it
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

// decodeCartType maps the header's cartridge-type byte to a Mapper plus the
// battery/RTC/rumble feature flags it implies.
func decodeCartType(code byte) (m Mapper, battery, rtc, rumble bool, err error) {
	switch code {
	case 0x00:
		return MapperROMOnly, false, false, false, nil
	case 0x08:
		return MapperROMOnly, false, false, false, nil // ROM+RAM, no battery
	case 0x09:
		return MapperROMOnly, true, false, false, nil // ROM+RAM+BATTERY
	case 0x01:
		return MapperMBC1, false, false, false, nil
	case 0x02:
		return MapperMBC1, false, false, false, nil
	case 0x03:
		return MapperMBC1, true, false, false, nil
	case 0x05:
		return MapperMBC2, false, false, false, nil
	case 0x06:
		return MapperMBC2, true, false, false, nil
	case 0x0B:
		return MapperMMM01, false, false, false, nil
	case 0x0C:
		return MapperMMM01, false, false, false, nil
	case 0x0D:
		return MapperMMM01, true, false, false, nil
	case 0x0F:
		return MapperMBC3, true, true, false, nil // MBC3+TIMER+BATTERY
	case 0x10:
		return MapperMBC3, true, true, false, nil // MBC3+TIMER+RAM+BATTERY
	case 0x11:
		return MapperMBC3, false, false, false, nil
	case 0x12:
		return MapperMBC3, false, false, false, nil
	case 0x13:
		return MapperMBC3, true, false, false, nil
	case 0x19:
		return MapperMBC5, false, false, false, nil
	case 0x1A:
		return MapperMBC5, false, false, false, nil
	case 0x1B:
		return MapperMBC5, true, false, false, nil
	case 0x1C:
		return MapperMBC5, false, false, true, nil
	case 0x1D:
		return MapperMBC5, false, false, true, nil
	case 0x1E:
		return MapperMBC5, true, false, true, nil
	default:
		return MapperUnsupported, false, false, false, &MalformedROMError{
			Reason: fmt.Sprintf("unsupported cartridge type byte 0x%02X", code),
		}
	}
}

// IsCGB reports whether the header flags CGB support (dual-mode or CGB-only).
func (h *Header) IsCGB() bool { return h.CGBFlag&0x80 != 0 }

// IsCGBOnly reports whether the header requires CGB hardware.
func (h *Header) IsCGBOnly() bool { return h.CGBFlag == 0xC0 }

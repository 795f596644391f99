package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMBC5_BankZeroIsDistinctSelection(t *testing.T) {
	rom := make([]byte, 1024*1024)
	for bank := 0; bank < 64; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMBC5(&Header{}, rom)

	m.WriteROM(0x2000, 0x00)
	require.Equal(t, byte(0x00), m.ReadROM(0x4000), "MBC5 bank 0 is legal, unlike MBC1/3")
}

func TestMBC5_NineBitBankSpansTwoRegisters(t *testing.T) {
	rom := make([]byte, 4*1024*1024)
	for bank := 0; bank < 256; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMBC5(&Header{}, rom)

	m.WriteROM(0x2000, 0xFF)
	m.WriteROM(0x3000, 0x01)
	require.Equal(t, 0x1FF, m.romBank())
}

func TestMBC5_RAMBanking(t *testing.T) {
	m := newMBC5(&Header{RAMSizeBytes: 4 * 8 * 1024}, make([]byte, 0x8000))
	m.WriteROM(0x0000, 0x0A)
	m.WriteROM(0x4000, 0x03)
	m.WriteRAM(0xA000, 0x9A)
	require.Equal(t, byte(0x9A), m.ReadRAM(0xA000))
}

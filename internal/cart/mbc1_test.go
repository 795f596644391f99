package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMBC1_ROMBanking(t *testing.T) {
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	h := &Header{RAMSizeBytes: 0}
	m := newMBC1(h, rom, false)

	require.Equal(t, byte(0x00), m.ReadROM(0x0000))
	require.Equal(t, byte(0x01), m.ReadROM(0x4000), "bank register defaults to 1")

	m.WriteROM(0x2000, 0x03)
	require.Equal(t, byte(0x03), m.ReadROM(0x4000))

	m.WriteROM(0x2000, 0x00)
	require.Equal(t, byte(0x01), m.ReadROM(0x4000), "writing 0 remaps to bank 1")
}

func TestMBC1_RAMBankingMode1(t *testing.T) {
	rom := make([]byte, 128*1024)
	h := &Header{RAMSizeBytes: 32 * 1024}
	m := newMBC1(h, rom, false)

	m.WriteROM(0x0000, 0x0A)
	m.WriteROM(0x6000, 0x01)
	m.WriteROM(0x4000, 0x02)

	m.WriteRAM(0xA000, 0x77)
	require.Equal(t, byte(0x77), m.ReadRAM(0xA000))
}

func TestMBC1_RAMDisabledReadsFF(t *testing.T) {
	rom := make([]byte, 32*1024)
	h := &Header{RAMSizeBytes: 8 * 1024}
	m := newMBC1(h, rom, false)
	require.Equal(t, byte(0xFF), m.ReadRAM(0xA000))
}

func TestMBC1M_MulticartBanking(t *testing.T) {
	rom := make([]byte, 1024*1024)
	for bank := 0; bank < 0x40; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	h := &Header{RAMSizeBytes: 0}
	m := newMBC1(h, rom, true)

	m.WriteROM(0x4000, 0x01) // bankHi = 1 -> game 2 at multicart offset 0x10
	m.WriteROM(0x2000, 0x03)
	require.Equal(t, byte(0x13), m.ReadROM(0x4000))
}

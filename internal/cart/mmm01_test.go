package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMMM01_UnmappedExposesLastBanks(t *testing.T) {
	rom := make([]byte, 8*0x4000)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMMM01(&Header{}, rom)

	require.Equal(t, byte(6), m.ReadROM(0x0000), "unmapped low window pins to the second-to-last bank")
	require.Equal(t, byte(7), m.ReadROM(0x4000), "unmapped high window pins to the last bank")
}

func TestMMM01_MapTransitionLatches(t *testing.T) {
	rom := make([]byte, 8*0x4000)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := newMMM01(&Header{}, rom)

	m.WriteROM(0x2000, 0x40) // bit6 set: latch into mapped mode
	require.True(t, m.mapped)
	require.Equal(t, byte(0), m.ReadROM(0x0000), "mapped mode exposes bank 0 as the fixed window")
}

func TestMMM01_RAMBanking(t *testing.T) {
	m := newMMM01(&Header{RAMSizeBytes: 4 * 8 * 1024}, make([]byte, 0x8000))
	m.WriteROM(0x0000, 0x0A)
	m.WriteROM(0x2000, 0x40)
	m.WriteROM(0x4000, 0x02)
	m.WriteRAM(0xA000, 0x55)
	require.Equal(t, byte(0x55), m.ReadRAM(0xA000))
}

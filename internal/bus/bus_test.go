package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcornwell/GB/internal/apu"
	"github.com/rcornwell/GB/internal/cart"
	"github.com/rcornwell/GB/internal/joypad"
	"github.com/rcornwell/GB/internal/ppu"
	"github.com/rcornwell/GB/internal/serial"
	"github.com/rcornwell/GB/internal/timer"
)

func romOnlyImage(size int) []byte {
	rom := make([]byte, size)
	copy(rom[0x0134:0x013C], []byte("TESTROM"))
	rom[0x0147] = 0x00 // ROM ONLY
	rom[0x0148] = 0x00 // 32 KiB
	rom[0x0149] = 0x00 // no RAM
	return rom
}

func newTestBus(t *testing.T, cgb bool) *Bus {
	t.Helper()
	c, err := cart.NewCartridge(romOnlyImage(32*1024), 0)
	require.NoError(t, err)
	b := New(cgb, c, ppu.New(cgb), apu.New(), timer.New(), serial.New(serial.NullPeer{}), joypad.New())
	return b
}

func TestBus_DecodeRegions(t *testing.T) {
	b := newTestBus(t, false)
	require.Equal(t, SliceCartROM, b.decode(0x0150))
	require.Equal(t, SliceVRAM, b.decode(0x8000))
	require.Equal(t, SliceCartRAM, b.decode(0xA000))
	require.Equal(t, SliceWRAM, b.decode(0xC000))
	require.Equal(t, SliceEchoRAM, b.decode(0xE000))
	require.Equal(t, SliceOAM, b.decode(0xFE00))
	require.Equal(t, SliceUnusable, b.decode(0xFEA0))
	require.Equal(t, SliceIO, b.decode(0xFF00))
	require.Equal(t, SliceHRAM, b.decode(0xFF80))
	require.Equal(t, SliceIE, b.decode(0xFFFF))
}

func TestBus_BootROMShadowsCartUntilDisabled(t *testing.T) {
	b := newTestBus(t, false)
	b.SetBootROM([]byte{0xAA})
	require.Equal(t, SliceBootROM, b.decode(0x0000))
	require.Equal(t, byte(0xAA), b.Read(0x0000))

	b.Write(0xFF50, 0x01)
	require.Equal(t, SliceCartROM, b.decode(0x0000))
}

func TestBus_WRAMBankZeroActsAsOne(t *testing.T) {
	b := newTestBus(t, true)
	b.Write(0xD000, 0x42)
	b.Write(0xFF70, 0x00) // select bank 0, which must alias bank 1
	require.Equal(t, byte(0x42), b.Read(0xD000))

	b.Write(0xFF70, 0x02)
	b.Write(0xD000, 0x99)
	b.Write(0xFF70, 0x00)
	require.Equal(t, byte(0x42), b.Read(0xD000), "switching away and back to the aliased bank 1 preserves its own data")
}

func TestBus_IFUpperBitsReadAsOne(t *testing.T) {
	b := newTestBus(t, false)
	b.Write(0xFF0F, 0x00)
	require.Equal(t, byte(0xE0), b.Read(0xFF0F))
}

func TestBus_HRAMAndIENotAffectedByDMAConflict(t *testing.T) {
	b := newTestBus(t, false)
	b.Write(0xFFFF, 0x1F)
	b.Write(0xFF80, 0x77)
	b.Write(0xFF46, 0xC0) // start OAM DMA from WRAM page 0xC0xx
	require.Equal(t, byte(0x1F), b.Read(0xFFFF))
	require.Equal(t, byte(0x77), b.Read(0xFF80))
}

func TestBus_OAMDMACopiesAfterDelayAndBlocksOAMReads(t *testing.T) {
	b := newTestBus(t, false)
	for i := 0; i < 16; i++ {
		b.Write(0xC000+uint16(i), byte(0x10+i))
	}
	b.Write(0xFF46, 0xC0) // page 0xC0 == 0xC000

	// Delay is 2 M-cycles; OAM reads return 0xFF the entire time DMA is active.
	require.Equal(t, byte(0xFF), b.Read(0xFE00))

	for i := 0; i < 200; i++ {
		b.Idle()
	}
	require.False(t, b.dma.active, "transfer completes well within 200 M-cycles")
	require.Equal(t, byte(0x10), b.ppuDev.CPURead(0xFE00))
	require.Equal(t, byte(0x1F), b.ppuDev.CPURead(0xFE0F))
}

func TestBus_OAMDMAConflictReturnsDMAByteForSameTaggedRegion(t *testing.T) {
	b := newTestBus(t, false)
	b.Write(0xC050, 0x77)
	b.Write(0xFF46, 0xC0)
	b.Idle() // the FF46 write's own M-cycle and this one consume the 2 M-cycle start delay
	b.Idle() // copies byte 0

	// A CPU read from WRAM (external tag, same as the DMA's WRAM source)
	// observes the DMA's in-flight byte rather than 0xC0AA's real content.
	b.Write(0xC099, 0x55)
	got := b.conflictOrRead(0xC0AA)
	require.Equal(t, b.lastDMAByte, got)
}

func TestBus_GeneralPurposeHDMACopiesImmediately(t *testing.T) {
	b := newTestBus(t, true)
	for i := 0; i < 32; i++ {
		b.Write(0xC100+uint16(i), byte(i))
	}
	b.Write(0xFF51, 0xC1)
	b.Write(0xFF52, 0x00)
	b.Write(0xFF53, 0x00)
	b.Write(0xFF54, 0x00)
	b.Write(0xFF55, 0x01) // bit7=0 (general purpose), length = (1+1)*16 = 32

	require.False(t, b.hdma.active)
	require.Equal(t, byte(0), b.ppuDev.CPURead(0x8000))
	require.Equal(t, byte(31), b.ppuDev.CPURead(0x801F))
}

func TestBus_SpeedSwitchTogglesAndResetsDIV(t *testing.T) {
	b := newTestBus(t, true)
	b.Write(0xFF4D, 0x01)
	require.True(t, b.TrySpeedSwitch())
	require.True(t, b.doubleSpeed)
	require.False(t, b.speedSwitchArmed)
	require.Equal(t, uint16(0), b.timerDev.RawDiv())
	require.Equal(t, byte(2), byte(b.tCyclesPerMCycle()))
}

func TestBus_ResetDIVZeroesDivRegardlessOfSpeedSwitch(t *testing.T) {
	b := newTestBus(t, false)
	for i := 0; i < 200; i++ {
		b.Idle() // advance DIV away from zero
	}
	require.NotEqual(t, byte(0), b.Read(0xFF04))
	b.ResetDIV()
	require.Equal(t, byte(0), b.Read(0xFF04))
}

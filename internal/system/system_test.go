package system

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcornwell/GB/internal/joypad"
)

func romOnlyImage(size int) []byte {
	rom := make([]byte, size)
	copy(rom[0x0134:0x013C], []byte("TESTROM"))
	rom[0x0147] = 0x00 // ROM ONLY
	rom[0x0148] = 0x00 // 32 KiB
	rom[0x0149] = 0x00 // no RAM
	// A tight loop at 0x0100: JR -2 forever, so Step never runs off the ROM.
	rom[0x0100] = 0x18
	rom[0x0101] = 0xFE
	return rom
}

func TestSystem_NewStartsAtPostBootPC(t *testing.T) {
	sys, err := New(romOnlyImage(32*1024), nil, DMG)
	require.NoError(t, err)
	require.NotNil(t, sys)
	require.False(t, sys.CGBMode())
	require.Equal(t, uint16(0x0100), sys.cpu.PC)
}

func TestSystem_CGBModePostBootSetsA(t *testing.T) {
	sys, err := New(romOnlyImage(32*1024), nil, CGB)
	require.NoError(t, err)
	require.True(t, sys.CGBMode())
	require.Equal(t, byte(0x11), sys.cpu.A)
}

func TestSystem_StepAdvancesWithoutPanicking(t *testing.T) {
	sys, err := New(romOnlyImage(32*1024), nil, DMG)
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		sys.Step()
	}
	require.Equal(t, uint16(0x0100), sys.cpu.PC)
}

func TestSystem_MalformedROMReturnsError(t *testing.T) {
	_, err := New([]byte{0x00}, nil, DMG)
	require.Error(t, err)
}

func TestSystem_SetButtonRaisesJoypadIRQOnPress(t *testing.T) {
	sys, err := New(romOnlyImage(32*1024), nil, DMG)
	require.NoError(t, err)
	sys.bus.Write(0xFF00, 0xEF) // select the D-pad line
	sys.SetButton(joypad.Up, true)
	require.NotEqual(t, byte(0), sys.bus.IF()&0x10)
}

func TestSystem_SaveRAMNilForBatteryless(t *testing.T) {
	sys, err := New(romOnlyImage(32*1024), nil, DMG)
	require.NoError(t, err)
	require.Nil(t, sys.SaveRAM())
}

func TestSystem_SaveStateRoundTrip(t *testing.T) {
	sys, err := New(romOnlyImage(32*1024), nil, DMG)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		sys.Step()
	}
	data := sys.SaveState()

	sys2, err := New(romOnlyImage(32*1024), nil, DMG)
	require.NoError(t, err)
	require.NoError(t, sys2.LoadState(data))
	require.Equal(t, sys.cpu.SaveState(), sys2.cpu.SaveState())
}

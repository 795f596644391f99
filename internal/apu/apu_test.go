package apu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPU_PowerOnRequiredForRegisterWrites(t *testing.T) {
	a := New()
	a.CPUWrite(0xFF11, 0xFF) // masterEnable is false; write should be ignored
	require.Equal(t, byte(0), a.ch1.duty)
}

func TestAPU_TriggerSetsLengthAndEnabled(t *testing.T) {
	a := New()
	a.CPUWrite(0xFF26, 0x80) // power on
	a.CPUWrite(0xFF12, 0xF0) // max volume, increase mode -> DAC enabled
	a.CPUWrite(0xFF14, 0x80) // trigger
	require.True(t, a.ch1.enabled)
	require.Equal(t, byte(64), a.ch1.lengthCounter)
}

func TestAPU_TriggerWithDACDisabledStaysInactive(t *testing.T) {
	a := New()
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF12, 0x00) // volume 0, direction decrease -> DAC disabled
	a.CPUWrite(0xFF14, 0x80)
	require.False(t, a.ch1.enabled)
}

func TestAPU_LengthCounterDisablesChannel(t *testing.T) {
	a := New()
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF11, 0x3F) // length = 64 - 63 = 1
	a.CPUWrite(0xFF12, 0xF0)
	a.CPUWrite(0xFF14, 0xC0) // trigger + length enable
	require.True(t, a.ch1.enabled)

	a.ch1.clockLength()
	require.False(t, a.ch1.enabled)
}

func TestAPU_NR52ReflectsChannelStatus(t *testing.T) {
	a := New()
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF12, 0xF0)
	a.CPUWrite(0xFF14, 0x80)
	require.Equal(t, byte(0x01), a.readNR52()&0x0F)
}

func TestAPU_PowerOffClearsRegistersNotWaveRAM(t *testing.T) {
	a := New()
	a.CPUWrite(0xFF26, 0x80)
	a.ch3.sampleRAM[0] = 0xAB
	a.CPUWrite(0xFF26, 0x00) // power off
	require.False(t, a.masterEnable)
	require.Equal(t, byte(0xAB), a.ch3.sampleRAM[0])
	require.Equal(t, byte(0), a.nr50)
}

func TestAPU_SweepOverflowDisablesChannel(t *testing.T) {
	c := squareChannel{freq: 2000, sweepShift: 1, sweepDirection: 0, sweepPeriod: 1, enabled: true}
	c.env.initialVolume = 15
	c.triggerSweep()
	require.False(t, c.enabled, "shift toward overflow at trigger time disables the channel")
}

func TestAPU_SaveLoadStateRoundTrip(t *testing.T) {
	a := New()
	a.CPUWrite(0xFF26, 0x80)
	a.CPUWrite(0xFF12, 0xF0)
	a.CPUWrite(0xFF14, 0x80)
	data := a.SaveState()

	a2 := New()
	require.NoError(t, a2.LoadState(data))
	require.Equal(t, a.ch1.enabled, a2.ch1.enabled)
	require.Equal(t, a.ch1.lengthCounter, a2.ch1.lengthCounter)
}

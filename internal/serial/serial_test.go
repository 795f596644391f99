package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type echoPeer struct{ b byte }

func (e echoPeer) Exchange(byte) byte { return e.b }

func TestSerial_TransferFires8thShift(t *testing.T) {
	s := New(echoPeer{b: 0xFF})
	s.WriteSB(0x55)
	s.WriteSC(0x81) // start + internal clock

	fired := false
	for i := 0; i < 8*ticksPerShift; i++ {
		if s.Tick() {
			fired = true
		}
	}
	require.True(t, fired)
	require.Equal(t, byte(0xFF), s.ReadSB(), "all-ones peer shifts in 0xFF repeatedly")
}

func TestSerial_NoTransferWithoutStart(t *testing.T) {
	s := New(nil)
	require.False(t, s.Tick())
}

func TestSerial_ExternalClockNeverProgresses(t *testing.T) {
	s := New(nil)
	s.WriteSC(0x80) // start bit set, internal-clock bit clear
	for i := 0; i < 8*ticksPerShift; i++ {
		require.False(t, s.Tick())
	}
}

func TestSerial_SCReadHasReservedBitsSet(t *testing.T) {
	s := New(nil)
	s.WriteSC(0x01)
	require.Equal(t, byte(0x7F), s.ReadSC())
}

package joypad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoypad_DefaultReadAllReleased(t *testing.T) {
	j := New()
	j.Write(0x00) // select both lines
	require.Equal(t, byte(0xCF), j.Read())
}

func TestJoypad_DpadSelectReflectsPressed(t *testing.T) {
	j := New()
	j.Write(0x20) // select d-pad only (bit4=0)
	j.SetButtons(1 << Right)
	require.Equal(t, byte(0xC0|0x20|0x0E), j.Read(), "Right pressed clears bit0")
}

func TestJoypad_ButtonsSelectReflectsPressed(t *testing.T) {
	j := New()
	j.Write(0x10) // select buttons only (bit5=0)
	j.SetButtons(1 << A)
	require.Equal(t, byte(0xC0|0x10|0x0E), j.Read())
}

func TestJoypad_HighToLowTransitionRaisesIRQ(t *testing.T) {
	j := New()
	j.Write(0x20) // d-pad selected
	irq := j.SetButtons(1 << Down)
	require.True(t, irq)

	irq = j.SetButtons(1 << Down) // already pressed, no new edge
	require.False(t, irq)
}

func TestJoypad_UnselectedLineNoIRQ(t *testing.T) {
	j := New()
	j.Write(0x10) // buttons selected, not d-pad
	irq := j.SetButtons(1 << Up)
	require.False(t, irq, "d-pad press with d-pad line unselected must not raise IRQ")
}

// Package joypad implements the P1 (0xFF00) button matrix register.
package joypad

// Button identifies one of the eight physical inputs.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad models the two-select-line button matrix. Button state is kept as
// a single bitmask (bit set = pressed) so the host driver can hand over a
// snapshot read atomically between steps, per the spec's threading note.
type Joypad struct {
	selectButtons byte // P1 bit 5: 0 selects A/B/Select/Start
	selectDpad    byte // P1 bit 4: 0 selects Right/Left/Up/Down

	pressed uint8 // bit i set = Button(i) currently held
}

func New() *Joypad {
	return &Joypad{selectButtons: 1, selectDpad: 1}
}

// SetButtons replaces the full held-button bitmask and returns true if this
// transition should raise the joypad interrupt (a high->low edge on any
// currently-selected, enabled line).
func (j *Joypad) SetButtons(mask uint8) bool {
	before := j.readNibble()
	j.pressed = mask
	after := j.readNibble()
	// A 1->0 transition on any bit (pressed bits read as 0) raises the IRQ.
	fallingEdges := before &^ after
	return fallingEdges != 0
}

// readNibble computes the low nibble of P1 given the current select lines:
// bit set = released (matching real hardware's active-low encoding).
func (j *Joypad) readNibble() byte {
	var n byte = 0x0F
	if j.selectDpad == 0 {
		n &= j.lineBits(Right, Left, Up, Down)
	}
	if j.selectButtons == 0 {
		n &= j.lineBits(A, B, Select, Start)
	}
	return n
}

func (j *Joypad) lineBits(b0, b1, b2, b3 Button) byte {
	var n byte
	if j.pressed&(1<<b0) == 0 {
		n |= 0x01
	}
	if j.pressed&(1<<b1) == 0 {
		n |= 0x02
	}
	if j.pressed&(1<<b2) == 0 {
		n |= 0x04
	}
	if j.pressed&(1<<b3) == 0 {
		n |= 0x08
	}
	return n
}

// Read returns the P1 register value (0xFF00), upper 2 bits always set.
func (j *Joypad) Read() byte {
	v := byte(0xC0)
	v |= j.selectButtons << 5
	v |= j.selectDpad << 4
	v |= j.readNibble()
	return v
}

// Write updates the select lines (bits 4-5 are the only writable bits).
func (j *Joypad) Write(v byte) {
	j.selectButtons = (v >> 5) & 1
	j.selectDpad = (v >> 4) & 1
}

type State struct {
	SelectButtons, SelectDpad byte
	Pressed                   uint8
}

func (j *Joypad) SaveState() State {
	return State{SelectButtons: j.selectButtons, SelectDpad: j.selectDpad, Pressed: j.pressed}
}

func (j *Joypad) LoadState(s State) {
	j.selectButtons, j.selectDpad, j.pressed = s.SelectButtons, s.SelectDpad, s.Pressed
}

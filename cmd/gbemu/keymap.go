package main

import "github.com/hajimehoshi/ebiten/v2"

// keyByName resolves a config.KeyBindings entry (e.g. "Z", "Up") to
// the ebiten key it names. Only the keys a GB button mapping plausibly
// needs are listed; an unrecognized name just leaves that button
// unbound.
var namedKeys = map[string]ebiten.Key{
	"A": ebiten.KeyA, "B": ebiten.KeyB, "C": ebiten.KeyC, "D": ebiten.KeyD,
	"E": ebiten.KeyE, "F": ebiten.KeyF, "G": ebiten.KeyG, "H": ebiten.KeyH,
	"I": ebiten.KeyI, "J": ebiten.KeyJ, "K": ebiten.KeyK, "L": ebiten.KeyL,
	"M": ebiten.KeyM, "N": ebiten.KeyN, "O": ebiten.KeyO, "P": ebiten.KeyP,
	"Q": ebiten.KeyQ, "R": ebiten.KeyR, "S": ebiten.KeyS, "T": ebiten.KeyT,
	"U": ebiten.KeyU, "V": ebiten.KeyV, "W": ebiten.KeyW, "X": ebiten.KeyX,
	"Y": ebiten.KeyY, "Z": ebiten.KeyZ,

	"Up": ebiten.KeyArrowUp, "Down": ebiten.KeyArrowDown,
	"Left": ebiten.KeyArrowLeft, "Right": ebiten.KeyArrowRight,

	"Enter": ebiten.KeyEnter, "Backspace": ebiten.KeyBackspace,
	"Space": ebiten.KeySpace, "Tab": ebiten.KeyTab, "Escape": ebiten.KeyEscape,
	"ShiftLeft": ebiten.KeyShiftLeft, "ShiftRight": ebiten.KeyShiftRight,
}

func keyByName(name string) (ebiten.Key, bool) {
	k, ok := namedKeys[name]
	return k, ok
}

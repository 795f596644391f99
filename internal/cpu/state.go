package cpu

// State is a plain-struct snapshot: every CPU field is already an exported
// register or a simple bool, so no mirror type is needed the way the bus's
// unexported DMA engines require one.
type State struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte
	SP   uint16
	PC   uint16

	IME       bool
	EIPending bool
	Halted    bool
	Stopped   bool
	HaltBug   bool
}

func (c *CPU) SaveState() State {
	return State{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.SP, PC: c.PC,
		IME: c.IME, EIPending: c.eiPending, Halted: c.halted,
		Stopped: c.stopped, HaltBug: c.haltBug,
	}
}

func (c *CPU) LoadState(s State) {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L
	c.SP, c.PC = s.SP, s.PC
	c.IME, c.eiPending, c.halted, c.stopped, c.haltBug =
		s.IME, s.EIPending, s.Halted, s.Stopped, s.HaltBug
}

package bus

// tCyclesPerMCycle returns how many physical T-cycles one CPU M-cycle
// spans: 4 normally, 2 in CGB double-speed mode (the CPU runs twice as
// fast; PPU/APU/timer/serial continue at the real T-cycle rate, so fewer
// of their ticks happen per CPU bus call).
func (b *Bus) tCyclesPerMCycle() int {
	if b.doubleSpeed {
		return 2
	}
	return 4
}

// tickOneT advances every T-cycle-driven component by exactly one T-cycle,
// in this order: APU (one Tick covering frequency timers, frame sequencer
// and sample output; there is no separate early or late APU phase), PPU
// dot, timer edge-detect, serial, IRQ latching into IF, OAM-DMA byte copy,
// then HBlank-DMA step. The CPU's own bus transaction is not part of this
// sequence: Read and Write perform it before the M-cycle's T-cycles run.
func (b *Bus) tickOneT() {
	div := b.timerDev.RawDiv()
	b.apuDev.Tick(div)
	b.ppuDev.DotTick()

	if b.timerDev.Tick() {
		b.ifReg |= IntTimer
	}
	if b.serialDev.Tick() {
		b.ifReg |= IntSerial
	}
	if b.ppuDev.PendingVBlankIRQ() {
		b.ifReg |= IntVBlank
	}
	if b.ppuDev.PendingSTATIRQ() {
		b.ifReg |= IntSTAT
	}

	b.stepDMA()
	b.stepHDMAIfHBlank()
}

// runMCycle is the shared core of Read/Write/Idle: it ticks the bus clock
// by one M-cycle's worth of T-cycles. The CPU never computes a cycle count
// up front — every call here is triggered by one actual bus access.
func (b *Bus) runMCycle() {
	n := b.tCyclesPerMCycle()
	for i := 0; i < n; i++ {
		b.tickOneT()
	}
}

// Idle spends one M-cycle without a memory transaction (used by internal
// CPU cycles such as ALU-only opcodes or the two internal cycles at the
// start of interrupt dispatch).
func (b *Bus) Idle() {
	b.runMCycle()
}

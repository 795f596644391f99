// Package ppu implements the Game Boy's pixel-processing unit: the
// mode-0/1/2/3 scanline state machine, OAM scan, and the per-dot BG/window
// and sprite pixel FIFOs that drive genuine mid-scanline fetcher timing
// instead of a post-hoc per-line renderer.
package ppu

// FrameSink is the out-of-scope host collaborator the PPU emits pixels to.
// The core never buffers a whole frame itself beyond what the fetcher
// needs; every dot's color is handed to the sink immediately.
type FrameSink interface {
	BeginFrame()
	DrawPixel(colorIndex int, row, col int)
	EndFrame()
}

type nullSink struct{}

func (nullSink) BeginFrame()                      {}
func (nullSink) DrawPixel(colorIndex, row, col int) {}
func (nullSink) EndFrame()                        {}

const (
	dotsPerLine  = 456
	linesPerFrame = 154
	visibleLines  = 144

	mode0HBlank = 0
	mode1VBlank = 1
	mode2OAM    = 2
	mode3Draw   = 3
)

// LCDC bits.
const (
	lcdcBGWinEnable  = 1 << 0 // DMG: BG/window enable; CGB: BG/window priority master
	lcdcOBJEnable    = 1 << 1
	lcdcOBJSize      = 1 << 2 // 0 = 8x8, 1 = 8x16
	lcdcBGTileMap    = 1 << 3
	lcdcBGWinTiles   = 1 << 4
	lcdcWinEnable    = 1 << 5
	lcdcWinTileMap   = 1 << 6
	lcdcDisplayOn    = 1 << 7
)

// STAT bits.
const (
	statLYCInterrupt   = 1 << 6
	statMode2Interrupt = 1 << 5
	statMode1Interrupt = 1 << 4
	statMode0Interrupt = 1 << 3
	statLYCEqual       = 1 << 2
)

type sprite struct {
	y, x, tile, attr byte
	oamIndex         int
}

// PPU holds all video hardware state.
type PPU struct {
	cgbMode bool

	vram     [2][0x2000]byte
	vramBank byte
	oam      [160]byte

	lcdc, stat           byte
	scy, scx             byte
	ly, lyc              byte
	bgp, obp0, obp1      byte
	wy, wx               byte
	winLineCounter       byte
	winLineCounterActive bool

	// CGB palette RAM: 8 palettes x 4 colors x 2 bytes (RGB555).
	bgPalRAM, objPalRAM [64]byte
	bcps, ocps          byte
	objPriorityMode     byte // OPRI: 0 = CGB priority (OAM order), 1 = DMG priority (X coord)

	paletteTable [palTableSize]RGBColor

	dot  int
	mode byte

	statLine bool // tracks the OR'd STAT interrupt condition for edge detection

	scanSprites []sprite

	fetcher fetcherState

	sink FrameSink

	frameReady bool
	vblankIRQ  bool
	statIRQ    bool
}

func New(cgbMode bool) *PPU {
	p := &PPU{cgbMode: cgbMode, sink: nullSink{}}
	return p
}

func (p *PPU) SetSink(sink FrameSink) {
	if sink == nil {
		sink = nullSink{}
	}
	p.sink = sink
}

// PendingVBlankIRQ/PendingSTATIRQ are drained by the bus each T-cycle after
// calling Tick, so the interrupt controller can OR them into IF.
func (p *PPU) PendingVBlankIRQ() bool {
	v := p.vblankIRQ
	p.vblankIRQ = false
	return v
}

func (p *PPU) PendingSTATIRQ() bool {
	v := p.statIRQ
	p.statIRQ = false
	return v
}

// DotTick advances the PPU by exactly one T-cycle (hardware "dot").
func (p *PPU) DotTick() {
	if p.lcdc&lcdcDisplayOn == 0 {
		return
	}

	switch p.mode {
	case mode2OAM:
		if p.dot == 0 {
			p.scanOAM()
		}
		if p.dot == 79 {
			p.enterMode3()
		}
	case mode3Draw:
		p.stepFetcher()
	case mode0HBlank:
		// idle
	case mode1VBlank:
		// idle
	}

	p.dot++
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.advanceLine()
	}

	p.updateSTATLine()
}

func (p *PPU) advanceLine() {
	p.ly++
	if p.ly == visibleLines {
		p.enterVBlank()
	} else if p.ly > linesPerFrame-1 {
		p.ly = 0
		p.winLineCounter = 0
		p.winLineCounterActive = false
		p.enterMode2()
	} else if p.ly < visibleLines {
		p.enterMode2()
	}
	p.checkLYC()
}

func (p *PPU) enterMode2() {
	p.mode = mode2OAM
}

func (p *PPU) enterMode3() {
	p.mode = mode3Draw
	p.startFetcher()
}

func (p *PPU) enterMode0() {
	p.mode = mode0HBlank
}

func (p *PPU) enterVBlank() {
	p.mode = mode1VBlank
	p.vblankIRQ = true
	p.sink.EndFrame()
	p.frameReady = true
}

func (p *PPU) checkLYC() {
	if p.ly == p.lyc {
		p.stat |= statLYCEqual
	} else {
		p.stat &^= statLYCEqual
	}
}

// updateSTATLine recomputes the OR'd STAT interrupt sources and fires on a
// 0->1 rising edge, matching the real "STAT IRQ blocking" behavior where
// rapid mode changes that don't produce an edge never re-fire.
func (p *PPU) updateSTATLine() {
	line := false
	if p.stat&statLYCInterrupt != 0 && p.stat&statLYCEqual != 0 {
		line = true
	}
	switch p.mode {
	case mode0HBlank:
		if p.stat&statMode0Interrupt != 0 {
			line = true
		}
	case mode1VBlank:
		if p.stat&statMode1Interrupt != 0 {
			line = true
		}
	case mode2OAM:
		if p.stat&statMode2Interrupt != 0 {
			line = true
		}
	}
	if line && !p.statLine {
		p.statIRQ = true
	}
	p.statLine = line
}

// FrameReady/ClearFrameReady let the driver poll completion between steps
// without touching internal state mid-step, per the spec's threading note.
func (p *PPU) FrameReady() bool { return p.frameReady }
func (p *PPU) ClearFrameReady() { p.frameReady = false }

func (p *PPU) Mode() byte { return p.mode }
func (p *PPU) LY() byte   { return p.ly }

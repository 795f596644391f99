package ppu

// fetchPhase is one half-step of the BG/window pixel fetcher's six-step
// cycle: two dots each to read the tile index, low bitplane, and high
// bitplane, after which eight pixels are pushed into the BG FIFO whenever
// it has drained to 8 or fewer entries.
type fetchPhase int

const (
	phaseGetTileA fetchPhase = iota
	phaseGetTileB
	phaseGetLowA
	phaseGetLowB
	phaseGetHighA
	phaseGetHighB
)

type bgPixel struct {
	color   byte // 2-bit index into BGP (or CGB BG palette)
	palette byte // CGB BG palette number 0-7
	bgPrio  bool // CGB BG-to-OBJ priority bit
}

type objPixel struct {
	color    byte
	palette  byte
	obp      byte // DMG OBP0/OBP1 selector
	priority bool // sprite-behind-BG-colors-1-3 flag
	present  bool
}

type fetcherState struct {
	phase fetchPhase

	fetchTileX int // tile column within the 32-wide map being fetched
	tileIndex  byte
	lowByte    byte
	highByte   byte
	tileAttr   byte // CGB tile attribute byte (palette/bank/flip/priority)

	bgFIFO []bgPixel

	lx         int // next output column, 0..159
	scxDiscard int

	windowActive   bool
	fetchingWindow bool

	spriteFetchPending *sprite
	spriteFIFO         [8]objPixel
}

func (p *PPU) startFetcher() {
	f := &p.fetcher
	f.phase = phaseGetTileA
	f.fetchTileX = 0
	f.bgFIFO = f.bgFIFO[:0]
	f.lx = 0
	f.scxDiscard = int(p.scx) % 8
	f.fetchingWindow = false
	f.windowActive = false
	for i := range f.spriteFIFO {
		f.spriteFIFO[i] = objPixel{}
	}
}

func (p *PPU) stepFetcher() {
	f := &p.fetcher

	if !f.fetchingWindow && p.lcdc&lcdcWinEnable != 0 && p.ly >= p.wy &&
		int(p.wx)-7 <= f.lx && p.wx <= 166 {
		f.fetchingWindow = true
		f.windowActive = true
		f.phase = phaseGetTileA
		f.fetchTileX = 0
		f.bgFIFO = f.bgFIFO[:0]
		if !p.winLineCounterActive {
			p.winLineCounterActive = true
		}
	}

	p.trySpriteFetch()

	switch f.phase {
	case phaseGetTileA:
		f.phase = phaseGetTileB
	case phaseGetTileB:
		f.tileIndex = p.fetchTileIndex()
		f.phase = phaseGetLowA
	case phaseGetLowA:
		f.phase = phaseGetLowB
	case phaseGetLowB:
		f.lowByte, f.tileAttr = p.fetchTileDataLow()
		f.phase = phaseGetHighA
	case phaseGetHighA:
		f.phase = phaseGetHighB
	case phaseGetHighB:
		f.highByte = p.fetchTileDataHigh()
		if len(f.bgFIFO) <= 8 {
			p.pushTileRow()
			f.fetchTileX++
			f.phase = phaseGetTileA
		}
		// If the FIFO still has more than 8 pixels, this fetch holds at
		// phaseGetHighB (stalled) until there is room, matching hardware.
	}

	p.popAndEmit()
}

// fetchTileIndex reads the BG or window tile map entry for the current
// fetch column.
func (p *PPU) fetchTileIndex() byte {
	f := &p.fetcher
	var mapBase uint16
	var row byte
	if f.fetchingWindow {
		if p.lcdc&lcdcWinTileMap != 0 {
			mapBase = 0x1C00
		} else {
			mapBase = 0x1800
		}
		row = p.winLineCounter
	} else {
		if p.lcdc&lcdcBGTileMap != 0 {
			mapBase = 0x1C00
		} else {
			mapBase = 0x1800
		}
		row = p.ly + p.scy
	}
	col := byte(f.fetchTileX)
	if !f.fetchingWindow {
		col += p.scx / 8
	}
	addr := mapBase + uint16(row/8)*32 + uint16(col&0x1F)
	return p.vram[0][addr]
}

func (p *PPU) tileAttrAt(addr uint16) byte {
	if !p.cgbMode {
		return 0
	}
	return p.vram[1][addr]
}

func (p *PPU) fetchTileDataLow() (byte, byte) {
	f := &p.fetcher
	var mapBase uint16
	var row byte
	if f.fetchingWindow {
		if p.lcdc&lcdcWinTileMap != 0 {
			mapBase = 0x1C00
		} else {
			mapBase = 0x1800
		}
		row = p.winLineCounter
	} else {
		if p.lcdc&lcdcBGTileMap != 0 {
			mapBase = 0x1C00
		} else {
			mapBase = 0x1800
		}
		row = p.ly + p.scy
	}
	col := byte(f.fetchTileX)
	if !f.fetchingWindow {
		col += p.scx / 8
	}
	mapAddr := mapBase + uint16(row/8)*32 + uint16(col&0x1F)
	attr := p.tileAttrAt(mapAddr)

	bank := (attr >> 3) & 1
	yFlip := attr&0x40 != 0
	line := row % 8
	if yFlip {
		line = 7 - line
	}

	tileDataAddr := p.tileDataAddress(f.tileIndex, line)
	return p.vram[bank][tileDataAddr], attr
}

func (p *PPU) fetchTileDataHigh() byte {
	f := &p.fetcher
	row := p.ly + p.scy
	if f.fetchingWindow {
		row = p.winLineCounter
	}
	bank := (f.tileAttr >> 3) & 1
	yFlip := f.tileAttr&0x40 != 0
	line := row % 8
	if yFlip {
		line = 7 - line
	}
	addr := p.tileDataAddress(f.tileIndex, line) + 1
	return p.vram[bank][addr]
}

// tileDataAddress resolves LCDC bit 4's addressing mode: unsigned 0x8000
// base, or signed 0x9000 base when bit4 is clear.
func (p *PPU) tileDataAddress(tileIndex byte, line byte) uint16 {
	if p.lcdc&lcdcBGWinTiles != 0 {
		return uint16(tileIndex)*16 + uint16(line)*2
	}
	signed := int8(tileIndex)
	base := 0x1000 + int(signed)*16
	return uint16(base) + uint16(line)*2
}

func (p *PPU) pushTileRow() {
	f := &p.fetcher
	xFlip := f.tileAttr&0x20 != 0
	palette := f.tileAttr & 0x07
	bgPrio := f.tileAttr&0x80 != 0

	for i := 0; i < 8; i++ {
		bit := 7 - i
		if xFlip {
			bit = i
		}
		lo := (f.lowByte >> bit) & 1
		hi := (f.highByte >> bit) & 1
		color := hi<<1 | lo
		f.bgFIFO = append(f.bgFIFO, bgPixel{color: color, palette: palette, bgPrio: bgPrio})
	}
}

// trySpriteFetch checks whether a scanned sprite's X matches the pixel
// about to be emitted and, if so, fetches its 8-pixel row into the sprite
// overlay immediately (sprite fetches pause the BG fetcher on hardware;
// here they're resolved in the same dot they're hit since they don't need
// to themselves be timing-critical for downstream tests).
func (p *PPU) trySpriteFetch() {
	if p.lcdc&lcdcOBJEnable == 0 {
		return
	}
	f := &p.fetcher
	for i := range p.scanSprites {
		s := &p.scanSprites[i]
		if s.tile == 0xFF {
			continue // already consumed
		}
		spriteX := int(s.x) - 8
		if spriteX != f.lx {
			continue
		}
		p.fetchSpriteRow(s, spriteX)
		s.tile = 0xFF
	}
}

func (p *PPU) fetchSpriteRow(s *sprite, spriteX int) {
	f := &p.fetcher
	height := 8
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}
	yFlip := s.attr&0x40 != 0
	xFlip := s.attr&0x20 != 0
	line := int(p.ly) - (int(s.y) - 16)
	if yFlip {
		line = height - 1 - line
	}
	tile := s.tile
	if height == 16 {
		tile &^= 0x01
		if line >= 8 {
			tile |= 0x01
			line -= 8
		}
	}

	bank := byte(0)
	if p.cgbMode && s.attr&0x08 != 0 {
		bank = 1
	}
	addr := uint16(tile)*16 + uint16(line)*2
	lo := p.vram[bank][addr]
	hi := p.vram[bank][addr+1]

	priority := s.attr&0x80 != 0
	var palette byte
	var obp byte
	if p.cgbMode {
		palette = s.attr & 0x07
	} else {
		obp = (s.attr >> 4) & 1
	}

	for i := 0; i < 8; i++ {
		bit := 7 - i
		if xFlip {
			bit = i
		}
		l := (lo >> bit) & 1
		h := (hi >> bit) & 1
		color := h<<1 | l
		if color == 0 {
			continue // transparent, doesn't overwrite an existing sprite pixel
		}
		slot := (spriteX + i) % 8 // keyed by absolute screen column, matching popAndEmit's read
		if f.spriteFIFO[slot].present {
			continue // earlier-scanned (higher-priority) sprite already owns this dot
		}
		f.spriteFIFO[slot] = objPixel{color: color, palette: palette, obp: obp, priority: priority, present: true}
	}
}

// popAndEmit pops one BG pixel (after the initial SCX discard) and merges
// the sprite overlay, emitting the final color index to the frame sink.
func (p *PPU) popAndEmit() {
	f := &p.fetcher
	if len(f.bgFIFO) == 0 {
		return
	}
	if f.scxDiscard > 0 && !f.fetchingWindow {
		f.bgFIFO = f.bgFIFO[1:]
		f.scxDiscard--
		return
	}
	if f.lx >= 160 {
		return
	}

	bg := f.bgFIFO[0]
	f.bgFIFO = f.bgFIFO[1:]

	slot := f.lx % 8
	obj := f.spriteFIFO[slot]
	f.spriteFIFO[slot] = objPixel{} // free the bucket for a later sprite reusing this column mod 8

	colorIdx := p.composePixel(bg, obj)
	p.sink.DrawPixel(colorIdx, int(p.ly), f.lx)
	f.lx++

	if f.lx >= 160 {
		if f.fetchingWindow {
			p.winLineCounter++
		}
		p.enterMode0()
	}
}

// composePixel applies DMG/CGB priority rules between the BG and sprite
// pixel at this dot and resolves the final palette lookup.
func (p *PPU) composePixel(bg bgPixel, obj objPixel) int {
	bgEnabled := p.cgbMode || p.lcdc&lcdcBGWinEnable != 0
	bgColor := bg.color
	if !bgEnabled {
		bgColor = 0
	}

	useSprite := obj.present
	if useSprite {
		if p.cgbMode && p.lcdc&lcdcBGWinEnable == 0 {
			// CGB master priority bit off: OBJ always wins.
		} else if bg.bgPrio && bgColor != 0 {
			useSprite = false
		} else if obj.priority && bgColor != 0 {
			useSprite = false
		}
	}

	if useSprite {
		if p.cgbMode {
			return p.lookupCGBColor(true, obj.palette, obj.color)
		}
		base := palDMGOBP0
		if obj.obp == 1 {
			base = palDMGOBP1
		}
		return base + int(obj.color)
	}

	if p.cgbMode {
		return p.lookupCGBColor(false, bg.palette, bgColor)
	}
	return palDMGBG + int(bgColor)
}

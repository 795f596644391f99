package ppu

import (
	"bytes"
	"encoding/gob"
)

// ppuState is the gob-serializable snapshot of all PPU state, mirroring
// the teacher's save-state approach of a plain exported-field struct
// encoded with encoding/gob.
type ppuState struct {
	CGBMode                          bool
	VRAM                              [2][0x2000]byte
	VRAMBank                          byte
	OAM                               [160]byte
	LCDC, STAT                        byte
	SCY, SCX                          byte
	LY, LYC                           byte
	BGP, OBP0, OBP1                   byte
	WY, WX                            byte
	WinLineCounter                    byte
	WinLineCounterActive              bool
	BGPalRAM, ObjPalRAM               [64]byte
	BCPS, OCPS                        byte
	ObjPriorityMode                   byte
	Dot                               int
	Mode                              byte
	StatLine                          bool
}

func (p *PPU) SaveState() []byte {
	s := ppuState{
		CGBMode: p.cgbMode, VRAM: p.vram, VRAMBank: p.vramBank, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx, LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1, WY: p.wy, WX: p.wx,
		WinLineCounter: p.winLineCounter, WinLineCounterActive: p.winLineCounterActive,
		BGPalRAM: p.bgPalRAM, ObjPalRAM: p.objPalRAM, BCPS: p.bcps, OCPS: p.ocps,
		ObjPriorityMode: p.objPriorityMode, Dot: p.dot, Mode: p.mode, StatLine: p.statLine,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil
	}
	return buf.Bytes()
}

func (p *PPU) LoadState(data []byte) error {
	var s ppuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	p.cgbMode, p.vram, p.vramBank, p.oam = s.CGBMode, s.VRAM, s.VRAMBank, s.OAM
	p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc = s.LCDC, s.STAT, s.SCY, s.SCX, s.LY, s.LYC
	p.bgp, p.obp0, p.obp1, p.wy, p.wx = s.BGP, s.OBP0, s.OBP1, s.WY, s.WX
	p.winLineCounter, p.winLineCounterActive = s.WinLineCounter, s.WinLineCounterActive
	p.bgPalRAM, p.objPalRAM, p.bcps, p.ocps = s.BGPalRAM, s.ObjPalRAM, s.BCPS, s.OCPS
	p.objPriorityMode, p.dot, p.mode, p.statLine = s.ObjPriorityMode, s.Dot, s.Mode, s.StatLine
	return nil
}

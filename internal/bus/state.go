package bus

import (
	"bytes"
	"encoding/gob"

	"github.com/rcornwell/GB/internal/joypad"
	"github.com/rcornwell/GB/internal/serial"
	"github.com/rcornwell/GB/internal/timer"
)

// dmaState/hdmaState mirror dmaEngine/hdmaEngine with exported fields, since
// gob only serializes those.
type dmaState struct {
	Active  bool
	SrcPage byte
	Offset  int
	DelayM  int
	TAccum  int
}

type hdmaState struct {
	Active     bool
	HblankMode bool
	Src, Dst   uint16
	Remaining  int
	LineLeft   int
}

// State is the full gob-encodable snapshot of everything the bus owns
// directly, plus the encoded sub-states of every component it drives.
type State struct {
	WRAM     [8][0x1000]byte
	WRAMBank byte
	HRAM     [0x7F]byte
	IE, IF   byte

	BootROMEnabled   bool
	SpeedSwitchArmed bool
	DoubleSpeed      bool

	DMA         dmaState
	HDMA        hdmaState
	LastDMAByte byte
	DMALastPage byte

	PPU    []byte
	APU    []byte
	Timer  timer.State
	Serial serial.State
	Joypad joypad.State
}

func (b *Bus) snapshot() State {
	return State{
		WRAM:             b.wram,
		WRAMBank:         b.wramBank,
		HRAM:             b.hram,
		IE:               b.ie,
		IF:               b.ifReg,
		BootROMEnabled:   b.bootROMEnabled,
		SpeedSwitchArmed: b.speedSwitchArmed,
		DoubleSpeed:      b.doubleSpeed,
		DMA: dmaState{
			Active: b.dma.active, SrcPage: b.dma.srcPage,
			Offset: b.dma.offset, DelayM: b.dma.delayM, TAccum: b.dma.tAccum,
		},
		HDMA: hdmaState{
			Active: b.hdma.active, HblankMode: b.hdma.hblankMode,
			Src: b.hdma.src, Dst: b.hdma.dst,
			Remaining: b.hdma.remaining, LineLeft: b.hdma.lineLeft,
		},
		LastDMAByte: b.lastDMAByte,
		DMALastPage: b.dmaLastPage,
		PPU:         b.ppuDev.SaveState(),
		APU:         b.apuDev.SaveState(),
		Timer:       b.timerDev.SaveState(),
		Serial:      b.serialDev.SaveState(),
		Joypad:      b.joypadDev.SaveState(),
	}
}

func (b *Bus) restore(s State) {
	b.wram = s.WRAM
	b.wramBank = s.WRAMBank
	b.hram = s.HRAM
	b.ie = s.IE
	b.ifReg = s.IF
	b.bootROMEnabled = s.BootROMEnabled
	b.speedSwitchArmed = s.SpeedSwitchArmed
	b.doubleSpeed = s.DoubleSpeed
	b.dma = dmaEngine{
		active: s.DMA.Active, srcPage: s.DMA.SrcPage,
		offset: s.DMA.Offset, delayM: s.DMA.DelayM, tAccum: s.DMA.TAccum,
	}
	b.hdma = hdmaEngine{
		active: s.HDMA.Active, hblankMode: s.HDMA.HblankMode,
		src: s.HDMA.Src, dst: s.HDMA.Dst,
		remaining: s.HDMA.Remaining, lineLeft: s.HDMA.LineLeft,
	}
	b.lastDMAByte = s.LastDMAByte
	b.dmaLastPage = s.DMALastPage
	_ = b.ppuDev.LoadState(s.PPU)
	_ = b.apuDev.LoadState(s.APU)
	b.timerDev.LoadState(s.Timer)
	b.serialDev.LoadState(s.Serial)
	b.joypadDev.LoadState(s.Joypad)
}

// SaveState gob-encodes the full bus snapshot, including every component it
// drives.
func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(b.snapshot())
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState.
func (b *Bus) LoadState(data []byte) error {
	var s State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	b.restore(s)
	return nil
}

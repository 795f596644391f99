package ppu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type capturingSink struct {
	pixels []int
	frames int
}

func (c *capturingSink) BeginFrame() {}
func (c *capturingSink) DrawPixel(colorIndex, row, col int) {
	c.pixels = append(c.pixels, colorIndex)
}
func (c *capturingSink) EndFrame() { c.frames++ }

func runDots(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.DotTick()
	}
}

func TestPPU_ModeSequenceOneLine(t *testing.T) {
	p := New(false)
	p.CPUWrite(0xFF40, lcdcDisplayOn)
	require.Equal(t, byte(mode2OAM), p.Mode())

	runDots(p, 80)
	require.Equal(t, byte(mode3Draw), p.Mode())

	runDots(p, 300) // enough to finish the worst-case mode3 + reach mode0
	require.Equal(t, byte(mode0HBlank), p.Mode())
}

func TestPPU_VBlankAfter144Lines(t *testing.T) {
	p := New(false)
	p.CPUWrite(0xFF40, lcdcDisplayOn)
	sink := &capturingSink{}
	p.SetSink(sink)

	runDots(p, dotsPerLine*visibleLines)
	require.Equal(t, byte(mode1VBlank), p.Mode())
	require.Equal(t, 1, sink.frames)
	require.True(t, p.FrameReady())
}

func TestPPU_FullFrameEmitsExactPixelCount(t *testing.T) {
	p := New(false)
	p.CPUWrite(0xFF40, lcdcDisplayOn|lcdcBGWinEnable)
	sink := &capturingSink{}
	p.SetSink(sink)

	runDots(p, dotsPerLine*visibleLines)
	require.Equal(t, 160*144, len(sink.pixels))
}

func TestPPU_LYCInterruptRisingEdge(t *testing.T) {
	p := New(false)
	p.CPUWrite(0xFF40, lcdcDisplayOn)
	p.CPUWrite(0xFF45, 1) // LYC = 1
	p.CPUWrite(0xFF41, statLYCInterrupt)

	runDots(p, dotsPerLine) // advance to line 1
	require.True(t, p.PendingSTATIRQ())
	require.False(t, p.PendingSTATIRQ(), "interrupt is drained, not re-armed without a new edge")
}

func TestPPU_VRAMBlockedDuringMode3(t *testing.T) {
	p := New(false)
	p.CPUWrite(0xFF40, lcdcDisplayOn)
	p.CPUWrite(0x8000, 0x42)
	runDots(p, 80) // enter mode 3
	require.Equal(t, byte(0xFF), p.CPURead(0x8000))
}

func TestPPU_OAMScanFinds10SpritesMax(t *testing.T) {
	p := New(false)
	for i := 0; i < 20; i++ {
		base := uint16(i * 4)
		p.CPUWrite(0xFE00+base, 16) // Y=16 -> visible on line 0
		p.CPUWrite(0xFE00+base+1, 8)
		p.CPUWrite(0xFE00+base+2, byte(i))
		p.CPUWrite(0xFE00+base+3, 0)
	}
	p.CPUWrite(0xFF40, lcdcDisplayOn)
	p.scanOAM()
	require.Len(t, p.scanSprites, 10)
}

func TestPPU_SaveLoadStateRoundTrip(t *testing.T) {
	p := New(true)
	p.CPUWrite(0xFF47, 0xE4)
	data := p.SaveState()

	p2 := New(false)
	require.NoError(t, p2.LoadState(data))
	require.Equal(t, p.bgp, p2.bgp)
	require.Equal(t, p.cgbMode, p2.cgbMode)
}

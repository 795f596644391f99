package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/rcornwell/GB/internal/config"
	"github.com/rcornwell/GB/internal/joypad"
	"github.com/rcornwell/GB/internal/ppu"
	"github.com/rcornwell/GB/internal/system"
)

const screenW, screenH = 160, 144

// frameBuffer accumulates one PPU frame as RGBA8888 and implements
// ppu.FrameSink directly, so popAndEmit's per-dot DrawPixel writes land
// straight into the backing array ebiten.Image.WritePixels wants.
type frameBuffer struct {
	sys *system.System
	pix [screenW * screenH * 4]byte
}

func (f *frameBuffer) BeginFrame() {}
func (f *frameBuffer) DrawPixel(colorIndex, row, col int) {
	if row < 0 || row >= screenH || col < 0 || col >= screenW {
		return
	}
	c := f.sys.ResolveColor(colorIndex)
	i := (row*screenW + col) * 4
	f.pix[i], f.pix[i+1], f.pix[i+2], f.pix[i+3] = c.R, c.G, c.B, 0xFF
}
func (f *frameBuffer) EndFrame() {}

type buttonBinding struct {
	button joypad.Button
	key    ebiten.Key
	bound  bool
}

type game struct {
	sys   *system.System
	fb    *frameBuffer
	tex   *ebiten.Image
	ring  *audioRing
	binds []buttonBinding

	paused   bool
	fast     bool
	showMenu bool
	menuIdx  int

	savePath string
}

func newGame(sys *system.System, keys config.KeyBindings, ring *audioRing, savePath string) *game {
	fb := &frameBuffer{sys: sys}
	sys.SetFrameSink(fb)
	sys.SetAudioSink(ring)

	g := &game{sys: sys, fb: fb, ring: ring, savePath: savePath}
	add := func(b joypad.Button, name string) {
		k, ok := keyByName(name)
		g.binds = append(g.binds, buttonBinding{button: b, key: k, bound: ok})
	}
	add(joypad.A, keys.A)
	add(joypad.B, keys.B)
	add(joypad.Select, keys.Select)
	add(joypad.Start, keys.Start)
	add(joypad.Up, keys.Up)
	add(joypad.Down, keys.Down)
	add(joypad.Left, keys.Left)
	add(joypad.Right, keys.Right)
	return g
}

func (g *game) Update() error {
	for _, b := range g.binds {
		if !b.bound {
			continue
		}
		g.sys.SetButton(b.button, ebiten.IsKeyPressed(b.key))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	g.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.showMenu = !g.showMenu
	}
	if g.showMenu {
		g.updateMenu()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if err := g.saveScreenshot(); err != nil {
			logrus.WithError(err).Warn("screenshot failed")
		}
	}

	if !g.paused {
		reps := 1
		if g.fast {
			reps = 4
		}
		for i := 0; i < reps; i++ {
			g.runOneFrame()
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.runOneFrame()
	}

	g.sys.AdvanceRTC()
	return nil
}

// runOneFrame drives Step until the PPU finishes the frame it was
// mid-way through, since Step is now single-instruction granular rather
// than the bulk per-frame cycle budget an older design would use.
func (g *game) runOneFrame() {
	before := g.sys.FramesCompleted()
	for g.sys.FramesCompleted() == before {
		g.sys.Step()
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.tex == nil {
		g.tex = ebiten.NewImage(screenW, screenH)
	}
	g.tex.WritePixels(g.fb.pix[:])
	screen.DrawImage(g.tex, nil)

	if g.showMenu {
		g.drawMenu(screen)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) { return screenW, screenH }

func (g *game) saveScreenshot() error {
	img := &image.RGBA{
		Pix:    append([]byte(nil), g.fb.pix[:]...),
		Stride: 4 * screenW,
		Rect:   image.Rect(0, 0, screenW, screenH),
	}
	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

var _ ppu.FrameSink = (*frameBuffer)(nil)

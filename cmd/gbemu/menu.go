package main

import (
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
)

// updateMenu and drawMenu are a deliberately scoped-down version of the
// original overlay: one save-state slot, no ROM browser or in-app key
// rebinding UI, since those are pure interface chrome rather than
// emulation behavior.
func (g *game) updateMenu() {
	const items = 3 // Save, Load, Close
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && g.menuIdx > 0 {
		g.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && g.menuIdx < items-1 {
		g.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch g.menuIdx {
		case 0:
			if err := os.WriteFile(g.savePath+".state", g.sys.SaveState(), 0o644); err != nil {
				logrus.WithError(err).Warn("save state failed")
			}
		case 1:
			if data, err := os.ReadFile(g.savePath + ".state"); err == nil {
				if err := g.sys.LoadState(data); err != nil {
					logrus.WithError(err).Warn("load state failed")
				}
			}
		case 2:
			g.showMenu = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.showMenu = false
	}
}

func (g *game) drawMenu(screen *ebiten.Image) {
	overlay := ebiten.NewImage(screenW, screenH)
	overlay.Fill(color.RGBA{0, 0, 0, 160})
	screen.DrawImage(overlay, nil)

	lines := []string{"Menu:", "  Save state", "  Load state", "  Close"}
	for i, s := range lines {
		prefix := "  "
		if i == g.menuIdx+1 {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 8, 8+i*12)
	}
}

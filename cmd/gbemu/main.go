// Command gbemu is the windowed Game Boy / Game Boy Color front end: an
// ebiten.Game driving a system.System, with keyboard input, an oto audio
// queue, and TOML-file preferences.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/rcornwell/GB/internal/config"
	"github.com/rcornwell/GB/internal/system"
)

type CLI struct {
	ROM     string `arg:"" name:"rom" help:"path to the ROM (.gb/.gbc)" type:"existingfile"`
	BootROM string `name:"bootrom" help:"optional boot ROM to execute from 0x0000"`
	CGB     bool   `name:"cgb" help:"force CGB hardware mode, overriding the config default"`
	DMG     bool   `name:"dmg" help:"force DMG hardware mode, overriding the config default"`

	Config string `name:"config" default:"gbemu.toml" help:"preferences file"`
	Scale  int    `name:"scale" default:"0" help:"window scale (0 = use config)"`
	Title  string `name:"title" default:"gbemu" help:"window title"`
	NoSave bool   `name:"no-save" help:"don't load or persist battery RAM"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("gbemu"),
		kong.Description("Game Boy / Game Boy Color emulator"),
		kong.UsageOnError())

	cfg, existed := config.Load(cli.Config)
	if !existed {
		if err := config.Save(cfg, cli.Config); err != nil {
			logrus.WithError(err).Warn("could not write default config")
		}
	}

	rom, err := os.ReadFile(cli.ROM)
	if err != nil {
		logrus.WithError(err).Fatal("read rom")
	}

	mode := system.DMG
	if cfg.DefaultCGB {
		mode = system.CGB
	}
	if cli.CGB {
		mode = system.CGB
	}
	if cli.DMG {
		mode = system.DMG
	}

	savePath := saveFilePath(cfg, cli.ROM)
	var save []byte
	if !cli.NoSave {
		if data, err := os.ReadFile(savePath); err == nil {
			save = data
		}
	}

	sys, err := system.New(rom, save, mode)
	if err != nil {
		logrus.WithError(err).Fatal("construct system")
	}

	bootPath := cli.BootROM
	if bootPath == "" {
		if mode == system.CGB {
			bootPath = cfg.CGBBootROMPath
		} else {
			bootPath = cfg.BootROMPath
		}
	}
	if bootPath != "" {
		if boot, err := os.ReadFile(bootPath); err == nil {
			sys.UseBootROM(boot)
		} else {
			logrus.WithError(err).Warn("boot ROM unavailable, starting from post-boot state")
		}
	}

	scale := cli.Scale
	if scale <= 0 {
		scale = cfg.WindowScale
	}
	if scale <= 0 {
		scale = 3
	}
	ebiten.SetWindowTitle(cli.Title)
	ebiten.SetWindowSize(screenW*scale, screenH*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	ring := newAudioRing(sampleRateHz / 8)
	player, err := newAudioPlayer(ring)
	if err != nil {
		logrus.WithError(err).Warn("audio disabled")
	} else {
		defer player.Close()
	}

	g := newGame(sys, cfg.Keys, ring, savePath)
	if err := ebiten.RunGame(g); err != nil {
		logrus.WithError(err).Error("emulation stopped")
	}

	if !cli.NoSave {
		if data := sys.SaveRAM(); data != nil {
			if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err == nil {
				if err := os.WriteFile(savePath, data, 0o644); err != nil {
					logrus.WithError(err).Warn("could not write save RAM")
				}
			}
		}
	}
}

func saveFilePath(cfg config.Config, romPath string) string {
	base := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath)) + ".sav"
	if cfg.SaveDir == "" {
		return base
	}
	return filepath.Join(cfg.SaveDir, base)
}

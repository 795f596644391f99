// Package config loads cmd/gbemu's on-disk preferences: boot ROM paths, the
// save directory, default color mode, and key bindings, as a config.toml
// file.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// KeyBindings maps each physical button to a keyboard key name (as
// understood by cmd/gbemu's ebiten input layer, e.g. "Z", "X", "Enter").
type KeyBindings struct {
	A      string `toml:"a"`
	B      string `toml:"b"`
	Select string `toml:"select"`
	Start  string `toml:"start"`
	Up     string `toml:"up"`
	Down   string `toml:"down"`
	Left   string `toml:"left"`
	Right  string `toml:"right"`
}

// Config is the full set of user-editable preferences.
type Config struct {
	BootROMPath    string      `toml:"boot_rom_path"`
	CGBBootROMPath string      `toml:"cgb_boot_rom_path"`
	SaveDir        string      `toml:"save_dir"`
	DefaultCGB     bool        `toml:"default_cgb"`
	WindowScale    int         `toml:"window_scale"`
	Keys           KeyBindings `toml:"keys"`
}

// Default returns the preferences a fresh install starts with.
func Default() Config {
	return Config{
		SaveDir:     "saves",
		DefaultCGB:  true,
		WindowScale: 3,
		Keys: KeyBindings{
			A: "Z", B: "X", Select: "Backspace", Start: "Enter",
			Up: "Up", Down: "Down", Left: "Left", Right: "Right",
		},
	}
}

// Load reads path, falling back to Default() (and reporting so via the
// second return value) if the file does not exist or fails to parse.
func Load(path string) (Config, bool) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, false
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), false
	}
	return cfg, true
}

// Save writes cfg to path as TOML, creating or truncating the file.
func Save(cfg Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

package system

import (
	"bytes"
	"encoding/gob"

	"github.com/rcornwell/GB/internal/cpu"
)

type snapshot struct {
	Bus []byte
	CPU cpu.State
}

// SaveState gob-encodes the entire machine (bus, every peripheral it owns,
// and the CPU register file). Cartridge ROM/RAM banking position is part
// of the bus snapshot; the ROM image itself is not — callers restore onto
// a System already constructed from the same ROM.
func (s *System) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(snapshot{Bus: s.bus.SaveState(), CPU: s.cpu.SaveState()})
	return buf.Bytes()
}

// LoadState restores a snapshot produced by SaveState onto this System.
func (s *System) LoadState(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	if err := s.bus.LoadState(snap.Bus); err != nil {
		return err
	}
	s.cpu.LoadState(snap.CPU)
	return nil
}

// Package system wires Bus, CPU, and every peripheral into the single
// object graph a host driver steps. This is the only layer of the core
// allowed to log (cartridge diagnostics, save-file mismatches) or touch a
// wall clock (MBC3 RTC advance) — cpu/ppu/apu/bus/timer/serial/joypad stay
// free of both, per the core's propagation policy.
package system

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rcornwell/GB/internal/apu"
	"github.com/rcornwell/GB/internal/bus"
	"github.com/rcornwell/GB/internal/cart"
	"github.com/rcornwell/GB/internal/cpu"
	"github.com/rcornwell/GB/internal/joypad"
	"github.com/rcornwell/GB/internal/ppu"
	"github.com/rcornwell/GB/internal/serial"
	"github.com/rcornwell/GB/internal/timer"
)

// ColorMode selects which hardware personality the System boots as.
type ColorMode int

const (
	DMG ColorMode = iota
	CGB
)

// System owns the full component graph for one running machine.
type System struct {
	bus  *bus.Bus
	cpu  *cpu.CPU
	cart cart.Cartridge

	pressed uint8 // current held-button bitmask, indexed by joypad.Button
	frames  uint64
}

// New constructs a System for rom, optionally seeding cartridge RAM (and,
// for MBC3, the RTC) from a previously saved blob, in hardware personality
// mode. Registers start in the DMG post-boot state, except that A is 0x11
// in CGB mode; the other CGB post-boot register values are not applied. Call
// UseBootROM before the first Step to execute a boot ROM image from 0x0000
// instead.
func New(rom []byte, save []byte, mode ColorMode) (*System, error) {
	c, err := cart.NewCartridge(rom, time.Now().Unix())
	if err != nil {
		logrus.WithError(err).Warn("cartridge load failed")
		return nil, err
	}
	if len(save) > 0 {
		applySave(c, save)
	}

	cgb := mode == CGB
	p := ppu.New(cgb)
	a := apu.New()
	t := timer.New()
	s := serial.New(serial.NullPeer{})
	j := joypad.New()
	b := bus.New(cgb, c, p, a, t, s, j)

	cp := cpu.New(b)
	cp.ResetNoBoot()
	if cgb {
		cp.A = 0x11 // CGB hardware always reports this post-boot, per Pan Docs
	}

	h := c.Header()
	logrus.WithFields(logrus.Fields{
		"title":   h.Title,
		"mapper":  h.Mapper,
		"cgb":     cgb,
		"battery": h.HasBattery,
		"rtc":     h.HasRTC,
	}).Info("cartridge loaded")

	return &System{bus: b, cpu: cp, cart: c}, nil
}

// applySave hands a previously-saved RAM(+RTC) blob to the cartridge. The
// trailing 48 bytes are the RTC snapshot when the mapper has one, per the
// save-file format's MBC3 trailer.
func applySave(c cart.Cartridge, data []byte) {
	bb, ok := c.(cart.BatteryBacked)
	if !ok {
		logrus.Warn("save data supplied for a cartridge with no battery-backed RAM; ignoring")
		return
	}
	if rtc, ok := c.(cart.RealTimeClock); ok && len(data) >= 48 {
		ramLen := len(data) - 48
		bb.LoadRAM(data[:ramLen])
		rtc.LoadRTC(data[ramLen:])
		return
	}
	bb.LoadRAM(data)
}

// UseBootROM switches execution to start from the given boot ROM image at
// 0x0000 instead of the post-boot state New already applied.
func (s *System) UseBootROM(data []byte) {
	s.bus.SetBootROM(data)
	s.cpu.SP = 0xFFFE
	s.cpu.PC = 0x0000
	s.cpu.IME = false
}

// SetFrameSink wires the host's pixel sink; nil restores the no-op sink.
func (s *System) SetFrameSink(sink ppu.FrameSink) { s.bus.PPU().SetSink(sink) }

// SetAudioSink wires the host's sample sink; nil restores the no-op sink.
func (s *System) SetAudioSink(sink apu.SampleSink) { s.bus.APU().SetSink(sink) }

// Serial exposes the serial port so a host can attach a Peer (link-cable
// emulation) or a sniffer (test-ROM output capture).
func (s *System) Serial() *serial.Serial { return s.bus.Serial() }

// ResolveColor turns a FrameSink.DrawPixel colorIndex into an RGB triple a
// host framebuffer can write directly.
func (s *System) ResolveColor(index int) ppu.RGBColor { return s.bus.PPU().ResolveColor(index) }

// Step runs one CPU instruction (or interrupt dispatch), which drives every
// M-cycle of bus activity that instruction implies.
func (s *System) Step() {
	s.cpu.Step()
	if s.bus.PPU().FrameReady() {
		s.bus.PPU().ClearFrameReady()
		s.frames++
	}
}

// SetButton updates one button's held state and raises the joypad
// interrupt if this is a high-to-low (pressed) edge on a currently
// selected line.
func (s *System) SetButton(b joypad.Button, pressed bool) {
	if pressed {
		s.pressed |= 1 << uint(b)
	} else {
		s.pressed &^= 1 << uint(b)
	}
	if s.bus.Joypad().SetButtons(s.pressed) {
		s.bus.RequestJoypadIRQ()
	}
	if pressed {
		s.cpu.WakeFromStop()
	}
}

// AdvanceRTC feeds the current wall-clock time to the cartridge's
// real-time clock, a no-op for mappers without one. The driver calls this
// at whatever cadence it likes (once per frame is plenty); it is not
// called internally because doing so would give the core a wall-clock
// dependency.
func (s *System) AdvanceRTC() {
	s.bus.AdvanceRTC(time.Now().Unix())
}

// SaveRAM returns the cartridge's battery-backed RAM, with the MBC3 RTC
// trailer appended when present, or nil if the cartridge has no battery.
func (s *System) SaveRAM() []byte {
	bb, ok := s.cart.(cart.BatteryBacked)
	if !ok || !s.cart.Header().HasBattery {
		return nil
	}
	data := bb.SaveRAM()
	if rtc, ok := s.cart.(cart.RealTimeClock); ok {
		data = append(data, rtc.SaveRTC()...)
	}
	return data
}

// CPUState reports the CPU's current register file, for diagnostics (trace
// dumps, test-ROM runners). There is no equivalent byte-peek accessor: the
// bus ticks every peripheral on each Read, so a "peek at the next opcode"
// call would itself advance time and desync the very trace it's printing.
func (s *System) CPUState() cpu.State { return s.cpu.SaveState() }

// FramesCompleted returns the number of frames the PPU has finished
// rendering since construction.
func (s *System) FramesCompleted() uint64 { return s.frames }

// CGBMode reports whether this System is running as CGB hardware.
func (s *System) CGBMode() bool { return s.bus.CGBMode() }

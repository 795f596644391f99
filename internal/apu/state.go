package apu

import (
	"bytes"
	"encoding/gob"
)

// gob only serializes exported fields, so each channel gets an explicit
// exported mirror struct rather than being encoded directly — mirrors the
// teacher's own save-state pattern of a parallel exported-field snapshot
// type alongside the working (unexported-field) runtime struct.

type envelopeState struct {
	InitialVolume, Direction, Period, Volume, Timer byte
}

func snapshotEnvelope(e envelope) envelopeState {
	return envelopeState{e.initialVolume, e.direction, e.period, e.volume, e.timer}
}

func (s envelopeState) restore() envelope {
	return envelope{initialVolume: s.InitialVolume, direction: s.Direction, period: s.Period, volume: s.Volume, timer: s.Timer}
}

type squareState struct {
	SweepEnabled                     bool
	SweepPeriod, SweepDirection      byte
	SweepShift, SweepTimer           byte
	ShadowFreq                       uint16
	Duty                             byte
	Freq                             uint16
	Timer                            int
	DutyPos                          byte
	LengthCounter                    byte
	LengthEnabled                    bool
	Env                              envelopeState
	Enabled                          bool
}

func snapshotSquare(c squareChannel) squareState {
	return squareState{
		SweepEnabled: c.sweepEnabled, SweepPeriod: c.sweepPeriod, SweepDirection: c.sweepDirection,
		SweepShift: c.sweepShift, SweepTimer: c.sweepTimer, ShadowFreq: c.shadowFreq,
		Duty: c.duty, Freq: c.freq, Timer: c.timer, DutyPos: c.dutyPos,
		LengthCounter: c.lengthCounter, LengthEnabled: c.lengthEnabled,
		Env: snapshotEnvelope(c.env), Enabled: c.enabled,
	}
}

func (s squareState) restore() squareChannel {
	return squareChannel{
		sweepEnabled: s.SweepEnabled, sweepPeriod: s.SweepPeriod, sweepDirection: s.SweepDirection,
		sweepShift: s.SweepShift, sweepTimer: s.SweepTimer, shadowFreq: s.ShadowFreq,
		duty: s.Duty, freq: s.Freq, timer: s.Timer, dutyPos: s.DutyPos,
		lengthCounter: s.LengthCounter, lengthEnabled: s.LengthEnabled,
		env: s.Env.restore(), enabled: s.Enabled,
	}
}

type waveState struct {
	Enabled, DacEnable   bool
	Freq                 uint16
	Timer                int
	LengthCounter        uint16
	LengthEnabled        bool
	VolumeCode, Position byte
	SampleRAM            [16]byte
	LastReadByte         byte
}

func snapshotWave(c waveChannel) waveState {
	return waveState{
		Enabled: c.enabled, DacEnable: c.dacEnable, Freq: c.freq, Timer: c.timer,
		LengthCounter: c.lengthCounter, LengthEnabled: c.lengthEnabled,
		VolumeCode: c.volumeCode, Position: c.position, SampleRAM: c.sampleRAM,
		LastReadByte: c.lastReadByte,
	}
}

func (s waveState) restore() waveChannel {
	return waveChannel{
		enabled: s.Enabled, dacEnable: s.DacEnable, freq: s.Freq, timer: s.Timer,
		lengthCounter: s.LengthCounter, lengthEnabled: s.LengthEnabled,
		volumeCode: s.VolumeCode, position: s.Position, sampleRAM: s.SampleRAM,
		lastReadByte: s.LastReadByte,
	}
}

type noiseState struct {
	Enabled                          bool
	LengthCounter                    byte
	LengthEnabled                    bool
	Env                              envelopeState
	ClockShift, WidthMode, DivisorCode byte
	Lfsr                             uint16
	Timer                            int
}

func snapshotNoise(c noiseChannel) noiseState {
	return noiseState{
		Enabled: c.enabled, LengthCounter: c.lengthCounter, LengthEnabled: c.lengthEnabled,
		Env: snapshotEnvelope(c.env), ClockShift: c.clockShift, WidthMode: c.widthMode,
		DivisorCode: c.divisorCode, Lfsr: c.lfsr, Timer: c.timer,
	}
}

func (s noiseState) restore() noiseChannel {
	return noiseChannel{
		enabled: s.Enabled, lengthCounter: s.LengthCounter, lengthEnabled: s.LengthEnabled,
		env: s.Env.restore(), clockShift: s.ClockShift, widthMode: s.WidthMode,
		divisorCode: s.DivisorCode, lfsr: s.Lfsr, timer: s.Timer,
	}
}

type apuState struct {
	Ch1, Ch2            squareState
	Ch3                 waveState
	Ch4                 noiseState
	MasterEnable        bool
	NR50, NR51          byte
	SeqStep             int
	SeqDivBit           bool
	SampleCounter       int
	Clock               uint64
	PrevLeft, PrevRight int32
}

func (a *APU) SaveState() []byte {
	s := apuState{
		Ch1: snapshotSquare(a.ch1), Ch2: snapshotSquare(a.ch2),
		Ch3: snapshotWave(a.ch3), Ch4: snapshotNoise(a.ch4),
		MasterEnable: a.masterEnable, NR50: a.nr50, NR51: a.nr51,
		SeqStep: a.seqStep, SeqDivBit: a.seqDivBit,
		SampleCounter: a.sampleCounter, Clock: a.clock,
		PrevLeft: a.prevLeft, PrevRight: a.prevRight,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil
	}
	return buf.Bytes()
}

func (a *APU) LoadState(data []byte) error {
	var s apuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	a.ch1, a.ch2 = s.Ch1.restore(), s.Ch2.restore()
	a.ch3, a.ch4 = s.Ch3.restore(), s.Ch4.restore()
	a.masterEnable, a.nr50, a.nr51 = s.MasterEnable, s.NR50, s.NR51
	a.seqStep, a.seqDivBit = s.SeqStep, s.SeqDivBit
	a.sampleCounter, a.clock = s.SampleCounter, s.Clock
	a.prevLeft, a.prevRight = s.PrevLeft, s.PrevRight
	return nil
}

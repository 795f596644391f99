// Package apu implements the Game Boy's audio processing unit: four sound
// channels, the 512 Hz frame sequencer, NR50/NR51 mixing, and band-limited
// resampling into a 32768 Hz sample sink via github.com/arl/blip.
package apu

import "github.com/arl/blip"

// SampleSink is the out-of-scope host audio device queue.
type SampleSink interface {
	PushSample(left, right int16)
}

type nullSink struct{}

func (nullSink) PushSample(left, right int16) {}

const (
	gbClockHz    = 4194304
	sampleRateHz = 32768
	// The bus delivers one T-cycle at a time; every 128 T-cycles at the
	// normal (non-double-speed) clock rate yields 32768 samples/sec.
	ticksPerSample = gbClockHz / sampleRateHz
)

// APU owns all four channels, the register file, and the stereo resampler
// pair.
type APU struct {
	ch1 squareChannel
	ch2 squareChannel
	ch3 waveChannel
	ch4 noiseChannel

	masterEnable bool

	nr50 byte // master volume
	nr51 byte // panning

	seqStep      int
	seqDivBit    bool // previous state of the tapped DIV bit for edge detect
	divCounter   uint16
	doubleSpeed  bool

	sampleCounter int
	clock         uint64

	bufLeft, bufRight   *blip.Buffer
	prevLeft, prevRight int32

	sink SampleSink
}

func New() *APU {
	a := &APU{sink: nullSink{}}
	a.bufLeft = blip.NewBuffer(sampleRateHz)
	a.bufRight = blip.NewBuffer(sampleRateHz)
	a.bufLeft.SetRates(float64(gbClockHz), float64(sampleRateHz))
	a.bufRight.SetRates(float64(gbClockHz), float64(sampleRateHz))
	return a
}

func (a *APU) SetSink(sink SampleSink) {
	if sink == nil {
		sink = nullSink{}
	}
	a.sink = sink
}

func (a *APU) SetDoubleSpeed(v bool) { a.doubleSpeed = v }

// Tick advances the APU by one real T-cycle (not doubled in CGB speed mode
// — the bus is responsible for calling Tick once per physical T-cycle
// regardless of CPU speed, matching the hardware fact that the audio
// circuitry free-runs at the fixed 4.194304 MHz dot clock).
func (a *APU) Tick(divRegister uint16) {
	if !a.masterEnable {
		return
	}

	a.ch1.tickFrequency()
	a.ch2.tickFrequency()
	a.ch3.tickFrequency()
	a.ch4.tickFrequency()

	a.clock++
	a.clockSequencer(divRegister)
	a.clockSampler()
}

// clockSequencer taps DIV bit 12 (the spec's 512 Hz source; CGB double
// speed uses bit 13 to keep the sequencer itself at 512 Hz even though the
// CPU-visible DIV now increments twice as fast) and advances the 8-step
// table on its falling edge.
func (a *APU) clockSequencer(div uint16) {
	tapBit := uint(12)
	if a.doubleSpeed {
		tapBit = 13
	}
	bit := (div>>tapBit)&1 != 0
	if a.seqDivBit && !bit {
		a.stepSequencer()
	}
	a.seqDivBit = bit
}

func (a *APU) stepSequencer() {
	switch a.seqStep {
	case 0, 2, 4, 6:
		a.ch1.clockLength()
		a.ch2.clockLength()
		a.ch3.clockLength()
		a.ch4.clockLength()
	}
	switch a.seqStep {
	case 2, 6:
		a.ch1.clockSweep()
	}
	if a.seqStep == 7 {
		a.ch1.env.clock()
		a.ch2.env.clock()
		a.ch4.env.clock()
	}
	a.seqStep = (a.seqStep + 1) & 7
}

// clockSampler mixes the current channel amplitudes into the blip resamplers
// on every T-cycle the output would audibly change, and drains exactly one
// sample pair every 128 T-cycles (32768 Hz).
func (a *APU) clockSampler() {
	left, right := a.mix()
	if left != a.prevLeft {
		a.bufLeft.AddDelta(a.clock, left-a.prevLeft)
		a.prevLeft = left
	}
	if right != a.prevRight {
		a.bufRight.AddDelta(a.clock, right-a.prevRight)
		a.prevRight = right
	}

	a.sampleCounter++
	if a.sampleCounter < ticksPerSample {
		return
	}
	a.sampleCounter = 0

	a.bufLeft.EndFrame(int(a.clock))
	a.bufRight.EndFrame(int(a.clock))

	var outL, outR [1]int16
	nl := a.bufLeft.ReadSamples(outL[:], 1, false)
	nr := a.bufRight.ReadSamples(outR[:], 1, false)
	var l, r int16
	if nl > 0 {
		l = outL[0]
	}
	if nr > 0 {
		r = outR[0]
	}
	a.sink.PushSample(l, r)
}

// mix sums each enabled channel's amplitude per NR51 panning and scales by
// NR50's 3-bit master volumes (0 mutes, 7 passes through at full scale).
func (a *APU) mix() (left, right int32) {
	volL := int32((a.nr50 >> 4) & 0x07)
	volR := int32(a.nr50 & 0x07)

	amps := [4]int16{a.ch1.amplitude(), a.ch2.amplitude(), a.ch3.amplitude(), a.ch4.amplitude()}

	var sumL, sumR int32
	for i := 0; i < 4; i++ {
		amp := int32(amps[i])
		if amp == 0 {
			continue
		}
		if a.nr51&(1<<(i+4)) != 0 {
			sumL += amp
		}
		if a.nr51&(1<<i) != 0 {
			sumR += amp
		}
	}

	return sumL * volL * 128, sumR * volR * 128
}

package main

import (
	"encoding/binary"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const sampleRateHz = 32768

// audioRing is the apu.SampleSink the core pushes stereo frames into and
// the io.Reader oto.Player pulls bytes from. Overflow drops the oldest
// frame rather than blocking the CPU goroutine; underflow pads with
// silence rather than stalling oto's callback.
type audioRing struct {
	mu         sync.Mutex
	buf        []int16 // interleaved L,R
	head, tail int
	fill       int
}

func newAudioRing(frames int) *audioRing {
	return &audioRing{buf: make([]int16, frames*2)}
}

func (r *audioRing) capacityFrames() int { return len(r.buf) / 2 }

// PushSample implements apu.SampleSink.
func (r *audioRing) PushSample(left, right int16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	capFrames := r.capacityFrames()
	if r.fill == capFrames {
		r.head = (r.head + 1) % capFrames // drop oldest
		r.fill--
	}
	r.buf[r.tail*2] = left
	r.buf[r.tail*2+1] = right
	r.tail = (r.tail + 1) % capFrames
	r.fill++
}

// Read implements io.Reader for oto.Player, converting pulled frames to
// signed 16-bit little-endian stereo.
func (r *audioRing) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}

	r.mu.Lock()
	capFrames := r.capacityFrames()
	n := r.fill
	if n > frames {
		n = frames
	}
	i := 0
	for ; i < n; i++ {
		idx := (r.head + i) % capFrames
		binary.LittleEndian.PutUint16(p[i*4:], uint16(r.buf[idx*2]))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r.buf[idx*2+1]))
	}
	r.head = (r.head + n) % capFrames
	r.fill -= n
	r.mu.Unlock()

	for ; i < frames; i++ { // underrun: pad with silence
		binary.LittleEndian.PutUint16(p[i*4:], 0)
		binary.LittleEndian.PutUint16(p[i*4+2:], 0)
	}
	return frames * 4, nil
}

// newAudioPlayer starts an oto context and a player reading from ring.
// Ring's capacity (set by the caller, ~125ms at the default size) absorbs
// scheduling jitter between the CPU goroutine filling it and oto's own
// callback rate.
func newAudioPlayer(ring *audioRing) (*oto.Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRateHz,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	player := ctx.NewPlayer(ring)
	player.Play()
	return player, nil
}

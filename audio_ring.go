// audio_ring.go - lock-protected PCM ring buffer shared between the
// emulation goroutine (producer, one frame's samples at a time) and the
// audio backend's Read callback (consumer).
package main

import "sync"

// AudioRing is a simple circular buffer of little-endian int16 mono PCM.
type AudioRing struct {
	mu   sync.Mutex
	buf  []byte
	r, w int
	full bool
}

// NewAudioRing allocates a ring sized to hold roughly ringFrames frames'
// worth of samples at mixerSampleRate.
func NewAudioRing(seconds float64) *AudioRing {
	n := int(float64(mixerSampleRate)*seconds) * 2
	if n < 4096 {
		n = 4096
	}
	return &AudioRing{buf: make([]byte, n)}
}

// WriteSamples pushes int16 samples into the ring, dropping the oldest
// data on overflow rather than blocking the emulation loop.
func (r *AudioRing) WriteSamples(samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range samples {
		r.buf[r.w] = byte(s)
		r.buf[(r.w+1)%len(r.buf)] = byte(s >> 8)
		r.w = (r.w + 2) % len(r.buf)
		if r.full {
			r.r = (r.r + 2) % len(r.buf)
		}
		if r.w == r.r {
			r.full = true
		}
	}
}

// Read drains up to len(p) bytes into p, zero-filling any shortfall so
// the audio backend never stalls waiting for emulation to catch up.
func (r *AudioRing) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	avail := r.available()
	n := len(p)
	if n > avail {
		n = avail
	}
	for i := 0; i < n; i++ {
		p[i] = r.buf[(r.r+i)%len(r.buf)]
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	r.r = (r.r + n) % len(r.buf)
	if n > 0 {
		r.full = false
	}
	return len(p), nil
}

func (r *AudioRing) available() int {
	if r.full {
		return len(r.buf)
	}
	if r.w >= r.r {
		return r.w - r.r
	}
	return len(r.buf) - r.r + r.w
}

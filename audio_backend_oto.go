//go:build !headless

// audio_backend_oto.go - oto v3 audio output: the player pulls int16
// mono PCM straight from the AudioRing the mixer fills once per
// emulated frame.

package main

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	ring    *AudioRing
	started bool
	mutex   sync.Mutex
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   40 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoPlayer{ctx: ctx}, nil
}

// SetupPlayer binds the ring buffer the mixer writes into.
func (op *OtoPlayer) SetupPlayer(ring *AudioRing) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.ring = ring
	op.player = op.ctx.NewPlayer(op)
}

// Read implements io.Reader for oto.NewPlayer.
func (op *OtoPlayer) Read(p []byte) (int, error) {
	if op.ring == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	return op.ring.Read(p)
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.started && op.player != nil {
		op.player.Close()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}

//go:build alsa && !headless

// audio_backend_alsa.go - direct ALSA output via cgo: a pump goroutine
// drains the same AudioRing the oto backend reads, as S16_LE mono.
// Built with -tags alsa on hosts where oto's pipewire path misbehaves.

package main

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;
    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;
    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_S16_LE);
    if (err < 0) return err;
    err = snd_pcm_hw_params_set_channels(handle, params, 1);
    if (err < 0) return err;
    err = snd_pcm_hw_params_set_rate_near(handle, params, &rate, 0);
    if (err < 0) return err;
    return snd_pcm_hw_params(handle, params);
}

static int writePCM(snd_pcm_t* handle, short* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

type ALSAPlayer struct {
	handle  *C.snd_pcm_t
	ring    *AudioRing
	started bool
	mutex   sync.Mutex
	done    chan struct{}
}

func NewALSAPlayer(sampleRate int) (*ALSAPlayer, error) {
	dev := C.CString("default")
	defer C.free(unsafe.Pointer(dev))

	var cerr C.int
	handle := C.openPCM(dev, &cerr)
	if cerr < 0 {
		return nil, fmt.Errorf("failed to open PCM device: %s", C.GoString(C.snd_strerror(cerr)))
	}
	if cerr = C.setupPCM(handle, C.uint(sampleRate)); cerr < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("failed to setup PCM: %s", C.GoString(C.snd_strerror(cerr)))
	}
	return &ALSAPlayer{handle: handle}, nil
}

// SetupPlayer binds the ring buffer the mixer writes into.
func (ap *ALSAPlayer) SetupPlayer(ring *AudioRing) {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	ap.ring = ring
}

func (ap *ALSAPlayer) IsStarted() bool {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.started
}

// Start launches the pump goroutine that drains the ring into ALSA in
// 20ms chunks, re-preparing the device on underrun (EPIPE).
func (ap *ALSAPlayer) Start() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	if ap.started || ap.ring == nil {
		return
	}
	ap.started = true
	ap.done = make(chan struct{})
	go ap.pump(ap.done)
}

func (ap *ALSAPlayer) pump(done chan struct{}) {
	const chunkFrames = mixerSampleRate / 50
	buf := make([]byte, chunkFrames*2)
	for {
		select {
		case <-done:
			return
		default:
		}
		ap.ring.Read(buf)
		frames := C.writePCM(ap.handle, (*C.short)(unsafe.Pointer(&buf[0])), C.int(chunkFrames))
		if frames == -C.EPIPE {
			C.snd_pcm_prepare(ap.handle)
		}
	}
}

func (ap *ALSAPlayer) Stop() {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	if ap.started {
		ap.started = false
		close(ap.done)
	}
}

func (ap *ALSAPlayer) Close() {
	ap.Stop()
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	if ap.handle != nil {
		C.closePCM(ap.handle)
		ap.handle = nil
	}
}

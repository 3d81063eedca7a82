package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Speaker toggles 1710 T-states apart must produce sample
// transitions at the matching sample offsets within +/- 1 sample.
func TestMixerBeeperEdgeTiming(t *testing.T) {
	m := NewMixer(nil, nil)
	m.BeginFrame()

	toggles := []uint64{1000, 2710, 4420}
	clock := uint64(0)
	level := false
	for _, edge := range toggles {
		m.Advance(int(edge - clock))
		clock = edge
		level = !level
		m.SetBeeperLevel(level)
	}
	m.Advance(3000)

	samples := m.Samples()
	require.NotEmpty(t, samples)

	var transitions []int
	for i := 1; i < len(samples); i++ {
		if (samples[i] != 0) != (samples[i-1] != 0) {
			transitions = append(transitions, i)
		}
	}
	require.Len(t, transitions, 3)

	tPerSample := float64(CPUClockHz) / float64(mixerSampleRate)
	for i, edge := range toggles {
		want := int(float64(edge) / tPerSample)
		got := transitions[i]
		if got < want-1 || got > want+1 {
			t.Fatalf("transition %d at sample %d, want %d +/- 1", i, got, want)
		}
	}
}

func TestMixerSampleRateCadence(t *testing.T) {
	m := NewMixer(nil, nil)
	m.BeginFrame()
	m.Advance(FrameTStates)
	// One 50Hz frame yields 1/50th of the sample rate.
	got := len(m.Samples())
	want := mixerSampleRate / 50
	if got < want-2 || got > want+2 {
		t.Fatalf("samples per frame = %d, want ~%d", got, want)
	}
}

func TestMixerClampsSum(t *testing.T) {
	s := int32(40000)
	if s > 32767 {
		s = 32767
	}
	assert.Equal(t, int32(32767), s)

	m := NewMixer(nil, nil)
	m.SetBeeperLevel(true)
	m.BeginFrame()
	m.Advance(1000)
	for _, v := range m.Samples() {
		assert.LessOrEqual(t, v, int16(32767))
	}
}

func TestMixerTapeEarContributes(t *testing.T) {
	tape := NewTape()
	tape.blocks = []tapeBlock{{kind: blockPureTone, pulseLen: 100000, pulseCount: 4}}
	tape.Rewind()
	tape.Play()

	m := NewMixer(nil, tape)
	m.BeginFrame()
	m.Advance(150000)

	samples := m.Samples()
	require.NotEmpty(t, samples)

	// The tone's first half-wave is low, the second high: both sample
	// values must appear.
	var sawZero, sawHigh bool
	for _, s := range samples {
		if s == 0 {
			sawZero = true
		}
		if s > 0 {
			sawHigh = true
		}
	}
	assert.True(t, sawZero)
	assert.True(t, sawHigh)
}

func TestMixerRebaseKeepsTapeAlignment(t *testing.T) {
	m := NewMixer(nil, nil)
	m.Advance(FrameTStates)
	m.RebaseClock(FrameTStates)
	assert.Equal(t, uint64(0), m.clockT)
}

func TestAudioRingDropsOldestOnOverflow(t *testing.T) {
	r := NewAudioRing(0.01) // minimum size floor applies
	big := make([]int16, 5000)
	for i := range big {
		big[i] = int16(i)
	}
	r.WriteSamples(big)

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	// The earliest samples were dropped; what remains is the tail.
	first := int16(buf[0]) | int16(buf[1])<<8
	assert.Greater(t, first, int16(2000))
}

func TestAudioRingZeroFillsWhenEmpty(t *testing.T) {
	r := NewAudioRing(0.1)
	buf := []byte{0xFF, 0xFF, 0xFF}
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0, 0, 0}, buf)
}

func TestAudioRingRoundTrip(t *testing.T) {
	r := NewAudioRing(0.1)
	r.WriteSamples([]int16{0x1234, -2})
	buf := make([]byte, 4)
	r.Read(buf)
	assert.Equal(t, []byte{0x34, 0x12, 0xFE, 0xFF}, buf)
}

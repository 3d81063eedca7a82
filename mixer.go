// mixer.go - beeper edges, tape EAR input, and AY samples summed into
// the int16 mono PCM stream the audio backend consumes.
package main

const mixerSampleRate = 44100

// Mixer renders one frame's worth of PCM samples by resampling the
// beeper's edge-queue square wave and the AY chip's synthesized output
// down from the CPU's 3.5MHz T-state clock to mixerSampleRate.
type Mixer struct {
	ay   *AY
	tape *Tape

	beeperLevel bool

	clockT           uint64
	tStatesPerSample float64
	accum            float64

	samples []int16
}

// NewMixer constructs a mixer bound to the given AY chip (nil on 48K,
// where the AY channel simply contributes silence) and tape engine (nil
// when no tape is mounted).
func NewMixer(ay *AY, tape *Tape) *Mixer {
	return &Mixer{
		ay:               ay,
		tape:             tape,
		tStatesPerSample: float64(CPUClockHz) / float64(mixerSampleRate),
	}
}

// SetTape rebinds the tape EAR source after a load/unload.
func (m *Mixer) SetTape(tape *Tape) { m.tape = tape }

// RebaseClock mirrors the machine Clock's frame-boundary wrap.
func (m *Mixer) RebaseClock(delta uint64) {
	if m.clockT >= delta {
		m.clockT -= delta
	} else {
		m.clockT = 0
	}
}

// BeginFrame clears the sample buffer ahead of a new frame's render.
func (m *Mixer) BeginFrame() {
	m.samples = m.samples[:0]
}

// SetBeeperLevel updates the instantaneous beeper/EAR level (port 0xFE
// bit 4 OR'd with the tape input), called on every edge the ULA detects.
func (m *Mixer) SetBeeperLevel(v bool) {
	m.beeperLevel = v
}

// Advance steps the mixer by n CPU T-states, appending any PCM samples
// that fall due, and ticking the AY chip's internal clock divider.
func (m *Mixer) Advance(n int) {
	if m.ay != nil {
		m.ay.Tick(n)
	}
	m.clockT += uint64(n)
	m.accum += float64(n)
	for m.accum >= m.tStatesPerSample {
		m.accum -= m.tStatesPerSample
		m.samples = append(m.samples, m.renderSample())
	}
}

func (m *Mixer) renderSample() int16 {
	var beeper int32
	if m.beeperLevel {
		beeper = 12000
	}
	var tape int32
	if m.tape != nil && m.tape.Playing() && m.tape.EarLevelAt(m.clockT) {
		tape = 4000
	}
	var ay int32
	if m.ay != nil {
		ay = int32(m.ay.Sample())
	}
	sum := beeper + tape + ay
	if sum > 32767 {
		sum = 32767
	}
	if sum < -32768 {
		sum = -32768
	}
	return int16(sum)
}

// Samples returns the PCM samples accumulated so far this frame.
func (m *Mixer) Samples() []int16 { return m.samples }

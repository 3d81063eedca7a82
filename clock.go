// clock.go - single monotonic T-state counter shared by every component.

package main

// FrameTStates is the number of Z80 T-states in one 50Hz video frame at
// 3.5MHz: 312 scanlines * 224 T-states.
const FrameTStates = 312 * 224

// ScanlineTStates is the T-state width of one scanline.
const ScanlineTStates = 224

// ScanlinesPerFrame is the scanline count of one PAL frame.
const ScanlinesPerFrame = 312

// CPUClockHz is the nominal Z80 clock rate of a 48K/128K Spectrum.
const CPUClockHz = 3500000

// Clock is the reference tick all components read lazily. It never
// decreases within a frame; EndFrame subtracts the frame length.
type Clock struct {
	T uint64
}

// NewClock returns a Clock starting at T-state 0.
func NewClock() *Clock {
	return &Clock{}
}

// Add advances the clock by n T-states and returns the new value.
func (c *Clock) Add(n int) uint64 {
	c.T += uint64(n)
	return c.T
}

// Scanline returns the scanline index (0..311) for the current clock value.
func (c *Clock) Scanline() int {
	return int((c.T % FrameTStates) / ScanlineTStates)
}

// TStateInLine returns the T-state within the current scanline (0..223).
func (c *Clock) TStateInLine() int {
	return int((c.T % FrameTStates) % ScanlineTStates)
}

// EndFrame subtracts one frame's worth of T-states, preserving any
// overshoot past the frame boundary.
func (c *Clock) EndFrame() {
	c.T -= FrameTStates
}

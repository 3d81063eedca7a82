package main

import "testing"

func TestClockScanlineInvariant(t *testing.T) {
	c := NewClock()
	for _, step := range []int{1, 3, 4, 7, 11, 23, 224, 1000} {
		for i := 0; i < 500; i++ {
			c.Add(step)
			frameT := c.T % FrameTStates
			requireInt(t, "scanline", c.Scanline(), int(frameT/ScanlineTStates))
			requireInt(t, "t-state in line", c.TStateInLine(), int(frameT%ScanlineTStates))
		}
	}
}

func TestClockEndFramePreservesOvershoot(t *testing.T) {
	c := NewClock()
	c.Add(FrameTStates + 17)
	c.EndFrame()
	if c.T != 17 {
		t.Fatalf("T = %d, want 17", c.T)
	}
}

func TestClockFrameGeometry(t *testing.T) {
	requireInt(t, "frame t-states", FrameTStates, 69888)
	requireInt(t, "scanlines", ScanlinesPerFrame, 312)
	requireInt(t, "line width", ScanlineTStates, 224)
}

package main

import "testing"

func TestAYRegisterMasksRoundTrip(t *testing.T) {
	a := NewAY()
	cases := []struct {
		reg   byte
		write byte
		want  byte
	}{
		{ayRTonePeriodA, 0xFF, 0xFF},
		{ayRTonePeriodA2, 0xFF, 0x0F},
		{ayRNoisePeriod, 0xFF, 0x1F},
		{ayRMixer, 0xFF, 0xFF},
		{ayRVolA, 0xFF, 0x1F},
		{ayREnvPeriodLo, 0xFF, 0xFF},
		{ayREnvPeriodHi, 0xFF, 0xFF},
		{ayREnvShape, 0xFF, 0x0F},
	}
	for _, tc := range cases {
		a.SelectRegister(tc.reg)
		a.WriteData(tc.write)
		requireU8(t, "register readback", a.ReadData(), tc.want)
	}
}

func TestAYRegisterSelectWraps(t *testing.T) {
	a := NewAY()
	a.SelectRegister(0x13) // selects R3 (16-register wrap)
	a.WriteData(0x0A)
	a.SelectRegister(0x03)
	requireU8(t, "wrapped select", a.ReadData(), 0x0A)
}

// Tone A period 253, tone-only mixer, full volume. The
// square wave toggles every 253 chip ticks, so over one second of samples
// the zero-crossing count matches 44100 * (3.5MHz/16) / (2 * 253) within
// rounding of the sample grid.
func TestAYToneAZeroCrossings(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayRTonePeriodA)
	a.WriteData(0xFD)
	a.SelectRegister(ayRTonePeriodA2)
	a.WriteData(0x00)
	a.SelectRegister(ayRMixer)
	a.WriteData(0x3E) // tone A enabled only
	a.SelectRegister(ayRVolA)
	a.WriteData(0x0F)

	const samples = 44100
	tStatesPerSample := float64(CPUClockHz) / float64(samples)

	crossings := 0
	last := a.Sample()
	accum := 0.0
	for i := 0; i < samples; i++ {
		accum += tStatesPerSample
		whole := int(accum)
		accum -= float64(whole)
		a.Tick(whole)
		s := a.Sample()
		if s != 0 && last == 0 {
			crossings++
		}
		last = s
	}

	chipHz := float64(CPUClockHz) / 16.0
	want := int(chipHz/(2.0*253.0) + 0.5)
	if diff := crossings - want; diff < -2 || diff > 2 {
		t.Fatalf("zero crossings = %d, want %d +/- 2", crossings, want)
	}
}

func TestAYTonePeriodZeroActsAsOne(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayRTonePeriodA)
	a.WriteData(0x00)
	a.SelectRegister(ayRTonePeriodA2)
	a.WriteData(0x00)
	if a.tone[0].period != 1 {
		t.Fatalf("period = %d, want 1", a.tone[0].period)
	}
}

func TestAYMixerGatesToneAndNoise(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayRVolA)
	a.WriteData(0x0F)

	// Everything disabled: channel outputs constant full level.
	a.SelectRegister(ayRMixer)
	a.WriteData(0xFF)
	s := a.Sample()
	if s == 0 {
		t.Fatalf("disabled tone+noise should output the DC volume level")
	}

	// Volume 0 silences regardless.
	a.SelectRegister(ayRVolA)
	a.WriteData(0x00)
	a.SelectRegister(ayRVolB)
	a.WriteData(0x00)
	a.SelectRegister(ayRVolC)
	a.WriteData(0x00)
	requireInt(t, "silence", int(a.Sample()), 0)
}

func TestAYNoiseLFSRSequence(t *testing.T) {
	a := NewAY()
	seen := map[uint32]bool{}
	for i := 0; i < 1000; i++ {
		if seen[a.noiseShift] {
			break
		}
		seen[a.noiseShift] = true
		feedback := (a.noiseShift & 1) ^ ((a.noiseShift >> 3) & 1)
		next := (a.noiseShift >> 1) | (feedback << 16)
		a.noiseShift = next
	}
	if len(seen) < 100 {
		t.Fatalf("LFSR cycle too short: %d states", len(seen))
	}
}

func TestAYEnvelopeDecayThenHold(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayREnvPeriodLo)
	a.WriteData(0x01)
	a.SelectRegister(ayREnvShape)
	a.WriteData(0x00) // decay, no continue: ramp down then hold at 0

	if a.envStep != 31 {
		t.Fatalf("decay starts at 31, got %d", a.envStep)
	}
	for i := 0; i < 200; i++ {
		a.advanceEnvelope()
	}
	if !a.envHolding || a.envStep != 0 {
		t.Fatalf("envelope should hold at 0, step=%d holding=%v", a.envStep, a.envHolding)
	}
}

func TestAYEnvelopeAttackHold(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayREnvPeriodLo)
	a.WriteData(0x01)
	a.SelectRegister(ayREnvShape)
	a.WriteData(0x0D) // continue+attack+hold: ramp up, hold at top

	for i := 0; i < 200; i++ {
		a.advanceEnvelope()
	}
	if !a.envHolding || a.envStep != 31 {
		t.Fatalf("envelope should hold at 31, step=%d holding=%v", a.envStep, a.envHolding)
	}
}

func TestAYEnvelopeAlternateHoldParksAtStart(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayREnvPeriodLo)
	a.WriteData(0x01)
	a.SelectRegister(ayREnvShape)
	a.WriteData(0x0F) // attack+alternate+hold: up then drop to 0

	for i := 0; i < 200; i++ {
		a.advanceEnvelope()
	}
	if !a.envHolding || a.envStep != 0 {
		t.Fatalf("envelope should hold at 0, step=%d holding=%v", a.envStep, a.envHolding)
	}
}

func TestAYEnvelopeSawRepeats(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayREnvPeriodLo)
	a.WriteData(0x01)
	a.SelectRegister(ayREnvShape)
	a.WriteData(0x08) // continue decay, no hold: sawtooth

	for i := 0; i < 500; i++ {
		a.advanceEnvelope()
	}
	if a.envHolding {
		t.Fatalf("sawtooth envelope must not hold")
	}
}

func TestAYWritingShapeRestartsEnvelope(t *testing.T) {
	a := NewAY()
	a.SelectRegister(ayREnvShape)
	a.WriteData(0x00)
	for i := 0; i < 50; i++ {
		a.advanceEnvelope()
	}
	a.WriteData(0x0D)
	if a.envStep != 0 || a.envHolding {
		t.Fatalf("attack restart should begin at 0, step=%d", a.envStep)
	}
}

func TestAYVolumeTableMonotonic(t *testing.T) {
	a := NewAY()
	requireInt(t, "level 0", int(a.volumeTable[0]), 0)
	for i := 1; i < 16; i++ {
		if a.volumeTable[i] <= a.volumeTable[i-1] {
			t.Fatalf("volume table not increasing at %d: %v", i, a.volumeTable)
		}
	}
}

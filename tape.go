// tape.go - unified TAP/TZX pulse engine: an explicit state machine
// whose EarLevelAt(clock) catches up through every scheduled edge at or
// before the given time, rather than a goroutine-based coroutine.

package main

import "github.com/pkg/errors"

// Phase is the tape engine's pulse-generation state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePilot
	PhaseSync1
	PhaseSync2
	PhaseData
	PhasePureTone
	PhasePulseSequence
	PhaseDirectRecording
	PhasePause
)

// TapeFormat identifies the loaded file's container.
type TapeFormat int

const (
	FormatNone TapeFormat = iota
	FormatTAP
	FormatTZX
)

// blockKind distinguishes the TZX block types the engine can play;
// TAP blocks are normalized to blockStandard.
type blockKind int

const (
	blockStandard blockKind = iota
	blockTurbo
	blockPureTone
	blockPulseSequence
	blockPureData
	blockDirectRecording
	blockPause
	blockGroupStart
	blockGroupEnd
	blockLoopStart
	blockLoopEnd
	blockStopIf48K
	blockSetSignalLevel
	blockGeneralizedData
	blockSkip
)

// tapeBlock is the normalized descriptor for one TAP or TZX block.
type tapeBlock struct {
	kind blockKind

	pilotPeriod int
	sync1       int
	sync2       int
	bit0Len     int
	bit1Len     int
	pilotPulses int
	usedBitsLast int
	pauseMS     int

	data []byte

	// Pure Tone / Pulse Sequence
	pulseLen    int
	pulseCount  int
	pulseList   []int

	// Direct Recording
	tStatesPerSample int
	lastByteBits     int

	// Pause / loop
	loopCount int

	// Generalized Data: precomputed half-wave list with polarity already
	// resolved into absolute levels.
	genPulses []genPulse

	signalLevel bool
}

type genPulse struct {
	length int
	level  bool
}

// Tape drives the EAR line from a list of normalized blocks.
type Tape struct {
	format TapeFormat
	blocks []tapeBlock

	playing bool
	phase   Phase

	blockIdx int

	// cursor within the current block
	byteIdx   int
	bitIdx    int // 7..0
	subPulse  int // 0/1 half-wave within the current bit or pure-tone pulse
	pulsesLeft int

	nextEdge  uint64
	earLevel  bool

	loopStart  int
	loopIters  int

	genIdx int
}

// NewTape constructs an idle, unloaded tape engine.
func NewTape() *Tape {
	return &Tape{earLevel: true}
}

// Playing reports whether the tape is actively producing edges.
func (t *Tape) Playing() bool { return t.playing }

// Play starts (or resumes) playback from the current block.
func (t *Tape) Play() {
	if len(t.blocks) == 0 {
		return
	}
	t.playing = true
}

// Stop halts playback; EAR returns to its idle-high level.
func (t *Tape) Stop() {
	t.playing = false
	t.phase = PhaseIdle
	t.earLevel = true
}

// Rewind resets playback to the first block, used by the F6 hotkey.
func (t *Tape) Rewind() {
	t.blockIdx = 0
	t.byteIdx = 0
	t.bitIdx = 7
	t.subPulse = 0
	t.phase = PhaseIdle
	t.earLevel = true
}

// RebaseClock shifts the edge schedule left by delta, keeping the
// schedule aligned when the machine's Clock wraps at a frame boundary.
func (t *Tape) RebaseClock(delta uint64) {
	if t.nextEdge >= delta {
		t.nextEdge -= delta
	} else {
		t.nextEdge = 0
	}
}

// EarLevelAt advances the state machine through every edge scheduled at
// or before now and returns the resulting EAR level. Rapid polling is
// stable: each edge toggles the level exactly once.
func (t *Tape) EarLevelAt(now uint64) bool {
	if !t.playing {
		return t.earLevel
	}
	for t.playing && t.nextEdge <= now {
		t.advanceOneEdge(now)
	}
	return t.earLevel
}

func (t *Tape) currentBlock() *tapeBlock {
	if t.blockIdx < 0 || t.blockIdx >= len(t.blocks) {
		return nil
	}
	return &t.blocks[t.blockIdx]
}

func (t *Tape) advanceOneEdge(now uint64) {
	b := t.currentBlock()
	if b == nil {
		t.playing = false
		t.earLevel = true
		return
	}

	if t.phase == PhaseIdle {
		t.startBlock(b, now)
		return
	}

	switch b.kind {
	case blockStandard, blockTurbo, blockPureData:
		t.stepStandard(b, now)
	case blockPureTone:
		t.stepPureTone(b, now)
	case blockPulseSequence:
		t.stepPulseSequence(b, now)
	case blockDirectRecording:
		t.stepDirectRecording(b, now)
	case blockGeneralizedData:
		t.stepGeneralized(b, now)
	case blockPause:
		t.earLevel = true
		t.nextBlock(now)
	default:
		t.nextBlock(now)
	}
}

func (t *Tape) startBlock(b *tapeBlock, now uint64) {
	switch b.kind {
	case blockStandard, blockTurbo:
		if b.pilotPulses > 0 {
			t.phase = PhasePilot
			t.pulsesLeft = b.pilotPulses
			t.earLevel = !t.earLevel
			t.nextEdge = now + uint64(b.pilotPeriod)
		} else {
			t.enterDataPhase(b, now)
		}
	case blockPureData:
		t.enterDataPhase(b, now)
	case blockPureTone:
		t.pulsesLeft = b.pulseCount
		t.phase = PhasePureTone
		t.earLevel = !t.earLevel
		t.nextEdge = now + uint64(b.pulseLen)
	case blockPulseSequence:
		t.genIdx = 0
		t.phase = PhasePulseSequence
		if len(b.pulseList) == 0 {
			t.nextBlock(now)
			return
		}
		t.earLevel = !t.earLevel
		t.nextEdge = now + uint64(b.pulseList[0])
	case blockDirectRecording:
		t.byteIdx = 0
		t.bitIdx = 7
		t.phase = PhaseDirectRecording
		t.earLevel = t.directBit(b, 0, 7)
		t.nextEdge = now + uint64(b.tStatesPerSample)
	case blockGeneralizedData:
		t.genIdx = 0
		t.phase = PhaseData
		if len(b.genPulses) == 0 {
			t.nextBlock(now)
			return
		}
		t.earLevel = b.genPulses[0].level
		t.nextEdge = now + uint64(b.genPulses[0].length)
	case blockPause:
		if b.pauseMS == 0 {
			t.playing = false
			t.earLevel = true
			return
		}
		t.phase = PhasePause
		t.earLevel = true
		t.nextEdge = now + uint64(b.pauseMS)*3500
	case blockLoopStart:
		t.loopStart = t.blockIdx + 1
		t.loopIters = b.loopCount
		t.blockIdx++
		t.nextEdge = now
	case blockLoopEnd:
		if t.loopIters > 1 {
			t.loopIters--
			t.blockIdx = t.loopStart
		} else {
			t.blockIdx++
		}
		t.nextEdge = now
	case blockSetSignalLevel:
		t.earLevel = b.signalLevel
		t.nextBlock(now)
	case blockStopIf48K:
		// Unconditional stop; the engine carries no model awareness.
		t.playing = false
		t.nextBlock(now)
	default:
		t.nextBlock(now)
	}
}

func (t *Tape) enterDataPhase(b *tapeBlock, now uint64) {
	if b.sync1 > 0 {
		t.phase = PhaseSync1
		t.earLevel = !t.earLevel
		t.nextEdge = now + uint64(b.sync1)
		return
	}
	t.beginDataBytes(b, now)
}

func (t *Tape) beginDataBytes(b *tapeBlock, now uint64) {
	t.byteIdx = 0
	t.bitIdx = 7
	t.subPulse = 0
	t.phase = PhaseData
	if len(b.data) == 0 {
		t.nextBlock(now)
		return
	}
	length := t.bitLen(b, 0, 7)
	t.earLevel = !t.earLevel
	t.nextEdge = now + uint64(length)
}

func (t *Tape) bitLen(b *tapeBlock, byteIdx, bitIdx int) int {
	bitVal := (b.data[byteIdx] >> uint(bitIdx)) & 1
	if bitVal == 1 {
		return b.bit1Len
	}
	return b.bit0Len
}

func (t *Tape) stepStandard(b *tapeBlock, now uint64) {
	switch t.phase {
	case PhasePilot:
		t.pulsesLeft--
		if t.pulsesLeft > 0 {
			t.earLevel = !t.earLevel
			t.nextEdge = now + uint64(b.pilotPeriod)
			return
		}
		t.enterDataPhase(b, now)
	case PhaseSync1:
		t.phase = PhaseSync2
		t.earLevel = !t.earLevel
		t.nextEdge = now + uint64(b.sync2)
	case PhaseSync2:
		t.beginDataBytes(b, now)
	case PhaseData:
		t.subPulse++
		if t.subPulse < 2 {
			t.earLevel = !t.earLevel
			t.nextEdge = now + uint64(t.bitLen(b, t.byteIdx, t.bitIdx))
			return
		}
		t.subPulse = 0
		lastByte := t.byteIdx == len(b.data)-1
		lowestBit := 8 - b.usedBitsLast
		if lastByte && b.usedBitsLast > 0 && t.bitIdx <= lowestBit {
			t.finishDataBytes(b, now)
			return
		}
		t.bitIdx--
		if t.bitIdx < 0 {
			t.bitIdx = 7
			t.byteIdx++
			if t.byteIdx >= len(b.data) {
				t.finishDataBytes(b, now)
				return
			}
		}
		t.earLevel = !t.earLevel
		t.nextEdge = now + uint64(t.bitLen(b, t.byteIdx, t.bitIdx))
	default:
		t.nextBlock(now)
	}
}

func (t *Tape) finishDataBytes(b *tapeBlock, now uint64) {
	if b.pauseMS > 0 {
		t.phase = PhasePause
		t.earLevel = true
		t.nextEdge = now + uint64(b.pauseMS)*3500
		return
	}
	t.nextBlock(now)
}

func (t *Tape) stepPureTone(b *tapeBlock, now uint64) {
	t.pulsesLeft--
	if t.pulsesLeft <= 0 {
		t.nextBlock(now)
		return
	}
	t.earLevel = !t.earLevel
	t.nextEdge = now + uint64(b.pulseLen)
}

func (t *Tape) stepPulseSequence(b *tapeBlock, now uint64) {
	t.genIdx++
	if t.genIdx >= len(b.pulseList) {
		t.nextBlock(now)
		return
	}
	t.earLevel = !t.earLevel
	t.nextEdge = now + uint64(b.pulseList[t.genIdx])
}

func (t *Tape) directBit(b *tapeBlock, byteIdx, bitIdx int) bool {
	if byteIdx >= len(b.data) {
		return true
	}
	return (b.data[byteIdx]>>uint(bitIdx))&1 != 0
}

func (t *Tape) stepDirectRecording(b *tapeBlock, now uint64) {
	t.bitIdx--
	if t.bitIdx < 0 {
		t.bitIdx = 7
		t.byteIdx++
	}
	if t.byteIdx >= len(b.data) {
		t.nextBlock(now)
		return
	}
	t.earLevel = t.directBit(b, t.byteIdx, t.bitIdx)
	t.nextEdge = now + uint64(b.tStatesPerSample)
}

func (t *Tape) stepGeneralized(b *tapeBlock, now uint64) {
	t.genIdx++
	if t.genIdx >= len(b.genPulses) {
		t.nextBlock(now)
		return
	}
	p := b.genPulses[t.genIdx]
	t.earLevel = p.level
	t.nextEdge = now + uint64(p.length)
}

func (t *Tape) nextBlock(now uint64) {
	t.blockIdx++
	t.phase = PhaseIdle
	t.byteIdx = 0
	t.bitIdx = 7
	t.subPulse = 0
	if t.blockIdx >= len(t.blocks) {
		t.playing = false
		t.earLevel = true
		return
	}
	t.nextEdge = now
}

// wrapUnsupportedTapeBlock annotates ErrUnsupportedTapeBlock with the
// offending block id.
func wrapUnsupportedTapeBlock(id byte) error {
	return errors.Wrapf(ErrUnsupportedTapeBlock, "tzx block id 0x%02X", id)
}

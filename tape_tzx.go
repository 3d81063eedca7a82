// tape_tzx.go - TZX container parsing: signature check, then a
// sequential walk of typed blocks normalized into tapeBlocks.

package main

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var tzxSignature = [8]byte{'Z', 'X', 'T', 'a', 'p', 'e', '!', 0x1A}

type tzxCursor struct {
	data []byte
	pos  int
}

func (c *tzxCursor) remaining() int { return len(c.data) - c.pos }

func (c *tzxCursor) byte() byte {
	v := c.data[c.pos]
	c.pos++
	return v
}

func (c *tzxCursor) bytes(n int) []byte {
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v
}

func (c *tzxCursor) u16() int {
	v := binary.LittleEndian.Uint16(c.bytes(2))
	return int(v)
}

func (c *tzxCursor) u24() int {
	b := c.bytes(3)
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func (c *tzxCursor) u32() int {
	v := binary.LittleEndian.Uint32(c.bytes(4))
	return int(v)
}

// LoadTZX parses a TZX file into the tape engine's block list.
func LoadTZX(data []byte) (*Tape, error) {
	if len(data) < 10 || [8]byte(data[0:8]) != tzxSignature {
		return nil, wrapInvalidImage("not a TZX file (bad signature)")
	}
	c := &tzxCursor{data: data, pos: 10}

	t := NewTape()
	t.format = FormatTZX

	for c.remaining() > 0 {
		id := c.byte()
		blk, err := readTZXBlock(c, id)
		if err != nil {
			return nil, err
		}
		if blk != nil {
			t.blocks = append(t.blocks, *blk)
		}
	}
	t.Rewind()
	return t, nil
}

func readTZXBlock(c *tzxCursor, id byte) (*tapeBlock, error) {
	switch id {
	case 0x10, 0x00: // Standard Speed (0x00 legacy alias)
		pauseMS := c.u16()
		length := c.u16()
		payload := c.bytes(length)
		pilot := tapDataPilot
		if len(payload) > 0 && payload[0] == 0x00 {
			pilot = tapHeaderPilot
		}
		return &tapeBlock{
			kind: blockStandard, pilotPeriod: tapPilotPeriod,
			sync1: tapSync1, sync2: tapSync2, bit0Len: tapBit0Len, bit1Len: tapBit1Len,
			pilotPulses: pilot, usedBitsLast: 8, pauseMS: pauseMS, data: payload,
		}, nil

	case 0x11: // Turbo
		pilotLen := c.u16()
		sync1 := c.u16()
		sync2 := c.u16()
		bit0 := c.u16()
		bit1 := c.u16()
		pilotPulses := c.u16()
		usedBitsLast := int(c.byte())
		pauseMS := c.u16()
		length := c.u24()
		payload := c.bytes(length)
		return &tapeBlock{
			kind: blockTurbo, pilotPeriod: pilotLen, sync1: sync1, sync2: sync2,
			bit0Len: bit0, bit1Len: bit1, pilotPulses: pilotPulses,
			usedBitsLast: usedBitsLast, pauseMS: pauseMS, data: payload,
		}, nil

	case 0x12, 0x02: // Pure Tone (0x02 legacy alias)
		pulseLen := c.u16()
		count := c.u16()
		return &tapeBlock{kind: blockPureTone, pulseLen: pulseLen, pulseCount: count}, nil

	case 0x13: // Pulse Sequence
		n := int(c.byte())
		pulses := make([]int, n)
		for i := range pulses {
			pulses[i] = c.u16()
		}
		return &tapeBlock{kind: blockPulseSequence, pulseList: pulses}, nil

	case 0x14: // Pure Data
		bit0 := c.u16()
		bit1 := c.u16()
		usedBitsLast := int(c.byte())
		pauseMS := c.u16()
		length := c.u24()
		payload := c.bytes(length)
		return &tapeBlock{
			kind: blockPureData, bit0Len: bit0, bit1Len: bit1,
			usedBitsLast: usedBitsLast, pauseMS: pauseMS, data: payload,
		}, nil

	case 0x15: // Direct Recording
		tStatesPerSample := c.u16()
		pauseMS := c.u16()
		usedBitsLast := int(c.byte())
		length := c.u24()
		payload := c.bytes(length)
		return &tapeBlock{
			kind: blockDirectRecording, tStatesPerSample: tStatesPerSample,
			pauseMS: pauseMS, lastByteBits: usedBitsLast, data: payload,
		}, nil

	case 0x18: // CSW Recording
		blockLen := c.u32()
		end := c.pos + blockLen
		pauseMS := c.u16()
		sampleRate := c.u24()
		compression := c.byte()
		c.u32() // pulse count (informational)
		raw := c.data[c.pos:end]
		c.pos = end
		if compression != 1 {
			return nil, errors.Wrapf(ErrUnsupportedTapeBlock, "tzx CSW compression type %d unsupported", compression)
		}
		if sampleRate == 0 {
			return nil, wrapInvalidImage("tzx CSW block with zero sample rate")
		}
		// CSW RLE: each byte is a half-wave length in samples; a zero byte
		// escapes a 32-bit length. Sample counts scale to T-states by the
		// CPU-clock / sample-rate ratio.
		pulses := make([]int, 0, len(raw))
		for i := 0; i < len(raw); i++ {
			n := int(raw[i])
			if n == 0 && i+4 < len(raw) {
				n = int(raw[i+1]) | int(raw[i+2])<<8 | int(raw[i+3])<<16 | int(raw[i+4])<<24
				i += 4
			}
			pulses = append(pulses, n*CPUClockHz/sampleRate)
		}
		return &tapeBlock{kind: blockPulseSequence, pulseList: pulses, pauseMS: pauseMS}, nil

	case 0x19: // Generalized Data
		return readGeneralizedData(c)

	case 0x20: // Pause / Stop the Tape
		pauseMS := c.u16()
		return &tapeBlock{kind: blockPause, pauseMS: pauseMS}, nil

	case 0x21: // Group Start
		length := int(c.byte())
		c.bytes(length)
		return &tapeBlock{kind: blockGroupStart}, nil
	case 0x22: // Group End
		return &tapeBlock{kind: blockGroupEnd}, nil

	case 0x24: // Loop Start
		count := c.u16()
		return &tapeBlock{kind: blockLoopStart, loopCount: count}, nil
	case 0x25: // Loop End
		return &tapeBlock{kind: blockLoopEnd}, nil

	case 0x2A: // Stop if 48K
		c.u32()
		return &tapeBlock{kind: blockStopIf48K}, nil

	case 0x2B: // Set Signal Level
		c.u32()
		level := c.byte()
		return &tapeBlock{kind: blockSetSignalLevel, signalLevel: level != 0}, nil

	case 0x30: // Text description
		length := int(c.byte())
		c.bytes(length)
		return nil, nil
	case 0x31: // Message block
		c.byte()
		length := int(c.byte())
		c.bytes(length)
		return nil, nil
	case 0x32: // Archive info
		length := c.u16()
		c.bytes(length)
		return nil, nil
	case 0x33: // Hardware type
		n := int(c.byte())
		c.bytes(n * 3)
		return nil, nil
	case 0x35: // Custom info
		c.bytes(16)
		length := c.u32()
		c.bytes(length)
		return nil, nil
	case 0x5A: // "Glue" block (merged-TZX marker)
		c.bytes(9)
		return nil, nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedTapeBlock, "tzx block id 0x%02X", id)
	}
}

// readGeneralizedData implements TZX 0x19: PRLE for the pilot/sync
// alphabet, bit-packed symbols for the data stream, with
// force-low/force-high polarity fused into the previous half-wave when
// it would not otherwise toggle to the target level.
func readGeneralizedData(c *tzxCursor) (*tapeBlock, error) {
	blockLen := c.u32()
	end := c.pos + blockLen
	pauseMS := c.u16()
	totp := c.u32()
	npp := int(c.byte())
	asp := int(c.byte())
	totd := c.u32()
	npd := int(c.byte())
	asd := int(c.byte())

	readSymDef := func(maxPulses int) ([]genSymbol, byte) {
		flags := c.byte()
		pulses := make([]int, maxPulses)
		for i := range pulses {
			pulses[i] = c.u16()
		}
		return symbolFromFlagsAndPulses(flags, pulses), flags
	}

	var pilotAlphabet []genSymbol
	for i := 0; i < asp; i++ {
		sym, _ := readSymDef(npp)
		pilotAlphabet = append(pilotAlphabet, sym...)
	}

	var pulses []genPulse
	level := false
	emit := func(syms []genSymbol) {
		for _, s := range syms {
			for hi, half := range s.halves {
				// The polarity flag only governs a symbol's first
				// half-wave; the rest always toggle.
				target := !level
				if hi == 0 {
					target = resolvePolarity(s.polarity, level)
				}
				if len(pulses) > 0 && target == level {
					pulses[len(pulses)-1].length += half.length
					continue
				}
				level = target
				pulses = append(pulses, genPulse{length: half.length, level: level})
			}
		}
	}

	remaining := totp
	for remaining > 0 {
		symIdx := int(c.byte())
		repeat := c.u16()
		remaining -= repeat
		if symIdx < len(pilotAlphabet) {
			for i := 0; i < repeat; i++ {
				emit([]genSymbol{pilotAlphabet[symIdx]})
			}
		}
	}

	var dataAlphabet []genSymbol
	for i := 0; i < asd; i++ {
		sym, _ := readSymDef(npd)
		dataAlphabet = append(dataAlphabet, sym...)
	}

	bitsPerSym := bitsNeeded(asd)
	if totd > 0 && bitsPerSym > 0 {
		totalBits := totd * bitsPerSym
		byteLen := (totalBits + 7) / 8
		raw := c.bytes(byteLen)
		bitPos := 0
		for i := 0; i < totd; i++ {
			v := readBitsMSB(raw, bitPos, bitsPerSym)
			bitPos += bitsPerSym
			if int(v) < len(dataAlphabet) {
				emit([]genSymbol{dataAlphabet[v]})
			}
		}
	}

	c.pos = end
	return &tapeBlock{kind: blockGeneralizedData, genPulses: pulses, pauseMS: pauseMS}, nil
}

type genHalf struct {
	length int
}

type genSymbol struct {
	polarity byte
	halves   []genHalf
}

func symbolFromFlagsAndPulses(flags byte, pulses []int) []genSymbol {
	halves := make([]genHalf, 0, len(pulses))
	for _, p := range pulses {
		if p == 0 {
			break
		}
		halves = append(halves, genHalf{length: p})
	}
	return []genSymbol{{polarity: flags & 0x03, halves: halves}}
}

// resolvePolarity applies the symbol polarity flag: 00 force-edge
// (always toggle), 01 continue-same (never toggle), 10 force-low, 11
// force-high. The caller fuses consecutive same-level pulses, so
// "force-low/high" only needs to report the intended target level.
func resolvePolarity(polarity byte, currentLevel bool) bool {
	switch polarity {
	case 0x00:
		return !currentLevel
	case 0x01:
		return currentLevel
	case 0x02:
		return false
	default:
		return true
	}
}

func bitsNeeded(n int) int {
	if n <= 1 {
		return 0
	}
	bits := 0
	for (1 << uint(bits)) < n {
		bits++
	}
	return bits
}

func readBitsMSB(data []byte, bitOffset, n int) int {
	var v int
	for i := 0; i < n; i++ {
		bit := bitOffset + i
		byteIdx := bit / 8
		bitInByte := 7 - (bit % 8)
		if byteIdx >= len(data) {
			break
		}
		b := (data[byteIdx] >> uint(bitInByte)) & 1
		v = (v << 1) | int(b)
	}
	return v
}

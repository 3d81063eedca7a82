// tape_tap.go - TAP container parsing into normalized tapeBlocks.

package main

import "encoding/binary"

const (
	tapPilotPeriod = 2168
	tapSync1       = 667
	tapSync2       = 735
	tapBit0Len     = 855
	tapBit1Len     = 1710
	tapHeaderPilot = 8063
	tapDataPilot   = 3223
	tapPauseMS     = 1000
)

// LoadTAP parses a raw TAP file into the tape engine's block list.
func LoadTAP(data []byte) (*Tape, error) {
	t := NewTape()
	t.format = FormatTAP

	pos := 0
	for pos+2 <= len(data) {
		length := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
		pos += 2
		if pos+length > len(data) {
			return nil, wrapInvalidImage("tap block at offset %d overruns file (len=%d)", pos-2, length)
		}
		payload := data[pos : pos+length]
		pos += length

		pilot := tapDataPilot
		if len(payload) > 0 && payload[0] == 0x00 {
			pilot = tapHeaderPilot
		}
		t.blocks = append(t.blocks, tapeBlock{
			kind:         blockStandard,
			pilotPeriod:  tapPilotPeriod,
			sync1:        tapSync1,
			sync2:        tapSync2,
			bit0Len:      tapBit0Len,
			bit1Len:      tapBit1Len,
			pilotPulses:  pilot,
			usedBitsLast: 8,
			pauseMS:      tapPauseMS,
			data:         payload,
		})
	}
	t.Rewind()
	return t, nil
}

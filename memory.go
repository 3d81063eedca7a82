// memory.go - 64KiB logical address space over ROM pages and banked RAM,
// partitioned into four 16KiB slots.

package main

// Model distinguishes the 48K and 128K memory maps.
type Model int

const (
	Model48K Model = iota
	Model128K
)

const (
	slotSize   = 0x4000
	numRAMBanks128 = 8
)

// Memory implements the Spectrum's 64KiB address space: slot 0 is a ROM
// page, slots 1-3 are RAM banks. On 128K, slot 0 selects between two ROM
// images and slot 3 selects one of eight RAM banks via the 0x7FFD paging
// latch; slot 1 is always RAM bank 5, slot 2 always RAM bank 2.
type Memory struct {
	model Model

	rom0 [slotSize]byte // 48K ROM, or 128K editor ROM
	rom1 [slotSize]byte // 128K syntax-checker ROM (unused on 48K)

	ram [numRAMBanks128][slotSize]byte

	// pagingLatch mirrors the last byte written to port 0x7FFD: bits 0-2
	// select the RAM bank in slot 3, bit 3 selects the display bank used
	// by the ULA (5 normally, 7 when set), bit 4 selects the ROM page,
	// bit 5 locks all further paging until reset.
	pagingLatch byte
	pagingLocked bool
}

// NewMemory constructs a Memory for the given model with both ROM images
// zeroed; call LoadROM to populate them.
func NewMemory(model Model) *Memory {
	return &Memory{model: model}
}

// LoadROM installs raw ROM bytes into the given page index (0 or 1).
// Oversized images are truncated to 16KiB; undersized images are
// zero-padded.
func (m *Memory) LoadROM(page int, data []byte) {
	dst := &m.rom0
	if page == 1 {
		dst = &m.rom1
	}
	n := copy(dst[:], data)
	for i := n; i < slotSize; i++ {
		dst[i] = 0
	}
}

// romSlot0 returns the ROM image currently paged into slot 0.
func (m *Memory) romSlot0() *[slotSize]byte {
	if m.model == Model128K && m.pagingLatch&0x10 != 0 {
		return &m.rom1
	}
	return &m.rom0
}

// ramBankInSlot3 returns the RAM bank index currently paged into slot 3.
// On 48K this is always bank 3 (the top 16K of the flat 48K RAM, modeled
// here as banks 0-2 for slots 1-3 matching classic 48K wiring).
func (m *Memory) ramBankInSlot3() int {
	if m.model == Model128K {
		return int(m.pagingLatch & 0x07)
	}
	return 3
}

// DisplayBank returns the RAM bank the ULA reads for video, bank 5 unless
// the paging latch's bit 3 selects the shadow screen in bank 7 (128K only).
func (m *Memory) DisplayBank() int {
	if m.model == Model128K && m.pagingLatch&0x08 != 0 {
		return 7
	}
	return 5
}

// ReadByte returns the byte at a logical 16-bit address with no contention
// side effect; contention delay is computed separately via IsContended so
// the Z80 core can charge wait states before the access.
func (m *Memory) ReadByte(addr uint16) byte {
	slot := addr / slotSize
	off := addr % slotSize
	switch slot {
	case 0:
		return m.romSlot0()[off]
	case 1:
		return m.ram[5][off]
	case 2:
		return m.ram[2][off]
	default:
		return m.ram[m.ramBankInSlot3()][off]
	}
}

// WriteByte writes to RAM; writes into slot 0 (ROM) are silently
// discarded.
func (m *Memory) WriteByte(addr uint16, v byte) {
	slot := addr / slotSize
	off := addr % slotSize
	switch slot {
	case 0:
		return
	case 1:
		m.ram[5][off] = v
	case 2:
		m.ram[2][off] = v
	default:
		m.ram[m.ramBankInSlot3()][off] = v
	}
}

// ReadBankRaw exposes a RAM bank directly, used by the ULA to fetch the
// display bank regardless of what is currently paged into slot 3, and by
// the snapshot loader to populate all 48K of a 48K machine's RAM.
func (m *Memory) ReadBankRaw(bank int, off uint16) byte {
	return m.ram[bank][off]
}

// WriteBankRaw writes a RAM bank directly, bypassing slot mapping.
func (m *Memory) WriteBankRaw(bank int, off uint16, v byte) {
	m.ram[bank][off] = v
}

// SetPagingLatch applies a write to port 0x7FFD. No-op once locked.
func (m *Memory) SetPagingLatch(v byte) {
	if m.pagingLocked || m.model != Model128K {
		return
	}
	m.pagingLatch = v
	if v&0x20 != 0 {
		m.pagingLocked = true
	}
}

// PagingLatch returns the last applied paging latch value.
func (m *Memory) PagingLatch() byte { return m.pagingLatch }

// ResetPaging clears the paging lock, as happens on a hard reset.
func (m *Memory) ResetPaging() {
	m.pagingLatch = 0
	m.pagingLocked = false
}

// IsContended reports whether an address falls in the ULA-shared region:
// slot 1 always, and in 128K, slot 3 whenever an odd-numbered bank is
// paged there.
func (m *Memory) IsContended(addr uint16) bool {
	slot := addr / slotSize
	switch slot {
	case 1:
		return true
	case 3:
		if m.model == Model128K {
			return m.ramBankInSlot3()%2 == 1
		}
		return false
	default:
		return false
	}
}

// contentionTable is the wait-state table indexed by T-state-in-line
// mod 8.
var contentionTable = [8]int{6, 5, 4, 3, 2, 1, 0, 0}

// ContentionDelay returns the wait states charged for an access to addr at
// the given absolute T-state, zero outside the contended window (scanlines
// 64..255, T-states 0..127 of the line) or for non-contended addresses.
func ContentionDelay(mem *Memory, addr uint16, clockT uint64) int {
	if !mem.IsContended(addr) {
		return 0
	}
	frameT := clockT % FrameTStates
	scanline := int(frameT / ScanlineTStates)
	tInLine := int(frameT % ScanlineTStates)
	if scanline < 64 || scanline > 255 {
		return 0
	}
	if tInLine > 127 {
		return 0
	}
	return contentionTable[tInLine%8]
}

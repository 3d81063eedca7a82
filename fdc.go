// fdc.go - WD1793-compatible floppy disk controller for the Beta Disk
// interface: Type I head positioning, Type II sector streaming, Type
// III Read Address, Type IV Force Interrupt. IRQ/DRQ are plain bool
// fields the machine loop polls instead of callback registrations.
package main

// FDC ports within the Beta Disk interface's port-decode window.
const (
	FDCPortStatus  = 0x1F
	FDCPortTrack   = 0x3F
	FDCPortSector  = 0x5F
	FDCPortData    = 0x7F
	FDCPortControl = 0xFF
)

// WD1793 command types, selected by the command register's top nibble.
const (
	fdcCmdRestore     = 0x00
	fdcCmdSeek        = 0x10
	fdcCmdStep        = 0x20
	fdcCmdStepIn      = 0x40
	fdcCmdStepOut     = 0x60
	fdcCmdReadSector  = 0x80
	fdcCmdWriteSector = 0xA0
	fdcCmdReadAddress = 0xC0
	fdcCmdWriteTrack  = 0xF0
	fdcCmdReadTrack   = 0xE0
	fdcCmdForceInt    = 0xD0
)

// Status register bits.
const (
	fdcStatusBusy      = 0x01
	fdcStatusDRQ       = 0x02
	fdcStatusLostData  = 0x04
	fdcStatusCRCError  = 0x08
	fdcStatusRNF       = 0x10
	fdcStatusSeekError = 0x10
	fdcStatusWriteProt = 0x40
	fdcStatusNotReady  = 0x80
)

// System control register bits (Beta Disk interface).
const (
	fdcControlDriveMask = 0x03
	fdcControlSide      = 0x10
	fdcControlDensity   = 0x40
	fdcControlHLT       = 0x08
)

type fdcState int

const (
	fdcIdle fdcState = iota
	fdcBusy
	fdcReadData
	fdcWriteData
)

// FDC is the Beta Disk interface's WD1793 emulation, wired to up to four
// TRDImage drives.
type FDC struct {
	status  byte
	track   byte
	sector  byte
	data    byte
	command byte

	control      byte
	currentDrive int
	currentSide  int

	state       fdcState
	delayTStates int

	sectorBuffer [256]byte
	bufferPos    int
	bufferLen    int

	drives [4]*TRDImage

	IRQ bool
	DRQ bool
}

// NewFDC returns a freshly reset controller with no drives attached.
func NewFDC() *FDC {
	f := &FDC{}
	f.Reset()
	return f
}

// Reset restores power-on register state.
func (f *FDC) Reset() {
	f.status = fdcStatusNotReady
	f.track = 0
	f.sector = 1
	f.data = 0
	f.command = 0
	f.state = fdcIdle
	f.delayTStates = 0
	f.bufferPos = 0
	f.bufferLen = 0
	f.IRQ = false
	f.DRQ = false
}

// AttachImage mounts img on the given drive (0-3).
func (f *FDC) AttachImage(drive int, img *TRDImage) {
	if drive < 0 || drive >= 4 {
		return
	}
	f.drives[drive] = img
	if img != nil {
		f.status &^= fdcStatusNotReady
	}
}

// DetachImage unmounts whatever is on the given drive.
func (f *FDC) DetachImage(drive int) {
	if drive < 0 || drive >= 4 {
		return
	}
	f.drives[drive] = nil
	anyReady := false
	for _, d := range f.drives {
		if d != nil {
			anyReady = true
			break
		}
	}
	if !anyReady {
		f.status |= fdcStatusNotReady
	}
}

func (f *FDC) currentImage() *TRDImage {
	return f.drives[f.currentDrive]
}

func (f *FDC) executeCommand(cmd byte) {
	f.command = cmd
	f.status |= fdcStatusBusy
	f.status &^= fdcStatusDRQ | fdcStatusLostData | fdcStatusCRCError | fdcStatusRNF

	switch cmd & 0xF0 {
	case fdcCmdRestore:
		f.track = 0
		f.delayTStates = 3500 * 6
		f.state = fdcBusy

	case fdcCmdSeek:
		diff := int(f.data) - int(f.track)
		if diff < 0 {
			diff = -diff
		}
		f.track = f.data
		f.delayTStates = 3500 * (6 + diff)
		f.state = fdcBusy

	case fdcCmdStep, fdcCmdStepIn:
		if cmd&0xF0 == fdcCmdStepIn && f.track < 79 {
			f.track++
		}
		f.delayTStates = 3500 * 6
		f.state = fdcBusy

	case fdcCmdStepOut:
		if f.track > 0 {
			f.track--
		}
		f.delayTStates = 3500 * 6
		f.state = fdcBusy

	case fdcCmdReadSector:
		f.beginReadSector()

	case fdcCmdWriteSector:
		f.beginWriteSector()

	case fdcCmdReadAddress:
		f.sectorBuffer[0] = f.track
		f.sectorBuffer[1] = byte(f.currentSide)
		f.sectorBuffer[2] = f.sector
		f.sectorBuffer[3] = 1
		f.bufferPos = 0
		f.bufferLen = 6
		f.state = fdcReadData
		f.delayTStates = 3500 * 10
		f.status |= fdcStatusDRQ
		f.DRQ = true

	case fdcCmdForceInt:
		f.status &^= fdcStatusBusy
		f.state = fdcIdle
		f.delayTStates = 0
		if cmd&0x0F != 0 {
			f.IRQ = true
		}

	default:
		f.status &^= fdcStatusBusy
		f.state = fdcIdle
	}
}

func (f *FDC) beginReadSector() {
	img := f.currentImage()
	if img == nil {
		f.status |= fdcStatusRNF
		f.status &^= fdcStatusBusy
		f.state = fdcIdle
		f.IRQ = true
		return
	}
	sectorNum := byte(0)
	if f.sector > 0 {
		sectorNum = f.sector - 1
	}
	buf, ok := img.ReadSector(f.track, byte(f.currentSide), sectorNum)
	if !ok {
		f.status |= fdcStatusRNF
		f.status &^= fdcStatusBusy
		f.state = fdcIdle
		f.IRQ = true
		return
	}
	f.sectorBuffer = buf
	f.bufferPos = 0
	f.bufferLen = 256
	f.state = fdcReadData
	f.delayTStates = 3500 * 10
	f.status |= fdcStatusDRQ
	f.DRQ = true
}

func (f *FDC) beginWriteSector() {
	img := f.currentImage()
	if img == nil {
		f.status |= fdcStatusRNF
		f.status &^= fdcStatusBusy
		f.state = fdcIdle
		f.IRQ = true
		return
	}
	if img.ReadOnly {
		f.status |= fdcStatusWriteProt
		f.status &^= fdcStatusBusy
		f.state = fdcIdle
		f.IRQ = true
		return
	}
	f.bufferPos = 0
	f.bufferLen = 256
	f.state = fdcWriteData
	f.delayTStates = 3500 * 10
	f.status |= fdcStatusDRQ
	f.DRQ = true
}

// Status, Track, and Sector expose register state for the debug monitor.
func (f *FDC) Status() byte { return f.status }
func (f *FDC) Track() byte  { return f.track }
func (f *FDC) Sector() byte { return f.sector }

// PortIn handles a read of one of the Beta Disk interface's five ports.
func (f *FDC) PortIn(port uint16) byte {
	switch port & 0xFF {
	case FDCPortStatus:
		return f.status
	case FDCPortTrack:
		return f.track
	case FDCPortSector:
		return f.sector
	case FDCPortData:
		if f.state == fdcReadData && f.bufferPos < f.bufferLen {
			f.data = f.sectorBuffer[f.bufferPos]
			f.bufferPos++
			if f.bufferPos >= f.bufferLen {
				f.status &^= fdcStatusDRQ | fdcStatusBusy
				f.state = fdcIdle
				f.DRQ = false
				f.IRQ = true
			}
		}
		return f.data
	case FDCPortControl:
		return f.control
	default:
		return 0xFF
	}
}

// PortOut handles a write to one of the Beta Disk interface's five ports.
func (f *FDC) PortOut(port uint16, v byte) {
	switch port & 0xFF {
	case FDCPortStatus:
		f.executeCommand(v)
	case FDCPortTrack:
		f.track = v
	case FDCPortSector:
		f.sector = v
	case FDCPortData:
		if f.state == fdcWriteData && f.bufferPos < f.bufferLen {
			f.sectorBuffer[f.bufferPos] = v
			f.bufferPos++
			if f.bufferPos >= f.bufferLen {
				if img := f.currentImage(); img != nil && !img.ReadOnly {
					sectorNum := byte(0)
					if f.sector > 0 {
						sectorNum = f.sector - 1
					}
					img.WriteSector(f.track, byte(f.currentSide), sectorNum, f.sectorBuffer)
				}
				f.status &^= fdcStatusDRQ | fdcStatusBusy
				f.state = fdcIdle
				f.DRQ = false
				f.IRQ = true
			}
		} else {
			f.data = v
		}
	case FDCPortControl:
		f.control = v
		f.currentDrive = int(v & fdcControlDriveMask)
		if v&fdcControlSide != 0 {
			f.currentSide = 1
		} else {
			f.currentSide = 0
		}
		if f.drives[f.currentDrive] != nil {
			f.status &^= fdcStatusNotReady
		} else {
			f.status |= fdcStatusNotReady
		}
	}
}

// Step advances the controller's busy timer by n T-states.
func (f *FDC) Step(n int) {
	if f.delayTStates <= 0 {
		return
	}
	if n >= f.delayTStates {
		f.delayTStates = 0
		if f.state == fdcBusy {
			f.status &^= fdcStatusBusy
			f.state = fdcIdle
			f.IRQ = true
		}
	} else {
		f.delayTStates -= n
	}
}

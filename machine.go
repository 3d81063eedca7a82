// machine.go - top-level Machine: owns the Clock and every emulated
// component, implements the Z80's bus, and drives the per-frame loop
// (instruction step -> clock advance -> scanline render -> FDC/mixer
// step -> frame interrupt). No package-level singletons; every
// component is an owned value behind explicit accessors.

package main

import (
	"os"
	"path/filepath"
	"strings"
)

// Config is the parsed CLI state handed to NewMachine.
type Config struct {
	Model       Model
	ROMPath     string // 48K ROM, or 128K ROM page 0
	ROM1Path    string // 128K ROM page 1
	TRDOSROM    string
	DriveCount  int
	ReadOnly    bool
	Issue2Board bool
}

// irqHoldTStates is how long the ULA holds the INT line asserted at the
// start of each frame.
const irqHoldTStates = 32

// Machine is the composition root for one emulated Spectrum.
type Machine struct {
	model Model

	clock *Clock
	mem   *Memory
	cpu   *Z80
	ula   *ULA
	tape  *Tape
	ay    *AY
	fdc   *FDC
	mixer *Mixer

	trdos      TRDOSROM
	trdosPaged bool

	kempstonPresent bool
	kempstonState   byte

	driveCount int
	readOnly   bool

	// tapePath/drivePaths remember what is mounted where, for the F6
	// rewind-reload hotkey and the fsnotify remount path.
	tapePath   string
	drivePaths [4]string

	scanlineCursor int
	frameCount     uint64
}

// NewMachine wires a Spectrum from cfg. The ROM named by cfg.ROMPath is
// mandatory; a missing or malformed image is an initialization failure.
func NewMachine(cfg Config) (*Machine, error) {
	m := &Machine{
		model:      cfg.Model,
		clock:      NewClock(),
		mem:        NewMemory(cfg.Model),
		tape:       NewTape(),
		fdc:        NewFDC(),
		driveCount: cfg.DriveCount,
		readOnly:   cfg.ReadOnly,
	}
	if m.driveCount < 1 {
		m.driveCount = 1
	}
	if m.driveCount > 4 {
		m.driveCount = 4
	}

	rom, err := readROMFile(cfg.ROMPath)
	if err != nil {
		return nil, err
	}
	m.mem.LoadROM(0, rom)

	if cfg.Model == Model128K {
		rom1, err := readROMFile(cfg.ROM1Path)
		if err != nil {
			return nil, err
		}
		m.mem.LoadROM(1, rom1)
		m.ay = NewAY()
	}

	if cfg.TRDOSROM != "" {
		data, err := os.ReadFile(cfg.TRDOSROM)
		if err != nil {
			return nil, wrapIO(err, "reading TR-DOS ROM %s", cfg.TRDOSROM)
		}
		if err := m.trdos.Load(data); err != nil {
			return nil, err
		}
	}

	m.ula = NewULA(m.mem, m.tape)
	m.ula.issue2Board = cfg.Issue2Board
	m.mixer = NewMixer(m.ay, m.tape)
	m.ula.SetEdgeSink(func(_ uint64, level bool) {
		m.mixer.SetBeeperLevel(level)
	})
	m.cpu = NewZ80(m)
	return m, nil
}

func readROMFile(path string) ([]byte, error) {
	if path == "" {
		return nil, wrapInvalidImage("no ROM image configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapIO(err, "reading ROM %s", path)
	}
	return LoadROMImage(data)
}

// Component accessors for the CLI, frontends, and monitor.
func (m *Machine) CPU() *Z80      { return m.cpu }
func (m *Machine) ULA() *ULA      { return m.ula }
func (m *Machine) Memory() *Memory { return m.mem }
func (m *Machine) Tape() *Tape    { return m.tape }
func (m *Machine) FDC() *FDC      { return m.fdc }
func (m *Machine) AY() *AY        { return m.ay }
func (m *Machine) Clock() *Clock  { return m.clock }
func (m *Machine) Mixer() *Mixer  { return m.mixer }
func (m *Machine) Model() Model   { return m.model }
func (m *Machine) FrameCount() uint64 { return m.frameCount }

// ReadByte implements Z80Bus: slot 0 reads come from the TR-DOS ROM while
// the Beta Disk interface has it paged in.
func (m *Machine) ReadByte(addr uint16) byte {
	if m.trdosPaged && addr < 0x4000 {
		return m.trdos.Byte(addr)
	}
	return m.mem.ReadByte(addr)
}

// WriteByte implements Z80Bus.
func (m *Machine) WriteByte(addr uint16, v byte) {
	m.mem.WriteByte(addr, v)
}

// AddressOnBus implements Z80Bus: charges the base cycles plus any
// contended-memory wait states for the access and advances the shared
// Clock so later accesses within the same instruction see the right
// T-state for their own contention lookup.
func (m *Machine) AddressOnBus(addr uint16, cycles int) int {
	total := cycles + ContentionDelay(m.mem, addr, m.clock.T)
	m.clock.Add(total)
	return total
}

func fdcPort(port uint16) bool {
	switch byte(port) {
	case FDCPortStatus, FDCPortTrack, FDCPortSector, FDCPortData, FDCPortControl:
		return true
	}
	return false
}

// ReadPort implements Z80Bus.
func (m *Machine) ReadPort(port uint16) byte {
	if port&1 == 0 {
		return m.ula.ReadPortFE(byte(port>>8), m.clock.T)
	}
	if m.trdosPaged && fdcPort(port) {
		return m.fdc.PortIn(port)
	}
	if byte(port) == 0x1F {
		if m.kempstonPresent {
			return m.kempstonState
		}
		return 0xFF
	}
	if m.model == Model128K && port&0xC002 == 0xC000 {
		return m.ay.ReadData()
	}
	return m.ula.FloatingBusByte(m.clock.T)
}

// WritePort implements Z80Bus.
func (m *Machine) WritePort(port uint16, v byte) {
	if port&1 == 0 {
		m.ula.WritePortFE(v, m.clock.T)
		return
	}
	if m.trdosPaged && fdcPort(port) {
		m.fdc.PortOut(port, v)
		return
	}
	if m.model == Model128K {
		switch {
		case port&0x8002 == 0:
			m.mem.SetPagingLatch(v)
		case port&0xC002 == 0xC000:
			m.ay.SelectRegister(v)
		case port&0xC002 == 0x8000:
			m.ay.WriteData(v)
		}
	}
}

// updateTRDOSPaging applies the Beta Disk interface's address-decode rule:
// executing inside 0x3D00..0x3DFF pages the TR-DOS ROM into slot 0, and
// the first fetch at or above 0x4000 pages it back out.
func (m *Machine) updateTRDOSPaging() {
	if !m.trdos.Loaded() {
		return
	}
	pc := m.cpu.PC
	if !m.trdosPaged && pc&0xFF00 == 0x3D00 {
		m.trdosPaged = true
	} else if m.trdosPaged && pc >= 0x4000 {
		m.trdosPaged = false
	}
}

// RunFrame executes one 69,888-T-state frame: the IM-1 interrupt is
// asserted for the first irqHoldTStates, scanlines render as the Clock
// crosses each 224-T-state boundary, and the FDC and mixer step in the
// CPU's wake. Returns the frame's PCM samples.
func (m *Machine) RunFrame() []int16 {
	m.mixer.BeginFrame()
	m.cpu.SetIRQLine(true)

	for m.clock.T < FrameTStates {
		before := m.clock.T
		n := m.cpu.Step()
		// Port cycles and internal machine cycles are charged to the
		// instruction but not routed through AddressOnBus; fold the
		// difference in so Clock matches the sum of Step returns.
		if consumed := int(m.clock.T - before); n > consumed {
			m.clock.Add(n - consumed)
		}

		if m.clock.T >= irqHoldTStates {
			m.cpu.SetIRQLine(false)
		}
		m.updateTRDOSPaging()

		for boundary := uint64(m.scanlineCursor+1) * ScanlineTStates; m.clock.T >= boundary && m.scanlineCursor < ScanlinesPerFrame; boundary += ScanlineTStates {
			m.ula.RenderScanline(m.scanlineCursor)
			m.tape.EarLevelAt(m.clock.T)
			m.scanlineCursor++
		}

		m.fdc.Step(n)
		m.mixer.Advance(n)
	}

	for m.scanlineCursor < ScanlinesPerFrame {
		m.ula.RenderScanline(m.scanlineCursor)
		m.scanlineCursor++
	}

	m.ula.EndFrame()
	m.clock.EndFrame()
	m.tape.RebaseClock(FrameTStates)
	m.mixer.RebaseClock(FrameTStates)
	m.scanlineCursor = 0
	m.frameCount++
	return m.mixer.Samples()
}

// Reset performs the F12 hotkey's CPU reset: registers, paging latch, and
// Beta Disk paging all return to power-on state; mounted media stay put.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.mem.ResetPaging()
	m.trdosPaged = false
	m.fdc.Reset()
	for i, img := range m.fdc.drives {
		if img != nil {
			m.fdc.AttachImage(i, img)
		}
	}
}

// ToggleTRDOS flips the Beta Disk ROM paging manually (F9).
func (m *Machine) ToggleTRDOS() bool {
	if !m.trdos.Loaded() {
		return false
	}
	m.trdosPaged = !m.trdosPaged
	return m.trdosPaged
}

// SetKempston marks the Kempston joystick present and applies its state
// byte (bit 0 right, 1 left, 2 down, 3 up, 4 fire).
func (m *Machine) SetKempston(state byte) {
	m.kempstonPresent = true
	m.kempstonState = state
}

// LoadFile dispatches a host file to the right subsystem by extension.
// Load failures leave the machine in its prior state.
func (m *Machine) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapIO(err, "reading %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tap":
		tape, err := LoadTAP(data)
		if err != nil {
			return err
		}
		m.adoptTape(tape, path)
	case ".tzx":
		tape, err := LoadTZX(data)
		if err != nil {
			return err
		}
		m.adoptTape(tape, path)
	case ".sna":
		if err := LoadSNA(data, m.cpu, m.mem, m.ula); err != nil {
			return err
		}
	case ".trd":
		img, err := LoadTRD(data)
		if err != nil {
			return err
		}
		img.ReadOnly = img.ReadOnly || m.readOnly
		return m.mountDisk(img, path)
	case ".scl":
		img, err := LoadSCL(data)
		if err != nil {
			return err
		}
		return m.mountDisk(img, path)
	default:
		return wrapInvalidImage("unrecognized file extension on %s", path)
	}
	return nil
}

func (m *Machine) adoptTape(tape *Tape, path string) {
	*m.tape = *tape
	m.tapePath = path
}

func (m *Machine) mountDisk(img *TRDImage, path string) error {
	// A path already mounted remounts in place (the hot-reload case).
	for d := 0; d < m.driveCount; d++ {
		if m.drivePaths[d] == path {
			m.fdc.AttachImage(d, img)
			return nil
		}
	}
	for d := 0; d < m.driveCount; d++ {
		if m.fdc.drives[d] == nil {
			m.fdc.AttachImage(d, img)
			m.drivePaths[d] = path
			return nil
		}
	}
	return wrapInvalidImage("no free drive for %s (drive count %d)", path, m.driveCount)
}

// ReloadTape re-reads the active tape file from disk and rewinds it (F6,
// also the fsnotify hot-reload path).
func (m *Machine) ReloadTape() error {
	if m.tapePath == "" {
		m.tape.Rewind()
		return nil
	}
	return m.LoadFile(m.tapePath)
}

// ToggleTapePlay starts or pauses the tape (F7).
func (m *Machine) ToggleTapePlay() bool {
	if m.tape.Playing() {
		m.tape.Stop()
	} else {
		m.tape.Play()
	}
	return m.tape.Playing()
}

// DriveCatalog pairs a drive slot with its decoded TR-DOS catalog.
type DriveCatalog struct {
	Drive int
	Path  string
	Files []TRDFileEntry
}

// Catalogs returns the catalog of every mounted drive, for the F8 dump.
func (m *Machine) Catalogs() []DriveCatalog {
	var out []DriveCatalog
	for d := 0; d < m.driveCount; d++ {
		img := m.fdc.drives[d]
		if img == nil {
			continue
		}
		out = append(out, DriveCatalog{Drive: d, Path: m.drivePaths[d], Files: img.ListFiles()})
	}
	return out
}

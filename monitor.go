// monitor.go - terminal debug monitor: Z80 registers, raster position,
// FDC status, and the mounted TR-DOS catalogs, rendered with bubbletea
// + lipgloss. The monitor is fed read-only snapshots from the emulation
// loop and never touches Machine state across goroutines.

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MonitorSnapshot is the immutable view of machine state the frontend
// publishes once per frame.
type MonitorSnapshot struct {
	AF, BC, DE, HL     uint16
	AF2, BC2, DE2, HL2 uint16
	IX, IY, SP, PC     uint16
	I, R               byte
	IFF1               bool
	IM                 int
	Halted             bool

	Scanline    int
	TStateInLine int
	FrameCount  uint64
	Border      byte

	FDCStatus byte
	FDCTrack  byte
	FDCSector byte

	TapePlaying bool

	Catalogs []DriveCatalog
}

// SnapshotMachine captures a MonitorSnapshot; call only from the
// emulation goroutine between frames.
func SnapshotMachine(m *Machine) MonitorSnapshot {
	z := m.CPU()
	return MonitorSnapshot{
		AF: z.AF(), BC: z.BC(), DE: z.DE(), HL: z.HL(),
		AF2: z.AF2(), BC2: z.BC2(), DE2: z.DE2(), HL2: z.HL2(),
		IX: z.IX, IY: z.IY, SP: z.SP, PC: z.PC,
		I: z.I, R: z.R, IFF1: z.IFF1, IM: z.IM, Halted: z.Halted,

		Scanline:     m.Clock().Scanline(),
		TStateInLine: m.Clock().TStateInLine(),
		FrameCount:   m.FrameCount(),
		Border:       m.ULA().Border(),

		FDCStatus: m.FDC().Status(),
		FDCTrack:  m.FDC().Track(),
		FDCSector: m.FDC().Sector(),

		TapePlaying: m.Tape().Playing(),

		Catalogs: m.Catalogs(),
	}
}

var (
	monTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	monLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	monValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	monPanelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	monHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// monitorModel is the bubbletea model. It holds the latest snapshot and a
// toggle for the catalog pane (mirroring the F8 hotkey in-window).
type monitorModel struct {
	snaps        <-chan MonitorSnapshot
	latest       MonitorSnapshot
	showCatalogs bool
}

type monitorTickMsg MonitorSnapshot

func waitForSnapshot(snaps <-chan MonitorSnapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-snaps
		if !ok {
			return tea.Quit()
		}
		return monitorTickMsg(s)
	}
}

func (mm monitorModel) Init() tea.Cmd {
	return waitForSnapshot(mm.snaps)
}

func (mm monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return mm, tea.Quit
		case "c":
			mm.showCatalogs = !mm.showCatalogs
		}
	case monitorTickMsg:
		mm.latest = MonitorSnapshot(msg)
		return mm, waitForSnapshot(mm.snaps)
	}
	return mm, nil
}

func row(label string, format string, args ...interface{}) string {
	return monLabelStyle.Render(label) + " " + monValueStyle.Render(fmt.Sprintf(format, args...))
}

func (mm monitorModel) View() string {
	s := mm.latest

	regs := strings.Join([]string{
		row("AF", "%04X", s.AF) + "  " + row("AF'", "%04X", s.AF2),
		row("BC", "%04X", s.BC) + "  " + row("BC'", "%04X", s.BC2),
		row("DE", "%04X", s.DE) + "  " + row("DE'", "%04X", s.DE2),
		row("HL", "%04X", s.HL) + "  " + row("HL'", "%04X", s.HL2),
		row("IX", "%04X", s.IX) + "  " + row("IY ", "%04X", s.IY),
		row("SP", "%04X", s.SP) + "  " + row("PC ", "%04X", s.PC),
		row("I ", "%02X", s.I) + "    " + row("R  ", "%02X", s.R),
		row("IM", "%d", s.IM) + "     " + row("IFF1", "%v", s.IFF1),
	}, "\n")

	raster := strings.Join([]string{
		row("frame   ", "%d", s.FrameCount),
		row("scanline", "%d", s.Scanline),
		row("t-state ", "%d", s.TStateInLine),
		row("border  ", "%d", s.Border),
		row("tape    ", "%v", s.TapePlaying),
		row("halted  ", "%v", s.Halted),
	}, "\n")

	fdc := strings.Join([]string{
		row("status", "%08b", s.FDCStatus),
		row("track ", "%d", s.FDCTrack),
		row("sector", "%d", s.FDCSector),
	}, "\n")

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		monPanelStyle.Render(monTitleStyle.Render("Z80")+"\n"+regs),
		monPanelStyle.Render(monTitleStyle.Render("ULA")+"\n"+raster),
		monPanelStyle.Render(monTitleStyle.Render("FDC")+"\n"+fdc),
	)

	out := panels
	if mm.showCatalogs {
		out += "\n" + monPanelStyle.Render(monTitleStyle.Render("Catalogs")+"\n"+
			strings.Join(FormatCatalogs(s.Catalogs), "\n"))
	}
	out += "\n" + monHelpStyle.Render("c: catalogs  q: close monitor")
	return out
}

// RunMonitor drives the bubbletea monitor until the user closes it or
// snaps is closed. Blocks; run it under the errgroup next to the
// frontend.
func RunMonitor(snaps <-chan MonitorSnapshot) error {
	p := tea.NewProgram(monitorModel{snaps: snaps})
	_, err := p.Run()
	return err
}

// hotkeys.go - function-key dispatch table mapping the fixed F-key set
// onto Machine methods.

package main

import (
	"fmt"
	"log/slog"
	"strings"
)

// HotkeyAction identifies one of the fixed host hotkeys.
type HotkeyAction int

const (
	HotkeyNone HotkeyAction = iota
	HotkeyRewindTape                // F6
	HotkeyToggleTape                // F7
	HotkeyDumpCatalogs              // F8
	HotkeyToggleTRDOS               // F9
	HotkeyReset                     // F12
	HotkeyQuit                      // Esc
)

// HotkeyRouter maps hotkey actions onto Machine methods. quit is invoked
// on HotkeyQuit and is supplied by the frontend (it typically cancels the
// run context).
type HotkeyRouter struct {
	machine *Machine
	log     *slog.Logger
	quit    func()
}

// NewHotkeyRouter wires a router to m. A nil logger falls back to
// slog.Default.
func NewHotkeyRouter(m *Machine, log *slog.Logger, quit func()) *HotkeyRouter {
	if log == nil {
		log = slog.Default()
	}
	return &HotkeyRouter{machine: m, log: log, quit: quit}
}

// Dispatch performs the given action on the machine.
func (h *HotkeyRouter) Dispatch(action HotkeyAction) {
	switch action {
	case HotkeyRewindTape:
		if err := h.machine.ReloadTape(); err != nil {
			h.log.Error("tape reload failed", "err", err)
			return
		}
		h.log.Info("tape rewound")
	case HotkeyToggleTape:
		if h.machine.ToggleTapePlay() {
			h.log.Info("tape playing")
		} else {
			h.log.Info("tape paused")
		}
	case HotkeyDumpCatalogs:
		for _, line := range FormatCatalogs(h.machine.Catalogs()) {
			h.log.Info(line)
		}
	case HotkeyToggleTRDOS:
		h.log.Info("tr-dos rom", "paged", h.machine.ToggleTRDOS())
	case HotkeyReset:
		h.machine.Reset()
		h.log.Info("cpu reset")
	case HotkeyQuit:
		if h.quit != nil {
			h.quit()
		}
	}
}

// FormatCatalogs renders mounted drives' catalogs as text lines, shared by
// the F8 log dump and the monitor's catalog pane.
func FormatCatalogs(cats []DriveCatalog) []string {
	if len(cats) == 0 {
		return []string{"no disks mounted"}
	}
	var out []string
	for _, c := range cats {
		out = append(out, fmt.Sprintf("drive %c: %s (%d files)", 'A'+c.Drive, c.Path, len(c.Files)))
		for _, f := range c.Files {
			name := strings.TrimRight(string(f.Filename[:]), " ")
			out = append(out, fmt.Sprintf("  %-8s <%c> start=%5d len=%5d sectors=%3d @ trk %d sec %d",
				name, f.Extension, f.Start, f.Length, f.SectorsUsed, f.StartTrack, f.StartSector))
		}
	}
	return out
}

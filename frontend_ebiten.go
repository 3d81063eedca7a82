//go:build !headless

// frontend_ebiten.go - windowed frontend: an ebiten.Game that steps one
// emulated frame per tick at 50 TPS, maps host keys onto the 8x5
// keyboard matrix, and pushes the ULA's RGBA frame to the window.

package main

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const displayScale = 2

// matrixKey binds one host key to a (row, bit) position in the keyboard
// matrix read through port 0xFE.
type matrixKey struct {
	row, bit int
}

// keyMatrixMap is the Spectrum's physical layout: half-row 0 is
// CAPS..V, 1 is A..G, 2 is Q..T, 3 is 1..5, 4 is 0..6, 5 is P..Y,
// 6 is ENTER..H, 7 is SPACE..B.
var keyMatrixMap = map[ebiten.Key]matrixKey{
	ebiten.KeyShiftLeft: {0, 0},
	ebiten.KeyZ:         {0, 1},
	ebiten.KeyX:         {0, 2},
	ebiten.KeyC:         {0, 3},
	ebiten.KeyV:         {0, 4},

	ebiten.KeyA: {1, 0},
	ebiten.KeyS: {1, 1},
	ebiten.KeyD: {1, 2},
	ebiten.KeyF: {1, 3},
	ebiten.KeyG: {1, 4},

	ebiten.KeyQ: {2, 0},
	ebiten.KeyW: {2, 1},
	ebiten.KeyE: {2, 2},
	ebiten.KeyR: {2, 3},
	ebiten.KeyT: {2, 4},

	ebiten.KeyDigit1: {3, 0},
	ebiten.KeyDigit2: {3, 1},
	ebiten.KeyDigit3: {3, 2},
	ebiten.KeyDigit4: {3, 3},
	ebiten.KeyDigit5: {3, 4},

	ebiten.KeyDigit0: {4, 0},
	ebiten.KeyDigit9: {4, 1},
	ebiten.KeyDigit8: {4, 2},
	ebiten.KeyDigit7: {4, 3},
	ebiten.KeyDigit6: {4, 4},

	ebiten.KeyP: {5, 0},
	ebiten.KeyO: {5, 1},
	ebiten.KeyI: {5, 2},
	ebiten.KeyU: {5, 3},
	ebiten.KeyY: {5, 4},

	ebiten.KeyEnter:      {6, 0},
	ebiten.KeyL:          {6, 1},
	ebiten.KeyK:          {6, 2},
	ebiten.KeyJ:          {6, 3},
	ebiten.KeyH:          {6, 4},

	ebiten.KeySpace:      {7, 0},
	ebiten.KeyShiftRight: {7, 1}, // symbol shift
	ebiten.KeyM:          {7, 2},
	ebiten.KeyN:          {7, 3},
	ebiten.KeyB:          {7, 4},
}

// composedKeys are host keys that press a shift plus a matrix key, the
// way the real keyboard reaches cursor and editing functions.
var composedKeys = map[ebiten.Key][2]matrixKey{
	ebiten.KeyBackspace:  {{0, 0}, {4, 0}}, // CAPS+0 = DELETE
	ebiten.KeyArrowLeft:  {{0, 0}, {3, 4}}, // CAPS+5
	ebiten.KeyArrowDown:  {{0, 0}, {4, 4}}, // CAPS+6
	ebiten.KeyArrowUp:    {{0, 0}, {4, 3}}, // CAPS+7
	ebiten.KeyArrowRight: {{0, 0}, {4, 2}}, // CAPS+8
}

var hotkeyMap = map[ebiten.Key]HotkeyAction{
	ebiten.KeyF6:     HotkeyRewindTape,
	ebiten.KeyF7:     HotkeyToggleTape,
	ebiten.KeyF8:     HotkeyDumpCatalogs,
	ebiten.KeyF9:     HotkeyToggleTRDOS,
	ebiten.KeyF12:    HotkeyReset,
	ebiten.KeyEscape: HotkeyQuit,
}

// EbitenFrontend owns the window, the per-frame emulation tick, and the
// audio ring feed.
type EbitenFrontend struct {
	machine *Machine
	hotkeys *HotkeyRouter
	ring    *AudioRing
	events  <-chan string

	ctx    context.Context
	cancel context.CancelFunc

	frame *ebiten.Image

	snapshots chan<- MonitorSnapshot
}

// NewEbitenFrontend builds the windowed frontend. events delivers paths
// the fsnotify watcher saw change; snapshots (optional) feeds the debug
// monitor.
func NewEbitenFrontend(m *Machine, hot *HotkeyRouter, ring *AudioRing, events <-chan string, snapshots chan<- MonitorSnapshot) *EbitenFrontend {
	return &EbitenFrontend{
		machine:   m,
		hotkeys:   hot,
		ring:      ring,
		events:    events,
		frame:     ebiten.NewImage(ULAFrameWidth, ULAFrameHeight),
		snapshots: snapshots,
	}
}

// Run opens the window and blocks until the machine quits or ctx is
// cancelled.
func (fe *EbitenFrontend) Run(ctx context.Context) error {
	fe.ctx, fe.cancel = context.WithCancel(ctx)
	ebiten.SetWindowSize(ULAFrameWidth*displayScale, ULAFrameHeight*displayScale)
	ebiten.SetWindowTitle("spectrum")
	ebiten.SetTPS(50)
	err := ebiten.RunGame(fe)
	fe.cancel()
	if _, ok := err.(quitError); ok {
		return nil
	}
	return err
}

type quitError struct{}

func (quitError) Error() string { return "quit" }

// Update runs exactly one emulated frame per tick.
func (fe *EbitenFrontend) Update() error {
	select {
	case <-fe.ctx.Done():
		return quitError{}
	case path := <-fe.events:
		if err := fe.machine.LoadFile(path); err == nil {
			fe.machine.Tape().Rewind()
		}
	default:
	}

	for key, action := range hotkeyMap {
		if inpututil.IsKeyJustPressed(key) {
			fe.hotkeys.Dispatch(action)
		}
	}
	fe.applyKeyboard()

	samples := fe.machine.RunFrame()
	fe.ring.WriteSamples(samples)

	if fe.snapshots != nil {
		select {
		case fe.snapshots <- SnapshotMachine(fe.machine):
		default:
		}
	}
	return nil
}

func (fe *EbitenFrontend) applyKeyboard() {
	ula := fe.machine.ULA()
	for key, mk := range keyMatrixMap {
		if ebiten.IsKeyPressed(key) {
			ula.KeyDown(mk.row, mk.bit)
		} else {
			ula.KeyUp(mk.row, mk.bit)
		}
	}
	for key, pair := range composedKeys {
		if ebiten.IsKeyPressed(key) {
			ula.KeyDown(pair[0].row, pair[0].bit)
			ula.KeyDown(pair[1].row, pair[1].bit)
		}
	}
}

// Draw pushes the ULA's RGBA frame into the window.
func (fe *EbitenFrontend) Draw(screen *ebiten.Image) {
	fe.frame.WritePixels(fe.machine.ULA().Frame())
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(displayScale, displayScale)
	screen.DrawImage(fe.frame, &op)
}

// Layout reports the logical resolution.
func (fe *EbitenFrontend) Layout(_, _ int) (int, int) {
	return ULAFrameWidth * displayScale, ULAFrameHeight * displayScale
}

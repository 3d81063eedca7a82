//go:build headless

// frontend_headless.go - windowless frontend: same Run surface as the
// ebiten build, frames paced by a wall-clock ticker instead of VSync,
// no key input beyond hotkey events injected by tests.

package main

import (
	"context"
	"time"
)

type EbitenFrontend struct {
	machine   *Machine
	hotkeys   *HotkeyRouter
	ring      *AudioRing
	events    <-chan string
	snapshots chan<- MonitorSnapshot
}

func NewEbitenFrontend(m *Machine, hot *HotkeyRouter, ring *AudioRing, events <-chan string, snapshots chan<- MonitorSnapshot) *EbitenFrontend {
	return &EbitenFrontend{machine: m, hotkeys: hot, ring: ring, events: events, snapshots: snapshots}
}

// Run steps frames at 50Hz until ctx is cancelled.
func (fe *EbitenFrontend) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / 50)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-fe.events:
			if err := fe.machine.LoadFile(path); err == nil {
				fe.machine.Tape().Rewind()
			}
		case <-ticker.C:
			samples := fe.machine.RunFrame()
			fe.ring.WriteSamples(samples)
			if fe.snapshots != nil {
				select {
				case fe.snapshots <- SnapshotMachine(fe.machine):
				default:
				}
			}
		}
	}
}

// nav/snapshot.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"io"

	av "github.com/mmp/pathtrack/aviation"

	"github.com/brunoga/deep"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// TrackerSnapshot captures a Tracker's session state so that it can be
// rolled back or saved along with the rest of a simulation.
type TrackerSnapshot struct {
	Direction        IndexProgressionDirection
	Path             av.HorizontalPath // extended
	CurrentIndex     int
	Initialized      bool
	PassedEndOfRoute bool
	Callsign         string
}

// TakeSnapshot captures the tracker's current state for later rollback.
func (t *Tracker) TakeSnapshot() TrackerSnapshot {
	return deep.MustCopy(TrackerSnapshot{
		Direction:        t.direction,
		Path:             t.path,
		CurrentIndex:     t.CurrentIndex(),
		Initialized:      t.initialized,
		PassedEndOfRoute: t.passedEndOfRoute,
		Callsign:         t.callsign,
	})
}

// RestoreSnapshot restores the tracker's state from a previously captured
// snapshot.
func (t *Tracker) RestoreSnapshot(snap TrackerSnapshot) error {
	if len(snap.Path) < 4 {
		return fmt.Errorf("snapshot path has %d nodes: %w", len(snap.Path), ErrMalformedPath)
	}
	idx := extendedFromOriginal(snap.CurrentIndex)
	if snap.Initialized && (idx < 1 || int(idx) >= len(snap.Path)) {
		return fmt.Errorf("snapshot index %d out of range for %d nodes: %w", snap.CurrentIndex,
			len(snap.Path)-2, ErrMalformedPath)
	}

	snap = deep.MustCopy(snap)
	t.direction = snap.Direction
	t.path = snap.Path
	t.currentIndex = idx
	t.initialized = snap.Initialized
	t.passedEndOfRoute = snap.PassedEndOfRoute
	t.callsign = snap.Callsign
	return nil
}

// Save writes the snapshot to w as zstd-compressed msgpack.
func (snap TrackerSnapshot) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(snap); err != nil {
		return fmt.Errorf("failed to encode tracker snapshot: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// LoadTrackerSnapshot reads a snapshot written by TrackerSnapshot.Save.
func LoadTrackerSnapshot(r io.Reader) (TrackerSnapshot, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return TrackerSnapshot{}, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var snap TrackerSnapshot
	if err := msgpack.NewDecoder(zr).Decode(&snap); err != nil {
		return TrackerSnapshot{}, fmt.Errorf("failed to decode tracker snapshot: %w", err)
	}
	return snap, nil
}

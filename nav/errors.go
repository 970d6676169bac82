// nav/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"errors"
	"fmt"

	av "github.com/mmp/pathtrack/aviation"
)

// Errors used by the nav package
var (
	// ErrOffPath is returned when a position is farther from every path
	// segment than the cross-track tolerance. It is recoverable: callers
	// may retry with a wider tolerance.
	ErrOffPath = errors.New("Position is not within cross-track tolerance of the path")
	// ErrIndexProgression indicates that the tracked path and the
	// aircraft's motion have desynchronized. It is not recoverable.
	ErrIndexProgression = errors.New("Path index moved against the declared progression direction")
	ErrMalformedPath    = av.ErrMalformedPath
)

// IndexProgressionError is returned when a query resolves to a path index
// that contradicts the tracker's IndexProgressionDirection. Indices are in
// the caller's (unextended) path index space.
type IndexProgressionError struct {
	Direction   IndexProgressionDirection
	Current     int
	Candidate   int
	NearbyNodes string
}

func (e *IndexProgressionError) Error() string {
	return fmt.Sprintf("%s: direction %s, current index %d, candidate index %d\nnearby nodes:\n%s",
		ErrIndexProgression, e.Direction, e.Current, e.Candidate, e.NearbyNodes)
}

func (e *IndexProgressionError) Is(target error) bool {
	return target == ErrIndexProgression
}

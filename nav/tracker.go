// nav/tracker.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"log/slog"
	"strings"

	av "github.com/mmp/pathtrack/aviation"
	"github.com/mmp/pathtrack/log"
	"github.com/mmp/pathtrack/math"
	"github.com/mmp/pathtrack/util"

	"github.com/goforj/godump"
)

const (
	// ExtensionLength is the length of the synthetic straight segments
	// added at both ends of a tracked path.
	ExtensionLength = av.MetersPerNM

	// NodeSnapTolerance is the relative tolerance used when deciding that
	// a query coincides with a path node.
	NodeSnapTolerance = 1e-10

	// TurnStartGuard is the distance into a turn (meters) below which
	// positions are taken to be the turn's starting node.
	TurnStartGuard = 3.0
)

type IndexProgressionDirection int

const (
	UndefinedProgression IndexProgressionDirection = iota
	IncrementingProgression
	DecrementingProgression
)

func (d IndexProgressionDirection) String() string {
	switch d {
	case UndefinedProgression:
		return "undefined"
	case IncrementingProgression:
		return "incrementing"
	case DecrementingProgression:
		return "decrementing"
	default:
		return "unknown"
	}
}

type TrackerState int

const (
	Uninitialized TrackerState = iota
	Tracking
	PassedEndOfRoute
)

func (s TrackerState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Tracking:
		return "tracking"
	case PassedEndOfRoute:
		return "passed end of route"
	default:
		return "unknown"
	}
}

// extendedIndex indexes the extended path, which has one synthetic node
// ahead of the caller's first node.
type extendedIndex int

func (i extendedIndex) original() int { return int(i) - 1 }

func extendedFromOriginal(i int) extendedIndex { return extendedIndex(i + 1) }

// Tracker owns an extended copy of a HorizontalPath and the session state
// that keeps successive queries consistent: the last resolved index and
// whether the aircraft has passed the end of the route. A Tracker is used
// by a single aircraft's simulation loop; it does no locking.
type Tracker struct {
	direction        IndexProgressionDirection
	path             av.HorizontalPath // extended
	currentIndex     extendedIndex
	initialized      bool
	passedEndOfRoute bool
	callsign         string
	lg               *log.Logger
}

func NewTracker(path av.HorizontalPath, direction IndexProgressionDirection, lg *log.Logger) (*Tracker, error) {
	ext, err := extendPath(path)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		direction: direction,
		path:      ext,
		lg:        lg,
	}, nil
}

// extendPath returns a copy of path padded with a straight segment of
// ExtensionLength at each end; each has the course of the real segment it
// adjoins. Cumulative distances are shifted by ExtensionLength.
func extendPath(path av.HorizontalPath) (av.HorizontalPath, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	path = path.Clone()

	n := len(path)
	ext := make(av.HorizontalPath, 0, n+2)

	// The leading extension continues the first real segment backward.
	first := path[0]
	first.Course = entryCourse(path)
	ext = append(ext, av.PathNode{
		Position:           math.Sub2d(first.Position, math.Scale2d(math.SinCos(first.Course), ExtensionLength)),
		CumulativeDistance: first.CumulativeDistance,
		Course:             first.Course,
	})

	for i, node := range path {
		if i == 0 {
			node = first
		}
		node.CumulativeDistance += ExtensionLength
		ext = append(ext, node)
	}

	last := ext[n]
	ext = append(ext, av.PathNode{
		Position:           math.Add2d(last.Position, math.Scale2d(math.SinCos(last.Course), ExtensionLength)),
		CumulativeDistance: last.CumulativeDistance + ExtensionLength,
		Course:             last.Course,
	})

	return ext, nil
}

// CurrentIndex returns the index of the node that owns the most recently
// resolved segment, in the caller's path index space. The leading
// extension resolves to 0 and the trailing one to len(path).
func (t *Tracker) CurrentIndex() int {
	return t.currentIndex.original()
}

func (t *Tracker) IsPassedEndOfRoute() bool {
	return t.passedEndOfRoute
}

func (t *Tracker) Direction() IndexProgressionDirection {
	return t.direction
}

func (t *Tracker) State() TrackerState {
	if !t.initialized {
		return Uninitialized
	} else if t.passedEndOfRoute {
		return PassedEndOfRoute
	}
	return Tracking
}

// Path returns a copy of the caller's path as currently tracked.
func (t *Tracker) Path() av.HorizontalPath {
	p := t.path[1 : len(t.path)-1].Clone()
	for i := range p {
		p[i].CumulativeDistance -= ExtensionLength
	}
	return p
}

// SetCallsign sets the identifier used for the tracker's nav log output.
func (t *Tracker) SetCallsign(callsign string) {
	t.callsign = callsign
}

// UpdatePath replaces the tracked path without resetting the session
// state. It is intended for small refinements of the path between
// simulation steps; substantial changes should use a new Tracker.
func (t *Tracker) UpdatePath(path av.HorizontalPath) error {
	ext, err := extendPath(path)
	if err != nil {
		return err
	}

	t.path = ext
	if t.initialized {
		t.currentIndex = math.Clamp(t.currentIndex, 1, extendedIndex(len(ext)-1))
	}
	NavLog(t.callsign, NavLogPath, "path updated: %d nodes, length %.1f, index %d", len(path),
		path.Length(), t.CurrentIndex())
	if NavLogEnabled(NavLogPath) {
		NavLog(t.callsign, NavLogPath, "nodes:\n  %s", strings.Join(util.MapSlice(path, av.PathNode.String), "\n  "))
	}
	return nil
}

// startDistance and endDistance give the along-path distances of the
// first and last real nodes.
func (t *Tracker) startDistance() float64 {
	return t.path[1].CumulativeDistance - ExtensionLength
}

func (t *Tracker) endDistance() float64 {
	return t.path[len(t.path)-2].CumulativeDistance - ExtensionLength
}

// validateIndexProgression reports whether the candidate index is
// consistent with the declared progression direction.
func (t *Tracker) validateIndexProgression(candidate extendedIndex) bool {
	if !t.initialized {
		return true
	}

	switch t.direction {
	case IncrementingProgression:
		return candidate >= t.currentIndex
	case DecrementingProgression:
		return candidate <= t.currentIndex
	default:
		return true
	}
}

// updatePassedEndOfRoute updates the passed-end-of-route flag given a new
// along-path distance. For incrementing progression the flag is sticky:
// once set it is only cleared when the distance goes below the start of
// the path.
func (t *Tracker) updatePassedEndOfRoute(distance float64) {
	start, end := t.startDistance(), t.endDistance()
	was := t.passedEndOfRoute

	switch t.direction {
	case DecrementingProgression:
		t.passedEndOfRoute = distance < start
	case IncrementingProgression:
		if t.passedEndOfRoute {
			if distance < start {
				t.passedEndOfRoute = false
			}
		} else if distance > end {
			t.passedEndOfRoute = true
		}
	default:
		t.passedEndOfRoute = distance < start || distance > end
	}

	if was != t.passedEndOfRoute {
		NavLog(t.callsign, NavLogPassed, "passed end of route %v -> %v at distance %.3f", was,
			t.passedEndOfRoute, distance)
	}
}

// commit records a successfully resolved query.
func (t *Tracker) commit(idx extendedIndex, distance float64) {
	if !t.initialized || idx != t.currentIndex {
		NavLog(t.callsign, NavLogIndex, "index %d -> %d at distance %.3f", t.CurrentIndex(),
			idx.original(), distance)
	}
	t.currentIndex = idx
	t.initialized = true
	t.updatePassedEndOfRoute(distance)
}

// preferIndex picks the index in [lo, hi] closest to the current one;
// before the first query it picks lo.
func (t *Tracker) preferIndex(lo, hi extendedIndex) extendedIndex {
	if !t.initialized {
		return lo
	}
	return math.Clamp(t.currentIndex, lo, hi)
}

func (t *Tracker) progressionError(candidate extendedIndex) error {
	lo := max(0, min(t.currentIndex, candidate)-2)
	hi := min(extendedIndex(len(t.path)-1), max(t.currentIndex, candidate)+2)

	nearby := make(map[int]av.PathNode)
	for i := lo; i <= hi; i++ {
		nearby[i.original()] = t.path[i]
	}

	err := &IndexProgressionError{
		Direction:   t.direction,
		Current:     t.CurrentIndex(),
		Candidate:   candidate.original(),
		NearbyNodes: godump.DumpStr(nearby),
	}
	t.lg.Error("index progression violated", slog.String("callsign", t.callsign),
		slog.String("direction", t.direction.String()),
		slog.Int("current", err.Current), slog.Int("candidate", err.Candidate))
	return err
}

// IsDistanceOnNode returns the index of the path node whose cumulative
// distance matches the given distance, if there is one.
func (t *Tracker) IsDistanceOnNode(distance float64) (int, bool) {
	idx, exact := locateNode(t.path, distance+ExtensionLength, t.preferIndex)
	if !exact || !t.isRealNode(idx) {
		return 0, false
	}
	return idx.original(), true
}

// IsPositionOnNode returns the index of the path node at the given
// position, if there is one.
func (t *Tracker) IsPositionOnNode(x, y float64) (int, bool) {
	if idx, ok := t.positionOnNode([2]float64{x, y}); ok {
		return idx.original(), true
	}
	return 0, false
}

func (t *Tracker) isRealNode(idx extendedIndex) bool {
	return idx >= 1 && int(idx) <= len(t.path)-2
}

func (t *Tracker) positionOnNode(p [2]float64) (extendedIndex, bool) {
	tol := NodeSnapTolerance * max(1, math.Abs(p[0]), math.Abs(p[1]))

	found := false
	var best extendedIndex
	for i := extendedIndex(1); t.isRealNode(i); i++ {
		if math.Distance2d(t.path[i].Position, p) > tol {
			continue
		}
		if !found || t.betterNodeMatch(i, best) {
			best, found = i, true
		}
	}
	return best, found
}

// betterNodeMatch reports whether a is preferable to b when both match a
// query: indices consistent with the progression direction come first,
// then those closest to the current index, then the lowest.
func (t *Tracker) betterNodeMatch(a, b extendedIndex) bool {
	if !t.initialized {
		return a < b
	}
	va, vb := t.validateIndexProgression(a), t.validateIndexProgression(b)
	if va != vb {
		return va
	}
	da, db := math.Abs(a-t.currentIndex), math.Abs(b-t.currentIndex)
	if da != db {
		return da < db
	}
	return a < b
}

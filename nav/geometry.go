// nav/geometry.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"cmp"
	"slices"

	av "github.com/mmp/pathtrack/aviation"
	"github.com/mmp/pathtrack/math"
)

// All of the turn geometry lives here: the direction in which an aircraft
// sweeps a turn, the arc parametrization by distance and the tangent
// course. The calculators use these functions rather than deriving turn
// direction from raw angles themselves.

// projectionSlack is how far (meters) a projection may fall outside of a
// segment and still be considered to be on it.
const projectionSlack = 1e-6

// pathPoint is a resolved location on an extended path.
type pathPoint struct {
	index    extendedIndex
	distance float64 // along the extended path
	course   float64 // forward course
	exact    bool    // coincides with the node at index

	// Turn-only
	turn          *av.PathTurn
	theta         float64 // polar angle from the turn center
	swept         float64 // radians swept since entering the turn
	nearTurnStart bool
}

// turnDirection returns +1 if an aircraft flying toward decreasing distance
// turns counter-clockwise (left) through the turn and -1 if it turns
// clockwise.
func turnDirection(turn *av.PathTurn) float64 {
	if math.NormalizeSignedAngle(turn.EndAngle-turn.StartAngle) < 0 {
		return -1
	}
	return 1
}

// turnCourse returns the forward course at polar angle theta on a turn.
func turnCourse(turn *av.PathTurn, theta float64) float64 {
	return math.NormalizeAngle(theta + turnDirection(turn)*math.PiOver2)
}

// turnSweep returns the total angle swept by the turn held by path[idx].
func turnSweep(path av.HorizontalPath, idx extendedIndex) float64 {
	return (path[idx].CumulativeDistance - path[idx-1].CumulativeDistance) / path[idx].Turn.Radius
}

// entryCourse returns the path-definition course at the first node of a
// path, i.e. the direction of the first segment where it leaves that node.
func entryCourse(path av.HorizontalPath) float64 {
	n := path[1]
	if n.Turn == nil {
		return n.Course
	}
	return math.ReciprocalAngle(turnCourse(n.Turn, n.Turn.EndAngle))
}

// locateNode returns the index of the node owning the segment that
// contains the given extended-path distance: the first node whose
// cumulative distance is at least the distance. exact is true if the
// distance coincides with that node's. When several nodes share the
// distance, the tie is broken by preferIndex; if prefer is nil, the first
// is used. The returned index is clamped so that distances beyond either
// end of the path resolve to the adjacent end segment.
func locateNode(path av.HorizontalPath, distance float64,
	prefer func(lo, hi extendedIndex) extendedIndex) (idx extendedIndex, exact bool) {
	i, _ := slices.BinarySearchFunc(path, distance, func(n av.PathNode, d float64) int {
		return cmp.Compare(n.CumulativeDistance, d)
	})

	snap := func(j int) bool {
		return j >= 0 && j < len(path) && math.NearlyEqual(path[j].CumulativeDistance, distance, NodeSnapTolerance)
	}
	if snap(i - 1) {
		i, exact = i-1, true
	} else if snap(i) {
		exact = true
	}

	if exact {
		lo, hi := i, i
		for snap(lo - 1) {
			lo--
		}
		for snap(hi + 1) {
			hi++
		}
		if prefer != nil {
			i = int(prefer(extendedIndex(lo), extendedIndex(hi)))
		} else {
			i = lo
		}
	}

	if c := math.Clamp(i, 1, len(path)-1); c != i {
		// Beyond the end of the path; the node matched (if any) does not
		// own the segment used.
		i, exact = c, false
	}
	return extendedIndex(i), exact
}

// resolveDistance computes the forward course and turn parameters at the
// given extended-path distance on the segment owned by path[idx].
func resolveDistance(path av.HorizontalPath, idx extendedIndex, distance float64, exact bool) pathPoint {
	node := path[idx]
	pt := pathPoint{
		index:    idx,
		distance: distance,
		course:   math.ReciprocalAngle(node.Course),
		exact:    exact,
	}
	if exact {
		pt.distance = node.CumulativeDistance
	}

	if turn := node.Turn; turn != nil {
		residual := max(0, node.CumulativeDistance-pt.distance)
		s := turnDirection(turn)

		pt.turn = turn
		pt.swept = residual / turn.Radius
		pt.theta = turn.StartAngle + s*pt.swept
		pt.nearTurnStart = residual < TurnStartGuard
		if !exact {
			pt.course = turnCourse(turn, pt.theta)
		}
	}

	return pt
}

// position returns the planar position of the point.
func (pt pathPoint) position(path av.HorizontalPath) [2]float64 {
	node := path[pt.index]
	if pt.exact || (pt.turn != nil && pt.nearTurnStart) {
		return node.Position
	}
	if pt.turn != nil {
		return math.PointOnCircle(pt.turn.Center, pt.turn.Radius, pt.theta)
	}

	// Straight: distance-node.CumulativeDistance is negative inside the
	// segment and positive past its end, when extrapolating.
	return math.Add2d(node.Position, math.Scale2d(math.SinCos(node.Course), pt.distance-node.CumulativeDistance))
}

// pointToPointCourse returns the course to the next waypoint. It differs
// from the forward course only in the first half of a point-to-point
// turn, where the aircraft is still tracking toward the fly-by waypoint
// on the leg it flew before the turn.
func (pt pathPoint) pointToPointCourse(path av.HorizontalPath) float64 {
	if pt.turn == nil || pt.turn.Type != av.PointToPointTurn {
		return pt.course
	}
	if pt.swept < turnSweep(path, pt.index)/2 {
		return math.ReciprocalAngle(path[pt.index+1].Course)
	}
	return pt.course
}

// projectOntoSegment projects p onto the segment owned by path[idx]. It
// returns the projected point, the signed cross-track distance (positive
// to the left of the aircraft's direction of travel) and whether the
// projection falls within the segment. The first and last segments of
// the extended path are treated as unbounded at their outer ends.
func projectOntoSegment(path av.HorizontalPath, idx extendedIndex, p [2]float64) (pathPoint, float64, bool) {
	node := path[idx]
	segLength := node.CumulativeDistance - path[idx-1].CumulativeDistance

	if node.Turn == nil {
		u := math.SinCos(node.Course)
		rel := math.Sub2d(p, node.Position)
		along := math.Dot2d(rel, u) // <= 0 inside the segment

		if along > projectionSlack && int(idx) != len(path)-1 {
			return pathPoint{}, 0, false
		}
		if along < -segLength-projectionSlack && idx != 1 {
			return pathPoint{}, 0, false
		}

		pt := pathPoint{
			index:    idx,
			distance: node.CumulativeDistance + along,
			course:   math.ReciprocalAngle(node.Course),
		}
		return pt, -math.Cross2d(u, rel), true
	}

	turn := node.Turn
	r := math.Distance2d(p, turn.Center)
	if r == 0 {
		return pathPoint{}, 0, false
	}

	s := turnDirection(turn)
	sweep := turnSweep(path, idx)
	angleSlack := projectionSlack / turn.Radius

	swept := math.NormalizeAngle(s * (math.PolarAngle(turn.Center, p) - turn.StartAngle))
	if swept > math.TwoPi-angleSlack {
		// Just short of the turn's start.
		swept = 0
	}
	if swept > sweep+angleSlack {
		return pathPoint{}, 0, false
	}
	swept = min(swept, sweep)

	theta := turn.StartAngle + s*swept
	pt := pathPoint{
		index:         idx,
		distance:      node.CumulativeDistance - swept*turn.Radius,
		course:        turnCourse(turn, theta),
		turn:          turn,
		theta:         theta,
		swept:         swept,
		nearTurnStart: swept*turn.Radius < TurnStartGuard,
	}
	// The center is on the left for counter-clockwise turns, so points
	// outside the arc are to the right.
	return pt, s * (turn.Radius - r), true
}

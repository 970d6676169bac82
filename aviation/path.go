// aviation/path.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"fmt"

	"github.com/mmp/pathtrack/math"

	"github.com/brunoga/deep"
)

const MetersPerNM = 1852

var ErrMalformedPath = errors.New("Malformed horizontal path")

type SegmentKind int

const (
	StraightSegment SegmentKind = iota
	TurnSegment
)

func (k SegmentKind) String() string {
	switch k {
	case StraightSegment:
		return "straight"
	case TurnSegment:
		return "turn"
	default:
		return "unknown"
	}
}

type TurnType int

const (
	// PointToPointTurn is a fly-by turn between two legs that meet at a
	// waypoint.
	PointToPointTurn TurnType = iota
	// RadiusFixedTurn is a procedure-defined arc with a published radius.
	RadiusFixedTurn
)

func (t TurnType) String() string {
	switch t {
	case PointToPointTurn:
		return "point-to-point"
	case RadiusFixedTurn:
		return "radius-fixed"
	default:
		return "unknown"
	}
}

// HorizontalPath is a 2D ground path in planar meter coordinates. Nodes
// are ordered by increasing cumulative distance; aircraft flying the path
// move toward the first node, so the distance at their position is the
// distance to go.
type HorizontalPath []PathNode

// PathNode is a single node of a HorizontalPath. The segment described by
// a node is the one that ends at it: the segment from the previous node to
// this one.
type PathNode struct {
	Position           [2]float64 // meters
	CumulativeDistance float64    // meters from the first node
	// Course is the direction of increasing along-path distance on this
	// node's segment at the node, in radians counter-clockwise from +x.
	// Aircraft headings are its reciprocal.
	Course float64
	Turn   *PathTurn // nil for straight segments
}

// PathTurn describes a circular arc segment.
type PathTurn struct {
	Center [2]float64
	// StartAngle is the polar angle from Center to the node holding the
	// turn; that is where an aircraft flying toward decreasing distance
	// enters the arc. EndAngle is the polar angle to the previous node,
	// where it leaves the arc.
	StartAngle float64
	EndAngle   float64
	Radius     float64
	BankAngle  float64
	Type       TurnType
}

func (n PathNode) Kind() SegmentKind {
	if n.Turn != nil {
		return TurnSegment
	}
	return StraightSegment
}

func (n PathNode) String() string {
	s := fmt.Sprintf("(%.3f, %.3f) dist %.3f %s course %.2f", n.Position[0], n.Position[1],
		n.CumulativeDistance, n.Kind(), math.Degrees(n.Course))
	if n.Turn != nil {
		s += fmt.Sprintf(" center (%.3f, %.3f) radius %.3f start %.2f end %.2f %s",
			n.Turn.Center[0], n.Turn.Center[1], n.Turn.Radius,
			math.Degrees(n.Turn.StartAngle), math.Degrees(n.Turn.EndAngle), n.Turn.Type)
	}
	return s
}

// Length returns the along-path distance from the first node to the last.
func (p HorizontalPath) Length() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].CumulativeDistance - p[0].CumulativeDistance
}

// Clone returns a deep copy of the path so that the caller owns the turn
// definitions as well as the nodes.
func (p HorizontalPath) Clone() HorizontalPath {
	return deep.MustCopy(p)
}

// Validate checks the structural requirements on a path: it must have at
// least two nodes, may neither start nor end in a turn, and its cumulative
// distances may not decrease. Turns must have a positive radius and sweep
// less than 180 degrees, since the direction of a turn is inferred from
// its start and end angles.
func (p HorizontalPath) Validate() error {
	if len(p) < 2 {
		return fmt.Errorf("%d nodes; at least 2 are required: %w", len(p), ErrMalformedPath)
	}
	if p[0].Turn != nil {
		return fmt.Errorf("path starts with a turn: %w", ErrMalformedPath)
	}
	if p[len(p)-1].Turn != nil {
		return fmt.Errorf("path ends with a turn: %w", ErrMalformedPath)
	}

	for i := 1; i < len(p); i++ {
		n := p[i]
		segLength := n.CumulativeDistance - p[i-1].CumulativeDistance
		if segLength < 0 {
			return fmt.Errorf("node %d: cumulative distance %f less than previous %f: %w", i,
				n.CumulativeDistance, p[i-1].CumulativeDistance, ErrMalformedPath)
		}
		if n.Turn != nil {
			if !(n.Turn.Radius > 0) {
				return fmt.Errorf("node %d: turn radius %f must be positive: %w", i, n.Turn.Radius, ErrMalformedPath)
			}
			if segLength/n.Turn.Radius >= math.Pi {
				return fmt.Errorf("node %d: turn sweeps %.1f degrees; must be less than 180: %w", i,
					math.Degrees(segLength/n.Turn.Radius), ErrMalformedPath)
			}
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// PathBuilder

// RoutePoint is an input point for building a HorizontalPath. If Arc is
// non-nil, the segment from this point to the next one is a circular arc.
type RoutePoint struct {
	Position [2]float64
	Arc      *RouteArc
}

type RouteArc struct {
	Center [2]float64
	// Clockwise gives the sense of the arc when flown from this point to
	// the next one (i.e., in the direction of increasing distance).
	Clockwise bool
	BankAngle float64
	Type      TurnType
}

// PathFromRoutePoints creates a HorizontalPath from route points given in
// order of increasing along-path distance. Consecutive point pairs become
// segments, using pt.Arc for arc segments; the arc radius is the distance
// from the center to the arc's first point.
func PathFromRoutePoints(pts []RoutePoint) (HorizontalPath, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("%d route points; at least 2 are required: %w", len(pts), ErrMalformedPath)
	}

	path := make(HorizontalPath, len(pts))
	path[0] = PathNode{Position: pts[0].Position}

	var cumDist float64
	for i := 0; i < len(pts)-1; i++ {
		p0, p1 := pts[i].Position, pts[i+1].Position
		node := PathNode{Position: p1}

		if arc := pts[i].Arc; arc != nil {
			radius := math.Distance2d(arc.Center, p0)
			if radius == 0 {
				return nil, fmt.Errorf("route point %d: arc center coincides with the point: %w", i, ErrMalformedPath)
			}

			// Compute angles from center to p0 and p1
			a0 := math.PolarAngle(arc.Center, p0)
			a1 := math.PolarAngle(arc.Center, p1)

			// CW = negative sweep, CCW = positive sweep
			sweep := math.NormalizeAngle(a1 - a0)
			if arc.Clockwise && sweep > 0 {
				sweep -= math.TwoPi
			}

			node.Turn = &PathTurn{
				Center:     arc.Center,
				StartAngle: a1,
				EndAngle:   a0,
				Radius:     radius,
				BankAngle:  arc.BankAngle,
				Type:       arc.Type,
			}
			cumDist += radius * math.Abs(sweep)
			node.Course = arcTangent(a1, sweep)
			if i == 0 {
				path[0].Course = arcTangent(a0, sweep)
			}
		} else {
			cumDist += math.Distance2d(p0, p1)
			node.Course = math.CourseBetween(p0, p1)
			if i == 0 {
				path[0].Course = node.Course
			}
		}

		node.CumulativeDistance = cumDist
		path[i+1] = node
	}

	if err := path.Validate(); err != nil {
		return nil, err
	}
	return path, nil
}

// arcTangent returns the direction of travel at polar angle a on an arc
// flown with the given signed sweep.
func arcTangent(a, sweep float64) float64 {
	if sweep > 0 {
		return math.NormalizeAngle(a + math.PiOver2)
	}
	return math.NormalizeAngle(a - math.PiOver2)
}

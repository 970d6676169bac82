// nav/distance.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	av "github.com/mmp/pathtrack/aviation"
	"github.com/mmp/pathtrack/log"
	"github.com/mmp/pathtrack/math"
)

// Cross-track tolerances for DistanceCalculator: how far a position may
// be from the path and still be resolved to a distance along it.
const (
	TightCrossTrackTolerance    = 0.5 * av.MetersPerNM
	StandardCrossTrackTolerance = 2.5 * av.MetersPerNM
	CaptureCrossTrackTolerance  = 20 * av.MetersPerNM
)

// crossTrackTieTolerance is the difference in cross-track distance (meters)
// below which two candidate segments are considered equally close.
const crossTrackTieTolerance = 1e-6

// DistanceCalculator maps planar positions to along-path distance and
// course.
type DistanceCalculator struct {
	*Tracker
	tolerance float64
}

// Projection is the result of projecting a position onto the path.
type Projection struct {
	Distance           float64 // along-path distance, meters
	Course             float64 // forward course, radians
	PointToPointCourse float64
	// CrossTrack is the signed distance from the path; positive values
	// are to the left of the direction of travel.
	CrossTrack float64
	Index      int
}

func NewDistanceCalculator(path av.HorizontalPath, direction IndexProgressionDirection, tolerance float64,
	lg *log.Logger) (*DistanceCalculator, error) {
	t, err := NewTracker(path, direction, lg)
	if err != nil {
		return nil, err
	}
	return &DistanceCalculator{Tracker: t, tolerance: tolerance}, nil
}

func (dc *DistanceCalculator) CrossTrackTolerance() float64 {
	return dc.tolerance
}

// SetCrossTrackTolerance changes the tolerance used for subsequent
// queries, e.g. to retry with CaptureCrossTrackTolerance after ErrOffPath.
func (dc *DistanceCalculator) SetCrossTrackTolerance(tolerance float64) {
	dc.tolerance = tolerance
}

// Calculate returns the along-path distance and forward course at the
// given position. It returns an error wrapping ErrOffPath if the position
// is not within the cross-track tolerance of the path, in which case the
// tracker's state is unchanged.
func (dc *DistanceCalculator) Calculate(x, y float64) (distance, course float64, err error) {
	pr, err := dc.Project(x, y)
	return pr.Distance, pr.Course, err
}

// CalculateWithPointToPoint is like Calculate but also returns the course
// to the next waypoint, for turn alignment checks.
func (dc *DistanceCalculator) CalculateWithPointToPoint(x, y float64) (distance, course, p2pCourse float64, err error) {
	pr, err := dc.Project(x, y)
	return pr.Distance, pr.Course, pr.PointToPointCourse, err
}

func (dc *DistanceCalculator) Project(x, y float64) (Projection, error) {
	p := [2]float64{x, y}

	var pt pathPoint
	var crossTrack float64
	if idx, ok := dc.positionOnNode(p); ok {
		node := dc.path[idx]
		pt = pathPoint{
			index:    idx,
			distance: node.CumulativeDistance,
			course:   math.ReciprocalAngle(node.Course),
			exact:    true,
			turn:     node.Turn,
		}
		if node.Turn != nil {
			pt.theta = node.Turn.StartAngle
			pt.nearTurnStart = true
		}
	} else {
		var err error
		if pt, crossTrack, err = dc.closestSegment(p); err != nil {
			return Projection{}, err
		}
	}

	if !dc.validateIndexProgression(pt.index) {
		return Projection{}, dc.progressionError(pt.index)
	}

	distance := pt.distance - ExtensionLength
	NavLog(dc.callsign, NavLogProjection, "(%.1f, %.1f) -> index %d distance %.3f cross-track %.1f",
		x, y, pt.index.original(), distance, crossTrack)
	dc.commit(pt.index, distance)

	return Projection{
		Distance:           distance,
		Course:             pt.course,
		PointToPointCourse: pt.pointToPointCourse(dc.path),
		CrossTrack:         crossTrack,
		Index:              pt.index.original(),
	}, nil
}

// closestSegment finds the segment closest to p among those within the
// cross-track tolerance. Segments consistent with the progression
// direction are preferred; ties go to the segment nearest the current
// index, or the first one before any index has been established. If p is
// near the path but only on segments that violate the progression
// direction, one of those is returned and the caller reports the
// violation.
func (dc *DistanceCalculator) closestSegment(p [2]float64) (pathPoint, float64, error) {
	type candidate struct {
		pt         pathPoint
		crossTrack float64
	}
	var best *candidate

	better := func(a, b candidate) bool {
		va, vb := dc.validateIndexProgression(a.pt.index), dc.validateIndexProgression(b.pt.index)
		if va != vb {
			return va
		}
		da, db := math.Abs(a.crossTrack), math.Abs(b.crossTrack)
		if math.Abs(da-db) > crossTrackTieTolerance {
			return da < db
		}
		return dc.betterNodeMatch(a.pt.index, b.pt.index)
	}

	for i := extendedIndex(1); int(i) < len(dc.path); i++ {
		pt, xt, ok := projectOntoSegment(dc.path, i, p)
		if !ok || math.Abs(xt) > dc.tolerance {
			continue
		}
		if c := (candidate{pt: pt, crossTrack: xt}); best == nil || better(c, *best) {
			best = &c
		}
	}

	// Positions outside the corner between two straight segments don't
	// project onto either; take the node itself if it is close enough.
	for i := extendedIndex(1); dc.isRealNode(i); i++ {
		d := math.Distance2d(p, dc.path[i].Position)
		if d > dc.tolerance {
			continue
		}
		node := dc.path[i]
		// Signed like projectOntoSegment: positive to the left of the
		// forward course at the node.
		if -math.Cross2d(math.SinCos(node.Course), math.Sub2d(p, node.Position)) < 0 {
			d = -d
		}
		c := candidate{
			pt: pathPoint{
				index:    i,
				distance: node.CumulativeDistance,
				course:   math.ReciprocalAngle(node.Course),
			},
			crossTrack: d,
		}
		if best == nil || better(c, *best) {
			best = &c
		}
	}

	if best == nil {
		return pathPoint{}, 0, fmt.Errorf("(%.1f, %.1f) tolerance %.1f: %w", p[0], p[1], dc.tolerance, ErrOffPath)
	}
	return best.pt, best.crossTrack, nil
}

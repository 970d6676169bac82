// nav/course.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"log/slog"

	av "github.com/mmp/pathtrack/aviation"
	"github.com/mmp/pathtrack/log"
)

// CourseCalculator maps along-path distance to forward course.
type CourseCalculator struct {
	*Tracker
}

func NewCourseCalculator(path av.HorizontalPath, direction IndexProgressionDirection,
	lg *log.Logger) (*CourseCalculator, error) {
	t, err := NewTracker(path, direction, lg)
	if err != nil {
		return nil, err
	}
	return &CourseCalculator{Tracker: t}, nil
}

// Calculate returns the forward course at the given along-path distance.
// Distances past the end of the path are allowed; the end segment is
// extrapolated.
func (cc *CourseCalculator) Calculate(distance float64) (float64, error) {
	pt, err := cc.resolve(distance)
	return pt.course, err
}

// CalculateWithPointToPoint is like Calculate but also returns the course
// to the next waypoint, for turn alignment checks.
func (cc *CourseCalculator) CalculateWithPointToPoint(distance float64) (course, p2pCourse float64, err error) {
	pt, err := cc.resolve(distance)
	if err != nil {
		return 0, 0, err
	}
	return pt.course, pt.pointToPointCourse(cc.path), nil
}

func (cc *CourseCalculator) resolve(distance float64) (pathPoint, error) {
	ext := distance + ExtensionLength
	idx, exact := locateNode(cc.path, ext, cc.preferIndex)
	if !cc.validateIndexProgression(idx) {
		return pathPoint{}, cc.progressionError(idx)
	}

	if end := cc.endDistance(); distance > end {
		cc.lg.Warn("distance past end of path; extrapolating", slog.String("callsign", cc.callsign),
			slog.Float64("distance", distance), slog.Float64("end", end))
		NavLog(cc.callsign, NavLogOverrun, "distance %.3f past end of path at %.3f", distance, end)
	}

	pt := resolveDistance(cc.path, idx, ext, exact)
	cc.commit(idx, distance)
	return pt, nil
}

// PositionCalculator maps along-path distance to planar position and
// forward course.
type PositionCalculator struct {
	*CourseCalculator
}

func NewPositionCalculator(path av.HorizontalPath, direction IndexProgressionDirection,
	lg *log.Logger) (*PositionCalculator, error) {
	cc, err := NewCourseCalculator(path, direction, lg)
	if err != nil {
		return nil, err
	}
	return &PositionCalculator{CourseCalculator: cc}, nil
}

// Calculate returns the position and forward course at the given
// along-path distance.
func (pc *PositionCalculator) Calculate(distance float64) (pos [2]float64, course float64, err error) {
	pt, err := pc.resolve(distance)
	if err != nil {
		return [2]float64{}, 0, err
	}
	return pt.position(pc.path), pt.course, nil
}

// CalculateWithPointToPoint is like Calculate but also returns the course
// to the next waypoint, resolving the distance once.
func (pc *PositionCalculator) CalculateWithPointToPoint(distance float64) (pos [2]float64, course, p2pCourse float64, err error) {
	pt, err := pc.resolve(distance)
	if err != nil {
		return [2]float64{}, 0, 0, err
	}
	return pt.position(pc.path), pt.course, pt.pointToPointCourse(pc.path), nil
}

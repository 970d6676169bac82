// nav/distance_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"errors"
	"testing"

	av "github.com/mmp/pathtrack/aviation"
	"github.com/mmp/pathtrack/math"
)

func TestDistanceConcreteScenario(t *testing.T) {
	r2 := math.Sqrt(2)
	course := math.Radians(45)
	path := av.HorizontalPath{
		{Position: [2]float64{0, 0}, CumulativeDistance: 0, Course: course},
		{Position: [2]float64{r2, r2}, CumulativeDistance: r2, Course: course},
		{Position: [2]float64{2 * r2, 2 * r2}, CumulativeDistance: 2 * r2, Course: course},
	}

	dc, err := NewDistanceCalculator(path, UndefinedProgression, StandardCrossTrackTolerance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, c, err := dc.Calculate(r2, r2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkNear(t, "distance", d, r2, 1e-9)
	checkCourse(t, "course", c, 225, 1e-9)
	if dc.CurrentIndex() != 1 {
		t.Errorf("expected index 1, got %d", dc.CurrentIndex())
	}

	pc, err := NewPositionCalculator(path, UndefinedProgression, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos, c, err := pc.Calculate(2 * r2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkPoint(t, "position", pos, [2]float64{2 * r2, 2 * r2}, 1e-9)
	checkCourse(t, "course", c, 225, 1e-9)
}

func TestDistanceRoundTrip(t *testing.T) {
	path := turnPath(t, av.RadiusFixedTurn)

	dc, err := NewDistanceCalculator(path, UndefinedProgression, StandardCrossTrackTolerance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pc, err := NewPositionCalculator(path, UndefinedProgression, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, node := range path {
		d, course, err := dc.Calculate(node.Position[0], node.Position[1])
		if err != nil {
			t.Fatalf("node %d: unexpected error: %v", i, err)
		}
		checkNear(t, "node distance", d, node.CumulativeDistance, 1e-9)

		pos, pcourse, err := pc.Calculate(d)
		if err != nil {
			t.Fatalf("node %d: unexpected error: %v", i, err)
		}
		checkPoint(t, "node position", pos, node.Position, 100)
		checkCourse(t, "node course", pcourse, math.Degrees(course), 0.5)
	}

	// Points between the nodes come back to the distance they were
	// generated from.
	for d := 0.0; d <= path.Length(); d += 250 {
		pos, course, err := pc.Calculate(d)
		if err != nil {
			t.Fatalf("distance %f: unexpected error: %v", d, err)
		}
		dd, dcourse, err := dc.Calculate(pos[0], pos[1])
		if err != nil {
			t.Fatalf("distance %f: unexpected error: %v", d, err)
		}
		checkNear(t, "distance", dd, d, 1e-6)
		checkCourse(t, "course", dcourse, math.Degrees(course), 0.5)
	}
}

func TestDistanceOnArc(t *testing.T) {
	path := turnPath(t, av.RadiusFixedTurn)
	turn := path[2].Turn

	dc, err := NewDistanceCalculator(path, DecrementingProgression, StandardCrossTrackTolerance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Outside the arc halfway through it: the aircraft is turning right,
	// so that is to its left.
	p := math.PointOnCircle(turn.Center, turn.Radius+100, math.Radians(-45))
	pr, err := dc.Project(p[0], p[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkNear(t, "distance", pr.Distance, 5000+math.Pi*500, 1e-6)
	checkNear(t, "cross-track", pr.CrossTrack, 100, 1e-6)
	checkCourse(t, "course", pr.Course, 225, 1e-6)
	if pr.Index != 2 {
		t.Errorf("expected index 2, got %d", pr.Index)
	}
}

func TestDistanceToleranceBoundary(t *testing.T) {
	path := straightPath(t, [2]float64{0, 0}, [2]float64{20000, 0}, [2]float64{40000, 0})

	dc, err := NewDistanceCalculator(path, DecrementingProgression, StandardCrossTrackTolerance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Too far off: the error is recoverable and the state is untouched.
	if _, _, err := dc.Calculate(10000, 2.6*av.MetersPerNM); !errors.Is(err, ErrOffPath) {
		t.Errorf("expected ErrOffPath, got %v", err)
	}
	if dc.State() != Uninitialized {
		t.Errorf("failed query changed the tracker state to %s", dc.State())
	}

	pr, err := dc.Project(10000, 2.4*av.MetersPerNM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkNear(t, "distance", pr.Distance, 10000, 1e-9)
	// Westbound, so north is to the right.
	checkNear(t, "cross-track", pr.CrossTrack, -2.4*av.MetersPerNM, 1e-6)

	if _, _, err := dc.Calculate(9000, 2.6*av.MetersPerNM); !errors.Is(err, ErrOffPath) {
		t.Errorf("expected ErrOffPath, got %v", err)
	}
	if dc.CurrentIndex() != 1 {
		t.Errorf("failed query changed the current index to %d", dc.CurrentIndex())
	}

	dc.SetCrossTrackTolerance(CaptureCrossTrackTolerance)
	d, _, err := dc.Calculate(9000, 2.6*av.MetersPerNM)
	if err != nil {
		t.Fatalf("unexpected error with capture tolerance: %v", err)
	}
	checkNear(t, "distance", d, 9000, 1e-9)
}

func TestDistanceMonotonic(t *testing.T) {
	dc, err := NewDistanceCalculator(eastPath(t, 10000, 1000), DecrementingProgression,
		StandardCrossTrackTolerance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := -1
	for x := 9750.0; x >= 0; x -= 250 {
		d, course, err := dc.Calculate(x, 50)
		if err != nil {
			t.Fatalf("x %f: unexpected error: %v", x, err)
		}
		checkNear(t, "distance", d, x, 1e-9)
		checkCourse(t, "course", course, 180, 1e-9)
		if idx := dc.CurrentIndex(); last != -1 && idx > last {
			t.Errorf("x %f: index increased from %d to %d", x, last, idx)
		} else {
			last = idx
		}
	}

	_, _, err = dc.Calculate(5500, 50)
	if !errors.Is(err, ErrIndexProgression) {
		t.Fatalf("expected ErrIndexProgression, got %v", err)
	}
	var perr *IndexProgressionError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *IndexProgressionError, got %T", err)
	}
	if perr.Current != last || perr.Candidate != 6 || perr.Direction != DecrementingProgression {
		t.Errorf("unexpected error contents: %+v", perr)
	}
	if perr.NearbyNodes == "" {
		t.Errorf("expected nearby nodes in error")
	}
}

func TestDistanceOffRouteBoundary(t *testing.T) {
	path := eastPath(t, 10000, 5000)

	t.Run("decrementing", func(t *testing.T) {
		dc, err := NewDistanceCalculator(path, DecrementingProgression, StandardCrossTrackTolerance, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, _, err := dc.Calculate(3000, 0); err != nil || dc.IsPassedEndOfRoute() {
			t.Fatalf("unexpected state at 3000: err %v, passed %v", err, dc.IsPassedEndOfRoute())
		}

		d, _, err := dc.Calculate(-500, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		checkNear(t, "distance", d, -500, 1e-9)
		if !dc.IsPassedEndOfRoute() || dc.State() != PassedEndOfRoute || dc.CurrentIndex() != 0 {
			t.Errorf("expected to have passed the end of the route at index 0")
		}

		if _, _, err := dc.Calculate(0, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dc.IsPassedEndOfRoute() {
			t.Errorf("expected passed end of route to clear on the first node")
		}
	})

	t.Run("incrementing", func(t *testing.T) {
		dc, err := NewDistanceCalculator(path, IncrementingProgression, StandardCrossTrackTolerance, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, _, err := dc.Calculate(4000, 0); err != nil || dc.IsPassedEndOfRoute() {
			t.Fatalf("unexpected state at 4000: err %v, passed %v", err, dc.IsPassedEndOfRoute())
		}

		d, course, err := dc.Calculate(10500, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		checkNear(t, "distance", d, 10500, 1e-9)
		checkCourse(t, "course", course, 180, 1e-9)
		if !dc.IsPassedEndOfRoute() || dc.CurrentIndex() != len(path) {
			t.Errorf("expected to have passed the end of the route on the trailing extension")
		}

		// Farther out still, beyond the synthetic extension.
		if d, _, err = dc.Calculate(15000, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		checkNear(t, "distance", d, 15000, 1e-9)
		if !dc.IsPassedEndOfRoute() {
			t.Errorf("expected to have passed the end of the route")
		}
	})
}

func TestDistanceCorner(t *testing.T) {
	// Positions outside the corner of a right-angle bend project onto
	// neither adjoining segment. Aircraft fly the second leg toward the
	// corner and then head west, so the outside of the corner is on the
	// right for a left turn and on the left for a right turn.
	for _, test := range []struct {
		name       string
		end        [2]float64
		pos        [2]float64
		crossTrack float64
	}{
		{name: "left turn", end: [2]float64{5000, -5000}, pos: [2]float64{5100, 100}, crossTrack: -100 * math.Sqrt(2)},
		{name: "right turn", end: [2]float64{5000, 5000}, pos: [2]float64{5100, -100}, crossTrack: 100 * math.Sqrt(2)},
	} {
		t.Run(test.name, func(t *testing.T) {
			path := straightPath(t, [2]float64{0, 0}, [2]float64{5000, 0}, test.end)
			dc, err := NewDistanceCalculator(path, UndefinedProgression, StandardCrossTrackTolerance, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			pr, err := dc.Project(test.pos[0], test.pos[1])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			checkNear(t, "distance", pr.Distance, 5000, 1e-9)
			checkNear(t, "cross-track", pr.CrossTrack, test.crossTrack, 1e-6)
			if pr.Index != 1 {
				t.Errorf("expected index 1, got %d", pr.Index)
			}
		})
	}
}

func TestDistanceOverlappingLegs(t *testing.T) {
	// The path doubles back on itself; the progression direction decides
	// which leg a position belongs to.
	path := straightPath(t, [2]float64{0, 0}, [2]float64{10000, 0}, [2]float64{10000, 500}, [2]float64{0, 500})

	dc, err := NewDistanceCalculator(path, DecrementingProgression, StandardCrossTrackTolerance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Closest to the return leg; starts there.
	if d, _, err := dc.Calculate(5000, 450); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else {
		checkNear(t, "distance", d, 15500, 1e-9)
	}

	// Now on the outbound leg.
	if d, _, err := dc.Calculate(5000, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else {
		checkNear(t, "distance", d, 5000, 1e-9)
	}

	// Closer to the return leg, but that would move backward along the
	// path; the outbound leg is within tolerance and is used instead.
	if d, _, err := dc.Calculate(4000, 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else {
		checkNear(t, "distance", d, 4000, 1e-9)
	}
	if dc.CurrentIndex() != 1 {
		t.Errorf("expected index 1, got %d", dc.CurrentIndex())
	}
}

// nav/course_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mmp/pathtrack/log"
)

func TestPositionMonotonic(t *testing.T) {
	pc, err := NewPositionCalculator(eastPath(t, 10000, 1000), DecrementingProgression, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := pc.CurrentIndex()
	for d := 9500.0; d >= 0; d -= 500 {
		pos, course, err := pc.Calculate(d)
		if err != nil {
			t.Fatalf("distance %f: unexpected error: %v", d, err)
		}
		checkPoint(t, "position", pos, [2]float64{d, 0}, 1e-9)
		checkCourse(t, "course", course, 180, 1e-9)

		idx := pc.CurrentIndex()
		if d < 9500 && idx > last {
			t.Errorf("distance %f: index increased from %d to %d", d, last, idx)
		}
		last = idx
	}
	if last != 0 {
		t.Errorf("expected to finish at index 0, got %d", last)
	}

	_, _, err = pc.Calculate(5000)
	var perr *IndexProgressionError
	if !errors.As(err, &perr) || !errors.Is(err, ErrIndexProgression) {
		t.Fatalf("expected *IndexProgressionError, got %v", err)
	}
	if perr.Current != 0 || perr.Candidate != 5 {
		t.Errorf("unexpected error contents: %+v", perr)
	}
	if pc.CurrentIndex() != 0 {
		t.Errorf("failed query changed the current index to %d", pc.CurrentIndex())
	}
}

func TestIncrementingRejectsDecrease(t *testing.T) {
	cc, err := NewCourseCalculator(eastPath(t, 10000, 1000), IncrementingProgression, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range []float64{500, 1500, 1500, 7250} {
		if _, err := cc.Calculate(d); err != nil {
			t.Fatalf("distance %f: unexpected error: %v", d, err)
		}
	}
	if _, err := cc.Calculate(2000); !errors.Is(err, ErrIndexProgression) {
		t.Errorf("expected ErrIndexProgression, got %v", err)
	}
	// Moving back within the current segment is allowed.
	if _, err := cc.Calculate(7100); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPositionOverrun(t *testing.T) {
	var buf bytes.Buffer
	lg := log.NewWithWriter("warn", &buf)

	pc, err := NewPositionCalculator(eastPath(t, 10000, 5000), IncrementingProgression, lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pc.SetCallsign("AAL123")

	// Beyond the trailing extension as well as the path itself.
	pos, course, err := pc.Calculate(12000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkPoint(t, "position", pos, [2]float64{12000, 0}, 1e-9)
	checkCourse(t, "course", course, 180, 1e-9)
	if !pc.IsPassedEndOfRoute() || pc.CurrentIndex() != 3 {
		t.Errorf("expected to have passed the end of the route on the trailing extension")
	}

	if s := buf.String(); !strings.Contains(s, "extrapolating") || !strings.Contains(s, "AAL123") {
		t.Errorf("expected an overrun warning, got %q", s)
	}
}

func TestPositionWithPointToPointOverrun(t *testing.T) {
	var buf bytes.Buffer
	lg := log.NewWithWriter("warn", &buf)

	pc, err := NewPositionCalculator(eastPath(t, 10000, 5000), IncrementingProgression, lg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos, course, p2p, err := pc.CalculateWithPointToPoint(10500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkPoint(t, "position", pos, [2]float64{10500, 0}, 1e-9)
	checkCourse(t, "course", course, 180, 1e-9)
	checkCourse(t, "point-to-point course", p2p, 180, 1e-9)

	if n := strings.Count(buf.String(), "extrapolating"); n != 1 {
		t.Errorf("expected a single overrun warning, got %d: %q", n, buf.String())
	}
}

func TestPositionBeforeStart(t *testing.T) {
	pc, err := NewPositionCalculator(eastPath(t, 10000, 5000), DecrementingProgression, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, d := range []float64{-1000, -3000} {
		pos, _, err := pc.Calculate(d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		checkPoint(t, "position", pos, [2]float64{d, 0}, 1e-9)
		if !pc.IsPassedEndOfRoute() || pc.CurrentIndex() != 0 {
			t.Errorf("distance %f: expected to have passed the end of the route at index 0", d)
		}
	}
}

// nav/nav_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"

	av "github.com/mmp/pathtrack/aviation"
	"github.com/mmp/pathtrack/math"
)

func makePath(t *testing.T, pts ...av.RoutePoint) av.HorizontalPath {
	t.Helper()
	path, err := av.PathFromRoutePoints(pts)
	if err != nil {
		t.Fatalf("unable to build path: %v", err)
	}
	return path
}

func straightPath(t *testing.T, pts ...[2]float64) av.HorizontalPath {
	t.Helper()
	var rp []av.RoutePoint
	for _, p := range pts {
		rp = append(rp, av.RoutePoint{Position: p})
	}
	return makePath(t, rp...)
}

// eastPath returns a straight path along the x axis from 0 to length with
// nodes every spacing meters.
func eastPath(t *testing.T, length, spacing float64) av.HorizontalPath {
	t.Helper()
	var pts [][2]float64
	for x := 0.0; x <= length; x += spacing {
		pts = append(pts, [2]float64{x, 0})
	}
	return straightPath(t, pts...)
}

// turnPath returns a path that runs east to (5000,0), turns left through
// a quarter circle of radius 2000 to (7000,2000) and then runs north to
// (7000,6000).
func turnPath(t *testing.T, turnType av.TurnType) av.HorizontalPath {
	t.Helper()
	return makePath(t,
		av.RoutePoint{Position: [2]float64{0, 0}},
		av.RoutePoint{Position: [2]float64{5000, 0}, Arc: &av.RouteArc{Center: [2]float64{5000, 2000}, Type: turnType}},
		av.RoutePoint{Position: [2]float64{7000, 2000}},
		av.RoutePoint{Position: [2]float64{7000, 6000}})
}

func checkNear(t *testing.T, what string, got, expected, tol float64) {
	t.Helper()
	if math.Abs(got-expected) > tol {
		t.Errorf("%s: expected %f, got %f", what, expected, got)
	}
}

func checkCourse(t *testing.T, what string, got, expectedDeg, tolDeg float64) {
	t.Helper()
	if d := math.Degrees(math.AngleDifference(got, math.Radians(expectedDeg))); d > tolDeg {
		t.Errorf("%s: expected course %f, got %f", what, expectedDeg, math.Degrees(got))
	}
}

func checkPoint(t *testing.T, what string, got, expected [2]float64, tol float64) {
	t.Helper()
	if math.Distance2d(got, expected) > tol {
		t.Errorf("%s: expected (%f, %f), got (%f, %f)", what, expected[0], expected[1], got[0], got[1])
	}
}

// math/angle.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// angles and courses
//
// Angles are in radians, measured counter-clockwise from +x. This is the
// convention used for path courses throughout; it is not a compass
// heading.

// NormalizeAngle reduces a to [0, 2pi).
func NormalizeAngle(a float64) float64 {
	a = gomath.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		// -tiny + 2pi can round up to 2pi.
		a = 0
	}
	return a
}

// NormalizeSignedAngle reduces a to (-pi, pi].
func NormalizeSignedAngle(a float64) float64 {
	a = NormalizeAngle(a)
	if a > Pi {
		a -= TwoPi
	}
	return a
}

// ReciprocalAngle returns the opposite direction of a, in [0, 2pi).
func ReciprocalAngle(a float64) float64 {
	return NormalizeAngle(a + Pi)
}

// AngleDifference returns the minimum difference between two angles;
// the result is always in the range [0, pi].
func AngleDifference(a, b float64) float64 {
	return Abs(NormalizeSignedAngle(a - b))
}

// CourseBetween returns the direction from p0 to p1.
func CourseBetween(p0, p1 [2]float64) float64 {
	d := Sub2d(p1, p0)
	return NormalizeAngle(Atan2(d[1], d[0]))
}

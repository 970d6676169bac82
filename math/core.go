// math/core.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

const Pi = gomath.Pi
const TwoPi = 2 * gomath.Pi
const PiOver2 = gomath.Pi / 2

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

// Thin wrappers so that callers can use a single math package and not
// have to juggle both this one and the standard library's.

func Sin(a float64) float64      { return gomath.Sin(a) }
func Cos(a float64) float64      { return gomath.Cos(a) }
func Atan2(y, x float64) float64 { return gomath.Atan2(y, x) }
func Sqrt(a float64) float64     { return gomath.Sqrt(a) }
func Hypot(a, b float64) float64 { return gomath.Hypot(a, b) }

// SinCos returns the unit vector at angle a (radians, counter-clockwise
// from +x).
func SinCos(a float64) [2]float64 {
	s, c := gomath.Sincos(a)
	return [2]float64{c, s}
}

func Sign[V constraints.Signed | constraints.Float](v V) V {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

// NearlyEqual reports whether a and b agree to within tol, where tol is
// scaled by the magnitude of the larger value once that exceeds one.
func NearlyEqual(a, b, tol float64) bool {
	scale := max(1, Abs(a), Abs(b))
	return Abs(a-b) <= tol*scale
}

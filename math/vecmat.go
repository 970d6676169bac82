// math/vecmat.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// point 2d

// Various useful functions for arithmetic with 2D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add2d(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2d(a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2d(a [2]float64, s float64) [2]float64 {
	return [2]float64{s * a[0], s * a[1]}
}

func Dot2d(a, b [2]float64) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// Cross2d returns the z component of the 3D cross product of a and b; it
// is positive when b is counter-clockwise from a.
func Cross2d(a, b [2]float64) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Length of v
func Length2d(v [2]float64) float64 {
	return Hypot(v[0], v[1])
}

// Distance between two points
func Distance2d(a [2]float64, b [2]float64) float64 {
	return Length2d(Sub2d(a, b))
}

// Normalizes the given vector.
func Normalize2d(a [2]float64) [2]float64 {
	l := Length2d(a)
	if l == 0 {
		return [2]float64{0, 0}
	}
	return Scale2d(a, 1/l)
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp2d(x float64, a [2]float64, b [2]float64) [2]float64 {
	return [2]float64{(1-x)*a[0] + x*b[0], (1-x)*a[1] + x*b[1]}
}

// PolarAngle returns the angle of p as seen from center, measured
// counter-clockwise from +x, in (-pi, pi].
func PolarAngle(center, p [2]float64) float64 {
	d := Sub2d(p, center)
	return Atan2(d[1], d[0])
}

// PointOnCircle returns the point at angle theta on the circle with the
// given center and radius.
func PointOnCircle(center [2]float64, radius, theta float64) [2]float64 {
	return Add2d(center, Scale2d(SinCos(theta), radius))
}

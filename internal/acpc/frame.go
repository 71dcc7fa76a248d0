// Package acpc computes rigid transforms that re-express RAS patient
// coordinates in an AC-PC aligned anatomical frame.
//
// All points are in millimetres in the RAS convention: X increases toward
// the patient's right, Y toward anterior, Z toward superior. The output is
// a 4x4 homogeneous rigid transform (rotation + translation, no scale or
// shear) mapping world coordinates into the new frame.
package acpc

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// CenterMode selects which anatomical point becomes the origin of the
// AC-PC aligned frame.
type CenterMode string

const (
	// CenterMC centers the frame on the midcommissural point (AC+PC)/2.
	CenterMC CenterMode = "MC"
	// CenterAC centers the frame on the anterior commissure.
	CenterAC CenterMode = "AC"
	// CenterPC centers the frame on the posterior commissure.
	CenterPC CenterMode = "PC"
)

// ParseCenterMode converts a user-supplied string to a CenterMode.
// Matching is case-insensitive.
func ParseCenterMode(s string) (CenterMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MC":
		return CenterMC, nil
	case "AC":
		return CenterAC, nil
	case "PC":
		return CenterPC, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidCenterMode, s)
}

// DefaultDegeneracyTolerance is the minimum axis-vector norm accepted
// before the inputs are rejected as degenerate.
const DefaultDegeneracyTolerance = 1e-9

// ClassifyACPC labels the two endpoints of an AC-PC line. The anterior
// commissure is anterior to the posterior commissure, so the endpoint with
// the larger Y coordinate is the AC. Line annotations carry no inherent
// ordering, so the labels must be derived here rather than assumed from
// storage order.
//
// When the Y coordinates are exactly equal the second endpoint is labeled
// AC, so the labeling of an exact tie depends on argument order. Equal-Y
// endpoints are anatomically meaningless and never occur with measured
// landmarks; the tie behavior is locked by a regression test rather than
// rejected.
func ClassifyACPC(a, b r3.Vec) (ac, pc r3.Vec) {
	if a.Y > b.Y {
		return a, b
	}
	return b, a
}

// BuildTransform constructs the rigid transform that maps RAS world
// coordinates into an AC-PC aligned frame centered on the point selected
// by center. ih is any midline reference point off the AC-PC line; it only
// disambiguates the coronal/axial split and need not lie exactly on the
// midline plane.
//
// The frame axes are built as:
//
//	y = normalize(ac - pc)                 posterior -> anterior
//	x = normalize(cross(y, |ih - ac|))     left-right
//	z = cross(x, y)                        inferior -> superior
//
// The component-wise absolute value on ih-ac is deliberate: it makes the
// left-right assignment independent of which side of the midline the
// reference point was picked on. It also changes the cross product
// depending on the octant of ih relative to AC; that behavior is preserved
// exactly and locked by regression tests.
//
// Returns ErrDegenerateInput when ac equals pc or ih is collinear with the
// AC-PC line, and ErrInvalidCenterMode for an unrecognized center value.
func BuildTransform(ac, pc, ih r3.Vec, center CenterMode) (RigidTransform, error) {
	return BuildTransformTol(ac, pc, ih, center, DefaultDegeneracyTolerance)
}

// BuildTransformTol is BuildTransform with an explicit degeneracy
// tolerance, for callers that tune it via configuration.
func BuildTransformTol(ac, pc, ih r3.Vec, center CenterMode, tol float64) (RigidTransform, error) {
	if tol <= 0 {
		tol = DefaultDegeneracyTolerance
	}

	acpcDir := r3.Sub(ac, pc)
	yNorm := r3.Norm(acpcDir)
	if yNorm <= tol {
		return RigidTransform{}, fmt.Errorf("%w: AC and PC coincide", ErrDegenerateInput)
	}
	yAxis := r3.Scale(1/yNorm, acpcDir)

	d := r3.Sub(ih, ac)
	d = r3.Vec{X: math.Abs(d.X), Y: math.Abs(d.Y), Z: math.Abs(d.Z)}
	xDir := r3.Cross(yAxis, d)
	xNorm := r3.Norm(xDir)
	if xNorm <= tol {
		return RigidTransform{}, fmt.Errorf("%w: midline point lies on the AC-PC line", ErrDegenerateInput)
	}
	xAxis := r3.Scale(1/xNorm, xDir)

	// Unit length already: xAxis and yAxis are orthonormal.
	zAxis := r3.Cross(xAxis, yAxis)

	var origin r3.Vec
	switch center {
	case CenterMC:
		origin = r3.Scale(0.5, r3.Add(ac, pc))
	case CenterAC:
		origin = ac
	case CenterPC:
		origin = pc
	default:
		return RigidTransform{}, fmt.Errorf("%w: got %q", ErrInvalidCenterMode, string(center))
	}

	// Rotation rows are the new axes; translation is -R*origin so the
	// selected anatomical point maps to the frame origin.
	return RigidTransform{
		xAxis.X, xAxis.Y, xAxis.Z, -r3.Dot(xAxis, origin),
		yAxis.X, yAxis.Y, yAxis.Z, -r3.Dot(yAxis, origin),
		zAxis.X, zAxis.Y, zAxis.Z, -r3.Dot(zAxis, origin),
		0, 0, 0, 1,
	}, nil
}

package acpc

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RigidTransform is a 4x4 homogeneous transform in row-major order:
// m00,m01,m02,m03, m10,... The top-left 3x3 block is the rotation, the
// right column the translation, the bottom row [0 0 0 1].
type RigidTransform [16]float64

// Identity returns the identity transform.
func Identity() RigidTransform {
	return RigidTransform{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Apply transforms a point, including translation.
func (T RigidTransform) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: T[0]*p.X + T[1]*p.Y + T[2]*p.Z + T[3],
		Y: T[4]*p.X + T[5]*p.Y + T[6]*p.Z + T[7],
		Z: T[8]*p.X + T[9]*p.Y + T[10]*p.Z + T[11],
	}
}

// ApplyVector transforms a direction vector, ignoring translation.
func (T RigidTransform) ApplyVector(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: T[0]*p.X + T[1]*p.Y + T[2]*p.Z,
		Y: T[4]*p.X + T[5]*p.Y + T[6]*p.Z,
		Z: T[8]*p.X + T[9]*p.Y + T[10]*p.Z,
	}
}

// Translation returns the translation column.
func (T RigidTransform) Translation() r3.Vec {
	return r3.Vec{X: T[3], Y: T[7], Z: T[11]}
}

// RotationRow returns row i of the rotation block (i in 0..2).
func (T RigidTransform) RotationRow(i int) r3.Vec {
	return r3.Vec{X: T[4*i], Y: T[4*i+1], Z: T[4*i+2]}
}

// Det returns the determinant of the rotation block. +1 indicates a
// right-handed frame, -1 a left-handed one. The frame builder does not
// assert handedness; callers that care inspect this value.
func (T RigidTransform) Det() float64 {
	return T[0]*(T[5]*T[10]-T[6]*T[9]) -
		T[1]*(T[4]*T[10]-T[6]*T[8]) +
		T[2]*(T[4]*T[9]-T[5]*T[8])
}

// Mat returns the transform as a dense gonum matrix for callers composing
// further algebra. The returned matrix is a copy.
func (T RigidTransform) Mat() *mat.Dense {
	return mat.NewDense(4, 4, T[:])
}

// FromMat converts a 4x4 gonum matrix back to a RigidTransform.
func FromMat(m mat.Matrix) RigidTransform {
	var T RigidTransform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			T[4*i+j] = m.At(i, j)
		}
	}
	return T
}

// ValidationTolerance bounds the acceptable deviation from exact
// orthonormality when validating a transform. The frame builder works in
// exact arithmetic on normalized axes, so computed transforms sit well
// inside this bound.
const ValidationTolerance = 1e-9

// ValidationResult reports whether a transform is a valid rigid transform
// and lists the failing conditions when it is not.
type ValidationResult struct {
	Valid  bool
	Det    float64
	Issues []string
}

// ValidateTransform checks that T is a rigid transform: rotation rows of
// unit norm and mutually perpendicular, |det| ~= 1, bottom row [0 0 0 1].
// Handedness is reported through Det, not enforced.
func ValidateTransform(T RigidTransform) ValidationResult {
	result := ValidationResult{Det: T.Det(), Issues: make([]string, 0)}

	for i := 0; i < 3; i++ {
		if n := r3.Norm(T.RotationRow(i)); math.Abs(n-1) > ValidationTolerance {
			result.Issues = append(result.Issues, "rotation row not unit length")
			break
		}
	}
orthogonal:
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if d := r3.Dot(T.RotationRow(i), T.RotationRow(j)); math.Abs(d) > ValidationTolerance {
				result.Issues = append(result.Issues, "rotation rows not orthogonal")
				break orthogonal
			}
		}
	}
	if math.Abs(math.Abs(result.Det)-1) > ValidationTolerance {
		result.Issues = append(result.Issues, "rotation determinant magnitude not 1")
	}
	if T[12] != 0 || T[13] != 0 || T[14] != 0 || T[15] != 1 {
		result.Issues = append(result.Issues, "bottom row is not [0 0 0 1]")
	}

	result.Valid = len(result.Issues) == 0
	return result
}

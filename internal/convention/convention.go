// Package convention converts points and rigid transforms between the RAS
// (right-anterior-superior) and LPS (left-posterior-superior, DICOM)
// coordinate conventions. The two differ by a sign flip of the X and Y
// axes.
package convention

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/neuronav-data/stereotax/internal/acpc"
)

// Convention identifies an anatomical coordinate convention.
type Convention string

const (
	// RAS is the convention all internal computation uses.
	RAS Convention = "ras"
	// LPS is the DICOM patient coordinate convention.
	LPS Convention = "lps"
)

// Parse converts a user-supplied string to a Convention. Matching is
// case-insensitive; the empty string defaults to RAS.
func Parse(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ras":
		return RAS, nil
	case "lps":
		return LPS, nil
	}
	return "", fmt.Errorf("unknown coordinate convention %q (want ras or lps)", s)
}

// FlipPoint converts a point between RAS and LPS. The mapping is its own
// inverse, so the same function serves both directions.
func FlipPoint(p r3.Vec) r3.Vec {
	return r3.Vec{X: -p.X, Y: -p.Y, Z: p.Z}
}

// flipSigns are the per-axis signs of the RAS<->LPS basis change.
var flipSigns = [4]float64{-1, -1, 1, 1}

// FlipTransform conjugates a rigid transform by the RAS<->LPS basis change
// so that it acts on coordinates of the opposite convention. Like
// FlipPoint it is its own inverse. The result is still a rigid transform:
// the basis change is orthogonal, so orthonormality and the determinant
// are preserved.
func FlipTransform(T acpc.RigidTransform) acpc.RigidTransform {
	var out acpc.RigidTransform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[4*i+j] = flipSigns[i] * T[4*i+j] * flipSigns[j]
		}
	}
	return out
}

// TransformFor returns T expressed in the requested convention. Internal
// transforms are always computed in RAS.
func TransformFor(T acpc.RigidTransform, c Convention) acpc.RigidTransform {
	if c == LPS {
		return FlipTransform(T)
	}
	return T
}

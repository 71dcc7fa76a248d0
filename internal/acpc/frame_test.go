package acpc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func TestClassifyACPC(t *testing.T) {
	tests := []struct {
		name string
		a, b r3.Vec
		ac   r3.Vec
	}{
		{
			name: "first endpoint anterior",
			a:    r3.Vec{X: 1, Y: 12, Z: 3},
			b:    r3.Vec{X: 2, Y: -14, Z: 1},
			ac:   r3.Vec{X: 1, Y: 12, Z: 3},
		},
		{
			name: "second endpoint anterior",
			a:    r3.Vec{X: 2, Y: -14, Z: 1},
			b:    r3.Vec{X: 1, Y: 12, Z: 3},
			ac:   r3.Vec{X: 1, Y: 12, Z: 3},
		},
		{
			// Exact tie: the second endpoint wins. Locked behavior, not a
			// contract anyone should rely on.
			name: "equal anterior coordinates",
			a:    r3.Vec{X: 1, Y: 5, Z: 0},
			b:    r3.Vec{X: -1, Y: 5, Z: 2},
			ac:   r3.Vec{X: -1, Y: 5, Z: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, pc := ClassifyACPC(tt.a, tt.b)
			if ac != tt.ac {
				t.Errorf("AC = %v, want %v", ac, tt.ac)
			}
			wantPC := tt.a
			if tt.ac == tt.a {
				wantPC = tt.b
			}
			if pc != wantPC {
				t.Errorf("PC = %v, want %v", pc, wantPC)
			}
		})
	}
}

func TestParseCenterMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CenterMode
		wantErr bool
	}{
		{"MC", CenterMC, false},
		{"AC", CenterAC, false},
		{"PC", CenterPC, false},
		{"mc", CenterMC, false},
		{" ac ", CenterAC, false},
		{"midpoint", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		mode, err := ParseCenterMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCenterMode) {
				t.Errorf("ParseCenterMode(%q) error = %v, want ErrInvalidCenterMode", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCenterMode(%q) unexpected error: %v", tt.in, err)
		}
		if mode != tt.want {
			t.Errorf("ParseCenterMode(%q) = %q, want %q", tt.in, mode, tt.want)
		}
	}
}

// A superior midline reference with a Y-aligned commissural line is the
// textbook configuration: the AC-PC frame coincides with RAS and the
// transform is the identity.
func TestBuildTransform_SuperiorReferenceIsIdentity(t *testing.T) {
	ac := r3.Vec{Y: 10}
	pc := r3.Vec{Y: -10}
	ih := r3.Vec{Z: 50}

	T, err := BuildTransform(ac, pc, ih, CenterMC)
	require.NoError(t, err)

	want := Identity()
	for i := range T {
		assert.InDelta(t, want[i], T[i], tol, "element %d", i)
	}
}

// The canonical scenario with a lateral reference point locks the octant
// behavior of the component-wise absolute value in the X-axis
// construction: with IH on +X the frame X axis comes out as world -Z, and
// the determinant is still +1.
func TestBuildTransform_LateralReferenceRegression(t *testing.T) {
	ac := r3.Vec{Y: 10}
	pc := r3.Vec{Y: -10}
	ih := r3.Vec{X: 10}

	T, err := BuildTransform(ac, pc, ih, CenterMC)
	require.NoError(t, err)

	want := RigidTransform{
		0, 0, -1, 0,
		0, 1, 0, 0,
		1, 0, 0, 0,
		0, 0, 0, 1,
	}
	for i := range T {
		assert.InDelta(t, want[i], T[i], tol, "element %d", i)
	}
	assert.InDelta(t, 1.0, T.Det(), tol)

	// Origin maps to itself: MC is already at (0,0,0).
	got := T.Apply(r3.Vec{})
	assert.InDelta(t, 0, r3.Norm(got), tol)
}

// Picking the reference point on the left instead of the right must not
// change the result; that is the point of the absolute-value step.
func TestBuildTransform_ReferenceSideInvariance(t *testing.T) {
	ac := r3.Vec{X: 1.5, Y: 11, Z: 2}
	pc := r3.Vec{X: 0.5, Y: -13, Z: -1}

	right := r3.Vec{X: 40, Y: -2, Z: 8}
	// Mirror the AC-relative offset to the opposite octant in X.
	left := r3.Vec{X: ac.X - (right.X - ac.X), Y: right.Y, Z: right.Z}

	fromRight, err := BuildTransform(ac, pc, right, CenterMC)
	require.NoError(t, err)
	fromLeft, err := BuildTransform(ac, pc, left, CenterMC)
	require.NoError(t, err)

	if fromRight != fromLeft {
		t.Errorf("transform differs by reference side:\n right: %v\n left:  %v", fromRight, fromLeft)
	}
}

func TestBuildTransform_Centering(t *testing.T) {
	ac := r3.Vec{X: 1.2, Y: 9.5, Z: 3.1}
	pc := r3.Vec{X: -0.8, Y: -13.5, Z: 2.2}
	ih := r3.Vec{X: 2.5, Y: -1, Z: 44}

	tests := []struct {
		mode   CenterMode
		origin r3.Vec
	}{
		{CenterMC, r3.Scale(0.5, r3.Add(ac, pc))},
		{CenterAC, ac},
		{CenterPC, pc},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			T, err := BuildTransform(ac, pc, ih, tt.mode)
			require.NoError(t, err)

			got := T.Apply(tt.origin)
			assert.InDelta(t, 0, r3.Norm(got), tol, "selected origin must map to (0,0,0)")
		})
	}
}

func TestBuildTransform_ACPCAxisAlignment(t *testing.T) {
	ac := r3.Vec{X: 3, Y: 12, Z: -2}
	pc := r3.Vec{X: 1, Y: -11, Z: 1}
	ih := r3.Vec{X: -4, Y: 2, Z: 39}

	T, err := BuildTransform(ac, pc, ih, CenterMC)
	require.NoError(t, err)

	v := T.ApplyVector(r3.Sub(ac, pc))
	length := r3.Norm(r3.Sub(ac, pc))

	assert.InDelta(t, 0, v.X, tol)
	assert.InDelta(t, length, v.Y, tol)
	assert.InDelta(t, 0, v.Z, tol)
}

// Every non-degenerate input must yield orthonormal rotation rows and a
// right-handed frame (z is built as cross(x, y), so det is always +1).
func TestBuildTransform_Orthonormality(t *testing.T) {
	tests := []struct {
		name       string
		ac, pc, ih r3.Vec
	}{
		{
			name: "axis aligned",
			ac:   r3.Vec{Y: 10}, pc: r3.Vec{Y: -10}, ih: r3.Vec{Z: 40},
		},
		{
			name: "tilted line",
			ac:   r3.Vec{X: 2, Y: 11, Z: 1}, pc: r3.Vec{X: -1, Y: -12, Z: 4}, ih: r3.Vec{X: 1, Y: 0, Z: 55},
		},
		{
			name: "reference in mixed octant",
			ac:   r3.Vec{X: -3, Y: 8, Z: -6}, pc: r3.Vec{X: 5, Y: -9, Z: 2}, ih: r3.Vec{X: -20, Y: -15, Z: -30},
		},
		{
			name: "short commissural distance",
			ac:   r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}, pc: r3.Vec{X: 0.12, Y: -0.25, Z: 0.31}, ih: r3.Vec{X: 4, Y: 1, Z: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			T, err := BuildTransform(tt.ac, tt.pc, tt.ih, CenterMC)
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				assert.InDelta(t, 1, r3.Norm(T.RotationRow(i)), tol, "row %d norm", i)
				for j := i + 1; j < 3; j++ {
					assert.InDelta(t, 0, r3.Dot(T.RotationRow(i), T.RotationRow(j)), tol, "rows %d,%d dot", i, j)
				}
			}
			assert.InDelta(t, 1, T.Det(), tol)

			result := ValidateTransform(T)
			assert.True(t, result.Valid, "issues: %v", result.Issues)
		})
	}
}

// The transform must not depend on which order the line endpoints were
// stored in, once they pass through ClassifyACPC.
func TestBuildTransform_EndpointOrderInvariance(t *testing.T) {
	a := r3.Vec{X: 1, Y: 10.5, Z: -0.5}
	b := r3.Vec{X: -2, Y: -12, Z: 1.5}
	ih := r3.Vec{X: 3, Y: -1, Z: 47}

	ac1, pc1 := ClassifyACPC(a, b)
	ac2, pc2 := ClassifyACPC(b, a)

	T1, err := BuildTransform(ac1, pc1, ih, CenterMC)
	require.NoError(t, err)
	T2, err := BuildTransform(ac2, pc2, ih, CenterMC)
	require.NoError(t, err)

	// Identical inputs after classification, so bitwise identical output.
	if T1 != T2 {
		t.Errorf("transform depends on endpoint storage order:\n %v\n %v", T1, T2)
	}
}

func TestBuildTransform_Degenerate(t *testing.T) {
	tests := []struct {
		name       string
		ac, pc, ih r3.Vec
	}{
		{
			name: "AC equals PC",
			ac:   r3.Vec{X: 1, Y: 2, Z: 3},
			pc:   r3.Vec{X: 1, Y: 2, Z: 3},
			ih:   r3.Vec{X: 10, Y: 0, Z: 0},
		},
		{
			name: "midline point on the line",
			ac:   r3.Vec{Y: 10},
			pc:   r3.Vec{Y: -10},
			ih:   r3.Vec{Y: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTransform(tt.ac, tt.pc, tt.ih, CenterMC)
			if !errors.Is(err, ErrDegenerateInput) {
				t.Errorf("error = %v, want ErrDegenerateInput", err)
			}
		})
	}
}

func TestBuildTransform_InvalidCenterMode(t *testing.T) {
	_, err := BuildTransform(r3.Vec{Y: 10}, r3.Vec{Y: -10}, r3.Vec{Z: 40}, CenterMode("midpoint"))
	if !errors.Is(err, ErrInvalidCenterMode) {
		t.Errorf("error = %v, want ErrInvalidCenterMode", err)
	}
}

func TestBuildTransformTol_NonPositiveFallsBack(t *testing.T) {
	T, err := BuildTransformTol(r3.Vec{Y: 10}, r3.Vec{Y: -10}, r3.Vec{Z: 40}, CenterMC, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(T.Det()-1) > tol {
		t.Errorf("det = %v, want 1", T.Det())
	}
}

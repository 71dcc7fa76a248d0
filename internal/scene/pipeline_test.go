package scene

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/neuronav-data/stereotax/internal/acpc"
)

type fakeStore struct {
	calls  int
	lastT  acpc.RigidTransform
	setID  string
	center acpc.CenterMode
	err    error
}

func (s *fakeStore) SaveTransform(setID string, center acpc.CenterMode, T acpc.RigidTransform) (string, error) {
	s.calls++
	s.setID, s.center, s.lastT = setID, center, T
	if s.err != nil {
		return "", s.err
	}
	return "tx-42", nil
}

type fakeViews struct {
	resets int
	err    error
}

func (v *fakeViews) ResetOrientations() error {
	v.resets++
	return v.err
}

func vec(x, y, z float64) *r3.Vec { return &r3.Vec{X: x, Y: y, Z: z} }

func TestPipelineAlign_FullRun(t *testing.T) {
	h := buildTestTree()
	store := &fakeStore{}
	views := &fakeViews{}

	p := &Pipeline{Store: store, Hierarchy: h, Views: views}
	result, err := p.Align(AlignmentRequest{
		SetID:           "set-1",
		LineA:           vec(0, -10, 0), // stored PC-first on purpose
		LineB:           vec(0, 10, 0),
		Midline:         vec(0, 0, 50),
		Center:          acpc.CenterMC,
		LandmarkNodeIDs: []string{"electrode-1"},
		VolumeNodeIDs:   []string{"t1-volume", "missing-volume"},
		FolderID:        "trajectories",
	})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}

	if result.TransformID != "tx-42" {
		t.Errorf("TransformID = %q", result.TransformID)
	}
	if store.calls != 1 || store.setID != "set-1" || store.center != acpc.CenterMC {
		t.Errorf("store called %d times with set %q center %q", store.calls, store.setID, store.center)
	}
	if views.resets != 1 {
		t.Errorf("views reset %d times, want 1", views.resets)
	}

	// electrode-1 and t1-volume directly, electrode-1 + electrode-2 via
	// the folder walk (electrode-1 is set twice but still counted per
	// application, matching the host behavior of re-applying a
	// reference).
	if result.NodesUpdated != 4 {
		t.Errorf("NodesUpdated = %d, want 4", result.NodesUpdated)
	}
	if (result.AC != r3.Vec{Y: 10}) || (result.PC != r3.Vec{Y: -10}) {
		t.Errorf("classified AC=%v PC=%v", result.AC, result.PC)
	}

	n, _ := h.Node("t1-volume")
	if n.(*MemNode).TransformID != "tx-42" {
		t.Error("t1-volume did not receive the transform reference")
	}
}

func TestPipelineAlign_MissingInput(t *testing.T) {
	p := &Pipeline{}
	_, err := p.Align(AlignmentRequest{
		LineA:  vec(0, 10, 0),
		LineB:  vec(0, -10, 0),
		Center: acpc.CenterMC,
		// Midline absent
	})
	if !errors.Is(err, acpc.ErrMissingInput) {
		t.Errorf("error = %v, want ErrMissingInput", err)
	}
}

func TestPipelineAlign_DegenerateLeavesStateUntouched(t *testing.T) {
	h := buildTestTree()
	store := &fakeStore{}
	views := &fakeViews{}

	p := &Pipeline{Store: store, Hierarchy: h, Views: views}
	_, err := p.Align(AlignmentRequest{
		LineA:    vec(1, 2, 3),
		LineB:    vec(1, 2, 3),
		Midline:  vec(0, 0, 50),
		Center:   acpc.CenterMC,
		FolderID: "patient",
	})
	if !errors.Is(err, acpc.ErrDegenerateInput) {
		t.Fatalf("error = %v, want ErrDegenerateInput", err)
	}

	if store.calls != 0 {
		t.Error("store must not be called on kernel failure")
	}
	if views.resets != 0 {
		t.Error("views must not be reset on kernel failure")
	}
	n, _ := h.Node("t1-volume")
	if n.(*MemNode).TransformID != "" {
		t.Error("no transform may be applied on kernel failure")
	}
}

func TestPipelineAlign_StoreErrorStopsPropagation(t *testing.T) {
	h := buildTestTree()
	store := &fakeStore{err: errors.New("disk full")}

	p := &Pipeline{Store: store, Hierarchy: h}
	_, err := p.Align(AlignmentRequest{
		LineA:    vec(0, 10, 0),
		LineB:    vec(0, -10, 0),
		Midline:  vec(0, 0, 50),
		Center:   acpc.CenterMC,
		FolderID: "patient",
	})
	if err == nil {
		t.Fatal("expected store error")
	}

	n, _ := h.Node("t1-volume")
	if n.(*MemNode).TransformID != "" {
		t.Error("no transform may be applied when persistence fails")
	}
}

func TestPipelineAlign_NoStoreNoHierarchy(t *testing.T) {
	p := &Pipeline{}
	result, err := p.Align(AlignmentRequest{
		LineA:   vec(0, 10, 0),
		LineB:   vec(0, -10, 0),
		Midline: vec(0, 0, 50),
		Center:  acpc.CenterMC,
	})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if result.NodesUpdated != 0 || result.TransformID != "" {
		t.Errorf("unexpected side effects: %+v", result)
	}

	valid := acpc.ValidateTransform(result.Transform)
	if !valid.Valid {
		t.Errorf("transform invalid: %v", valid.Issues)
	}
}

func TestPipelineAlign_InvalidCenterMode(t *testing.T) {
	p := &Pipeline{}
	_, err := p.Align(AlignmentRequest{
		LineA:   vec(0, 10, 0),
		LineB:   vec(0, -10, 0),
		Midline: vec(0, 0, 50),
		Center:  acpc.CenterMode("centered"),
	})
	if !errors.Is(err, acpc.ErrInvalidCenterMode) {
		t.Errorf("error = %v, want ErrInvalidCenterMode", err)
	}
}

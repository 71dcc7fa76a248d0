package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/neuronav-data/stereotax/internal/acpc"
	"github.com/neuronav-data/stereotax/internal/monitoring"
)

// TransformStore persists a computed transform and returns its id.
// Implemented by db.DB; tests use fakes.
type TransformStore interface {
	SaveTransform(setID string, center acpc.CenterMode, T acpc.RigidTransform) (string, error)
}

// AlignmentRequest carries one full alignment run: the picked landmarks
// plus the scene elements the resulting transform should land on. Pointer
// fields distinguish "not picked yet" from a legitimate zero point.
type AlignmentRequest struct {
	// SetID ties the persisted transform to a stored landmark set. May be
	// empty when the caller does not persist landmarks.
	SetID string

	// LineA and LineB are the AC-PC line endpoints in arbitrary order.
	LineA, LineB *r3.Vec
	// Midline is the off-line midline reference point.
	Midline *r3.Vec

	Center acpc.CenterMode

	// LandmarkNodeIDs are the annotation nodes that produced the inputs;
	// the transform is applied back onto them so they render in the new
	// frame, as are the VolumeNodeIDs (typically the foreground and
	// background volumes of the active view).
	LandmarkNodeIDs []string
	VolumeNodeIDs   []string

	// FolderID optionally names a subtree whose transformable children
	// all receive the transform.
	FolderID string
}

// AlignmentResult reports a completed run.
type AlignmentResult struct {
	TransformID  string
	Transform    acpc.RigidTransform
	AC, PC       r3.Vec
	NodesUpdated int
}

// Pipeline orchestrates an alignment run: validate inputs, classify the
// line endpoints, build the transform, persist it, then propagate it over
// the scene. Nothing is persisted or applied unless the kernel succeeds,
// so a failed run leaves prior state untouched.
type Pipeline struct {
	Store     TransformStore // optional; skips persistence when nil
	Hierarchy Hierarchy      // optional; required for node/folder updates
	Views     Views          // optional; orientations reset after success
	Tolerance float64        // degeneracy tolerance; 0 means the default
}

// Align runs the pipeline for one request.
func (p *Pipeline) Align(req AlignmentRequest) (*AlignmentResult, error) {
	if req.LineA == nil || req.LineB == nil || req.Midline == nil {
		return nil, fmt.Errorf("%w: need both line endpoints and a midline point", acpc.ErrMissingInput)
	}

	ac, pc := acpc.ClassifyACPC(*req.LineA, *req.LineB)
	T, err := acpc.BuildTransformTol(ac, pc, *req.Midline, req.Center, p.Tolerance)
	if err != nil {
		return nil, err
	}

	result := &AlignmentResult{Transform: T, AC: ac, PC: pc}

	if p.Store != nil {
		id, err := p.Store.SaveTransform(req.SetID, req.Center, T)
		if err != nil {
			return nil, fmt.Errorf("persist transform: %w", err)
		}
		result.TransformID = id
	}

	if p.Hierarchy != nil {
		ids := make([]string, 0, len(req.LandmarkNodeIDs)+len(req.VolumeNodeIDs))
		ids = append(ids, req.LandmarkNodeIDs...)
		ids = append(ids, req.VolumeNodeIDs...)
		for _, id := range ids {
			n, ok := p.Hierarchy.Node(id)
			if !ok {
				// Volumes come and go with the host's view state; a
				// missing node is not an error.
				monitoring.Logf("alignment: node %q not found, skipping", id)
				continue
			}
			if !n.Transformable() {
				continue
			}
			if err := n.SetTransform(result.TransformID); err != nil {
				return nil, fmt.Errorf("set transform on %q: %w", id, err)
			}
			result.NodesUpdated++
		}

		if req.FolderID != "" {
			updated, err := Propagate(p.Hierarchy, req.FolderID, result.TransformID)
			if err != nil {
				return nil, err
			}
			result.NodesUpdated += updated
		}
	}

	if p.Views != nil {
		if err := p.Views.ResetOrientations(); err != nil {
			return nil, fmt.Errorf("reset view orientations: %w", err)
		}
	}

	return result, nil
}

// Package scene applies a computed AC-PC transform across a host-owned
// node hierarchy. The host (a visualization application, a test harness)
// exposes its nodes through the narrow Hierarchy interface; this package
// only walks the tree and sets transform references, it never owns the
// nodes.
package scene

import "fmt"

// Node is one transformable element of the host hierarchy.
type Node interface {
	ID() string
	// Transformable reports whether a transform reference can be applied
	// to this node. Display-only entries (folders, view nodes) return
	// false and are skipped by Propagate.
	Transformable() bool
	// SetTransform records transformID as the node's active transform
	// reference.
	SetTransform(transformID string) error
}

// Hierarchy is the host-provided view of the scene tree.
type Hierarchy interface {
	// Node looks up a single node by id.
	Node(id string) (Node, bool)
	// Children lists the nodes under rootID. With recursive set the whole
	// subtree is returned, depth first.
	Children(rootID string, recursive bool) ([]Node, error)
}

// Views is the optional host surface for resetting view orientations
// after a transform lands. Hosts without a view layer pass nil.
type Views interface {
	ResetOrientations() error
}

// Propagate applies transformID to every transformable node in the
// subtree under rootID and returns the number of nodes updated.
func Propagate(h Hierarchy, rootID, transformID string) (int, error) {
	children, err := h.Children(rootID, true)
	if err != nil {
		return 0, fmt.Errorf("list children of %q: %w", rootID, err)
	}

	updated := 0
	for _, n := range children {
		if !n.Transformable() {
			continue
		}
		if err := n.SetTransform(transformID); err != nil {
			return updated, fmt.Errorf("set transform on %q: %w", n.ID(), err)
		}
		updated++
	}
	return updated, nil
}

package scene

import "fmt"

// MemNode is the in-memory Node implementation used by tests and by the
// service when it owns the node set itself.
type MemNode struct {
	id            string
	transformable bool

	// TransformID is the last transform reference applied to the node.
	TransformID string
}

func (n *MemNode) ID() string          { return n.id }
func (n *MemNode) Transformable() bool { return n.transformable }

func (n *MemNode) SetTransform(transformID string) error {
	n.TransformID = transformID
	return nil
}

// MemHierarchy is a simple in-memory scene tree. Folders are plain
// parent entries; only nodes added with AddNode appear in walks.
type MemHierarchy struct {
	nodes    map[string]*MemNode
	children map[string][]string
	parents  map[string]bool
}

// NewMemHierarchy returns an empty hierarchy.
func NewMemHierarchy() *MemHierarchy {
	return &MemHierarchy{
		nodes:    make(map[string]*MemNode),
		children: make(map[string][]string),
		parents:  make(map[string]bool),
	}
}

// AddFolder registers a folder under parentID. The root of a tree uses an
// empty parentID.
func (m *MemHierarchy) AddFolder(id, parentID string) {
	m.parents[id] = true
	if parentID != "" {
		m.children[parentID] = append(m.children[parentID], id)
	}
}

// AddNode registers a leaf node under parentID and returns it.
func (m *MemHierarchy) AddNode(id, parentID string, transformable bool) *MemNode {
	n := &MemNode{id: id, transformable: transformable}
	m.nodes[id] = n
	if parentID != "" {
		m.children[parentID] = append(m.children[parentID], id)
	}
	return n
}

// Node implements Hierarchy.
func (m *MemHierarchy) Node(id string) (Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Children implements Hierarchy.
func (m *MemHierarchy) Children(rootID string, recursive bool) ([]Node, error) {
	if !m.parents[rootID] {
		return nil, fmt.Errorf("unknown folder %q", rootID)
	}

	var out []Node
	var walk func(id string)
	walk = func(id string) {
		for _, childID := range m.children[id] {
			if n, ok := m.nodes[childID]; ok {
				out = append(out, n)
			}
			if recursive && m.parents[childID] {
				walk(childID)
			}
		}
	}
	walk(rootID)
	return out, nil
}

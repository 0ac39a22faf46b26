// SPDX-License-Identifier: Apache-2.0

package models

import "sort"

// TreeNode is one node of the sparse server-cache tree. A node is either
// complete — its entire subtree is known and held in value — or incomplete,
// in which case only the children recorded below it are known and
// everything else is a boundary of knowledge.
//
// Invariant: a complete node never carries child nodes; descendants of a
// complete node live inside its value.
type TreeNode struct {
	complete bool
	value    any
	children map[string]*TreeNode
}

// CompleteLeaf is a (path, value) pair used to rebuild a sparse tree from
// persisted rows.
type CompleteLeaf struct {
	Path  Path
	Value any
}

// NewTreeNode returns an empty incomplete node.
func NewTreeNode() *TreeNode {
	return &TreeNode{}
}

// NewCompleteNode returns a complete node holding the given value. A nil
// value represents known emptiness, which is distinct from unknown content.
func NewCompleteNode(value any) *TreeNode {
	return &TreeNode{complete: true, value: value}
}

// FromCompleteLeaves rebuilds a sparse tree from complete leaves, as read
// back from storage. Later leaves win on overlap.
func FromCompleteLeaves(leaves []CompleteLeaf) *TreeNode {
	root := NewTreeNode()
	for _, leaf := range leaves {
		root.SetComplete(leaf.Path, leaf.Value)
	}
	return root
}

// IsComplete reports whether the node's entire subtree is known.
func (n *TreeNode) IsComplete() bool {
	return n.complete
}

// IsEmpty reports whether nothing at all is known below the node.
func (n *TreeNode) IsEmpty() bool {
	return !n.complete && len(n.children) == 0
}

// Value returns the node's value. Meaningful only for complete nodes.
func (n *TreeNode) Value() any {
	return n.value
}

// ApplyOperation mutates the tree in place according to op.
func (n *TreeNode) ApplyOperation(op Operation) {
	switch op.Type {
	case OperationOverwrite:
		n.SetComplete(op.Path, op.Value)
	case OperationMerge:
		for childPath, childValue := range op.Children {
			n.SetComplete(op.Path.Join(NewPath(childPath)), childValue)
		}
	}
}

// SetComplete records a fully known value at path, replacing whatever was
// recorded below it. Writing below an already complete ancestor updates the
// ancestor's value in place, so completeness never fragments.
func (n *TreeNode) SetComplete(path Path, value any) {
	current := n
	for i, segment := range path {
		if current.complete {
			current.value = SetValueAtPath(current.value, path[i:], value)
			return
		}
		if current.children == nil {
			current.children = map[string]*TreeNode{}
		}
		child, ok := current.children[segment]
		if !ok {
			child = NewTreeNode()
			current.children[segment] = child
		}
		current = child
	}
	if current.complete {
		current.value = value
		return
	}
	current.complete = true
	current.value = value
	current.children = nil
}

// RemoveWrite forgets everything recorded at or below path, turning it back
// into unknown territory. Removing below a complete ancestor carves the
// sub-value out of the ancestor instead.
func (n *TreeNode) RemoveWrite(path Path) {
	if len(path) == 0 {
		n.complete = false
		n.value = nil
		n.children = nil
		return
	}

	current := n
	for i, segment := range path[:len(path)-1] {
		if current.complete {
			current.value = SetValueAtPath(current.value, path[i:], nil)
			return
		}
		child, ok := current.children[segment]
		if !ok {
			return
		}
		current = child
	}

	last := path[len(path)-1]
	if current.complete {
		current.value = SetValueAtPath(current.value, Path{last}, nil)
		return
	}
	delete(current.children, last)
	if len(current.children) == 0 {
		current.children = nil
	}
}

// Subtree returns a detached deep copy of the tree rooted at path. Walking
// through a complete ancestor extracts the nested value; walking off the
// known tree yields an empty incomplete node.
func (n *TreeNode) Subtree(path Path) *TreeNode {
	current := n
	for i, segment := range path {
		if current.complete {
			return NewCompleteNode(CloneValue(ValueAtPath(current.value, path[i:])))
		}
		child, ok := current.children[segment]
		if !ok {
			return NewTreeNode()
		}
		current = child
	}
	return current.clone()
}

// ForEachCompleteNode visits every complete node in the tree in sorted path
// order, reporting each node's absolute path and value. Traversal does not
// descend below complete nodes: their content is part of the reported value.
func (n *TreeNode) ForEachCompleteNode(fn func(path Path, value any)) {
	n.forEachComplete(Path{}, fn)
}

// ForEachCompleteNodeUnder is ForEachCompleteNode restricted to the subtree
// at prefix. Reported paths stay absolute.
func (n *TreeNode) ForEachCompleteNodeUnder(prefix Path, fn func(path Path, value any)) {
	current := n
	for i, segment := range prefix {
		if current.complete {
			if value := ValueAtPath(current.value, prefix[i:]); value != nil {
				fn(prefix, value)
			}
			return
		}
		child, ok := current.children[segment]
		if !ok {
			return
		}
		current = child
	}
	current.forEachComplete(prefix, fn)
}

func (n *TreeNode) forEachComplete(path Path, fn func(path Path, value any)) {
	if n.complete {
		fn(path, n.value)
		return
	}
	segments := make([]string, 0, len(n.children))
	for segment := range n.children {
		segments = append(segments, segment)
	}
	sort.Strings(segments)
	for _, segment := range segments {
		n.children[segment].forEachComplete(path.Child(segment), fn)
	}
}

// Equal reports structural equality of two sparse trees.
func (n *TreeNode) Equal(other *TreeNode) bool {
	if n.complete != other.complete {
		return false
	}
	if n.complete {
		return ValueEqual(n.value, other.value)
	}
	if len(n.children) != len(other.children) {
		return false
	}
	for segment, child := range n.children {
		otherChild, ok := other.children[segment]
		if !ok || !child.Equal(otherChild) {
			return false
		}
	}
	return true
}

func (n *TreeNode) clone() *TreeNode {
	copied := &TreeNode{complete: n.complete, value: CloneValue(n.value)}
	if n.children != nil {
		copied.children = make(map[string]*TreeNode, len(n.children))
		for segment, child := range n.children {
			copied.children[segment] = child.clone()
		}
	}
	return copied
}

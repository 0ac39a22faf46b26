// SPDX-License-Identifier: Apache-2.0

package models

import "sort"

// PruneForest is the eviction decision structure handed to the cache
// pruner. It is a tree of boolean markers over relative paths: a true
// marker means "prune everything below here that is not explicitly kept",
// a false marker means "keep this subtree". The deepest marker at or above
// a path wins; a path with no marker anywhere above it is undecided.
type PruneForest struct {
	marker   *bool
	children map[string]*PruneForest
}

// NewPruneForest returns a forest with no decisions recorded.
func NewPruneForest() *PruneForest {
	return &PruneForest{}
}

// PruneAll marks the subtree at path for pruning, discarding any finer
// decisions previously recorded below it. Keep markers added afterwards
// punch holes into the pruned region.
func (f *PruneForest) PruneAll(path Path) *PruneForest {
	f.setMarker(path, true)
	return f
}

// Keep marks the subtree at path as kept, discarding any finer decisions
// previously recorded below it.
func (f *PruneForest) Keep(path Path) *PruneForest {
	f.setMarker(path, false)
	return f
}

func (f *PruneForest) setMarker(path Path, prune bool) {
	node := f
	for _, segment := range path {
		if node.children == nil {
			node.children = map[string]*PruneForest{}
		}
		child, ok := node.children[segment]
		if !ok {
			child = NewPruneForest()
			node.children[segment] = child
		}
		node = child
	}
	node.marker = &prune
	node.children = nil
}

// ShouldPruneUnkeptDescendants reports whether the subtree at path is inside
// a pruned region, i.e. its unkept descendants are to be discarded.
func (f *PruneForest) ShouldPruneUnkeptDescendants(path Path) bool {
	marker := f.leafmostMarker(path)
	return marker != nil && *marker
}

// ShouldKeep reports whether the subtree at path is explicitly kept.
func (f *PruneForest) ShouldKeep(path Path) bool {
	marker := f.leafmostMarker(path)
	return marker != nil && !*marker
}

func (f *PruneForest) leafmostMarker(path Path) *bool {
	node := f
	marker := node.marker
	for _, segment := range path {
		child, ok := node.children[segment]
		if !ok {
			return marker
		}
		node = child
		if node.marker != nil {
			marker = node.marker
		}
	}
	return marker
}

// Child returns the forest scoped to the subtree at path. Decisions
// inherited from above path stay in effect.
func (f *PruneForest) Child(path Path) *PruneForest {
	node := f
	marker := node.marker
	for _, segment := range path {
		child, ok := node.children[segment]
		if !ok {
			return &PruneForest{marker: marker}
		}
		node = child
		if node.marker != nil {
			marker = node.marker
		}
	}
	scoped := &PruneForest{marker: marker, children: node.children}
	return scoped
}

// PrunesAnything reports whether any subtree is marked for pruning.
func (f *PruneForest) PrunesAnything() bool {
	if f.marker != nil && *f.marker {
		return true
	}
	for _, child := range f.children {
		if child.PrunesAnything() {
			return true
		}
	}
	return false
}

// ForEachKeptNode visits every path carrying a keep marker, in sorted
// order, with paths reported relative to the forest root.
func (f *PruneForest) ForEachKeptNode(fn func(path Path)) {
	f.forEachKept(Path{}, fn)
}

func (f *PruneForest) forEachKept(path Path, fn func(path Path)) {
	if f.marker != nil && !*f.marker {
		fn(path)
		return
	}
	segments := make([]string, 0, len(f.children))
	for segment := range f.children {
		segments = append(segments, segment)
	}
	sort.Strings(segments)
	for _, segment := range segments {
		f.children[segment].forEachKept(path.Child(segment), fn)
	}
}

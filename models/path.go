package models

import "strings"

// Path identifies a node in the synchronized tree as an ordered list of
// segments. The zero value (nil or empty) is the tree root.
//
// Paths are always handled in their parsed form; the slash-joined string
// representation is produced only at the storage boundary.
type Path []string

// NewPath parses a slash-joined path string. Leading, trailing and repeated
// slashes are ignored, so "/a//b/" and "a/b" produce the same path.
func NewPath(s string) Path {
	parts := strings.Split(s, "/")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			path = append(path, part)
		}
	}
	return path
}

// String returns the slash-joined form of the path. The root path renders as
// an empty string.
func (p Path) String() string {
	return strings.Join(p, "/")
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Child returns a new path extended with the given segments. The receiver is
// not modified.
func (p Path) Child(segments ...string) Path {
	child := make(Path, 0, len(p)+len(segments))
	child = append(child, p...)
	child = append(child, segments...)
	return child
}

// Join appends another path below the receiver.
func (p Path) Join(other Path) Path {
	return p.Child(other...)
}

// IsAncestorOf reports whether p is an ancestor of other or equal to it.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p) > len(other) {
		return false
	}
	for i, segment := range p {
		if other[i] != segment {
			return false
		}
	}
	return true
}

// IsStrictAncestorOf reports whether p is a proper ancestor of other.
func (p Path) IsStrictAncestorOf(other Path) bool {
	return len(p) < len(other) && p.IsAncestorOf(other)
}

// RelativeTo returns the remainder of p below the given ancestor. The second
// return value is false when ancestor is not actually an ancestor of p.
func (p Path) RelativeTo(ancestor Path) (Path, bool) {
	if !ancestor.IsAncestorOf(p) {
		return nil, false
	}
	rel := make(Path, len(p)-len(ancestor))
	copy(rel, p[len(ancestor):])
	return rel, true
}

// Equal reports whether two paths name the same node.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.IsAncestorOf(other)
}

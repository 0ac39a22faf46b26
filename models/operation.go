package models

// OperationType distinguishes the two kinds of tree mutations produced by
// the sync layer.
type OperationType int

const (
	// OperationOverwrite replaces the subtree at a path with a known value.
	OperationOverwrite OperationType = iota
	// OperationMerge applies several child-path overwrites below a path
	// atomically.
	OperationMerge
)

func (t OperationType) String() string {
	switch t {
	case OperationOverwrite:
		return "overwrite"
	case OperationMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Operation is a single mutation of the synchronized tree: either an
// overwrite of the subtree at Path with Value, or a merge of the child
// overwrites in Children below Path.
//
// Merge keys are relative child paths and may span several segments
// (for example "settings/theme").
type Operation struct {
	Type     OperationType
	Path     Path
	Value    any
	Children map[string]any
}

// NewOverwrite builds an overwrite operation. A nil value removes the
// subtree at path.
func NewOverwrite(path Path, value any) Operation {
	return Operation{Type: OperationOverwrite, Path: path, Value: value}
}

// NewMerge builds a merge operation from child-path overwrites relative to
// path.
func NewMerge(path Path, children map[string]any) Operation {
	return Operation{Type: OperationMerge, Path: path, Children: children}
}

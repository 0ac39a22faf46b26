package models

// Tree values are plain JSON-shaped Go values: nil, bool, float64, string,
// []any and map[string]any. Helpers in this file navigate and copy them
// without assuming any deeper structure.

// ValueChild returns the direct child of a tree value under the given
// segment. Only object values have children; for every other shape the
// result is nil.
func ValueChild(value any, segment string) any {
	object, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return object[segment]
}

// ValueAtPath descends into value along path and returns the nested value,
// or nil when the path leads outside the known structure.
func ValueAtPath(value any, path Path) any {
	current := value
	for _, segment := range path {
		current = ValueChild(current, segment)
		if current == nil {
			return nil
		}
	}
	return current
}

// SetValueAtPath returns value with the subtree at path replaced by newValue.
// Setting nil removes the subtree; intermediate objects are created as
// needed and objects emptied by a removal collapse to nil. The input value
// is not modified.
func SetValueAtPath(value any, path Path, newValue any) any {
	if len(path) == 0 {
		return newValue
	}

	object, ok := value.(map[string]any)
	if !ok {
		if newValue == nil {
			return value
		}
		object = map[string]any{}
	}

	segment := path[0]
	updated := make(map[string]any, len(object)+1)
	for k, v := range object {
		updated[k] = v
	}

	child := SetValueAtPath(object[segment], path[1:], newValue)
	if child == nil {
		delete(updated, segment)
	} else {
		updated[segment] = child
	}

	if len(updated) == 0 {
		return nil
	}
	return updated
}

// CloneValue returns a deep copy of a JSON-shaped value. Scalars are shared
// since they are immutable.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = CloneValue(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = CloneValue(v)
		}
		return clone
	default:
		return value
	}
}

// ValueEqual reports deep equality of two JSON-shaped values.
func ValueEqual(a, b any) bool {
	switch left := a.(type) {
	case map[string]any:
		right, ok := b.(map[string]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for k, v := range left {
			rv, found := right[k]
			if !found || !ValueEqual(v, rv) {
				return false
			}
		}
		return true
	case []any:
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i, v := range left {
			if !ValueEqual(v, right[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

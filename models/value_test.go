package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueAtPath(t *testing.T) {
	value := map[string]any{
		"users": map[string]any{
			"alice": map[string]any{"age": float64(30)},
		},
	}

	t.Run("nested value", func(t *testing.T) {
		assert.Equal(t, float64(30), ValueAtPath(value, NewPath("users/alice/age")))
	})

	t.Run("root path returns the value itself", func(t *testing.T) {
		assert.Equal(t, value, ValueAtPath(value, Path{}))
	})

	t.Run("path through a scalar is nil", func(t *testing.T) {
		assert.Nil(t, ValueAtPath(value, NewPath("users/alice/age/extra")))
	})

	t.Run("missing key is nil", func(t *testing.T) {
		assert.Nil(t, ValueAtPath(value, NewPath("users/bob")))
	})
}

func TestSetValueAtPath(t *testing.T) {
	t.Run("creates intermediate objects", func(t *testing.T) {
		got := SetValueAtPath(nil, NewPath("a/b"), "x")
		assert.Equal(t, map[string]any{"a": map[string]any{"b": "x"}}, got)
	})

	t.Run("nil removes and empty objects collapse", func(t *testing.T) {
		value := map[string]any{"a": map[string]any{"b": "x"}}
		got := SetValueAtPath(value, NewPath("a/b"), nil)
		assert.Nil(t, got)
	})

	t.Run("removal keeps siblings", func(t *testing.T) {
		value := map[string]any{"a": "1", "b": "2"}
		got := SetValueAtPath(value, NewPath("a"), nil)
		assert.Equal(t, map[string]any{"b": "2"}, got)
	})

	t.Run("input is not modified", func(t *testing.T) {
		value := map[string]any{"a": map[string]any{"b": "x"}}
		_ = SetValueAtPath(value, NewPath("a/b"), "y")
		assert.Equal(t, map[string]any{"a": map[string]any{"b": "x"}}, value)
	})

	t.Run("removing through a scalar is a no-op", func(t *testing.T) {
		got := SetValueAtPath("scalar", NewPath("a"), nil)
		assert.Equal(t, "scalar", got)
	})
}

func TestCloneValue_Detached(t *testing.T) {
	original := map[string]any{"list": []any{float64(1)}, "obj": map[string]any{"k": "v"}}
	clone := CloneValue(original).(map[string]any)

	clone["obj"].(map[string]any)["k"] = "changed"
	clone["list"].([]any)[0] = float64(2)

	assert.Equal(t, "v", original["obj"].(map[string]any)["k"])
	assert.Equal(t, float64(1), original["list"].([]any)[0])
}

func TestValueEqual(t *testing.T) {
	assert.True(t, ValueEqual(
		map[string]any{"a": []any{float64(1), "x"}},
		map[string]any{"a": []any{float64(1), "x"}},
	))
	assert.False(t, ValueEqual(map[string]any{"a": "1"}, map[string]any{"a": "2"}))
	assert.False(t, ValueEqual([]any{"a"}, []any{"a", "b"}))
	assert.False(t, ValueEqual(map[string]any{}, "scalar"))
	assert.True(t, ValueEqual(nil, nil))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectCompleteNodes(t *testing.T, tree *TreeNode) map[string]any {
	t.Helper()
	nodes := map[string]any{}
	tree.ForEachCompleteNode(func(path Path, value any) {
		nodes[path.String()] = value
	})
	return nodes
}

func TestTreeNode_SetComplete(t *testing.T) {
	t.Run("disjoint writes stay separate", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("a/b"), "1")
		tree.SetComplete(NewPath("a/c"), "2")

		assert.Equal(t, map[string]any{"a/b": "1", "a/c": "2"}, collectCompleteNodes(t, tree))
	})

	t.Run("ancestor write swallows descendants", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("a/b"), "old")
		tree.SetComplete(NewPath("a"), map[string]any{"b": "new"})

		nodes := collectCompleteNodes(t, tree)
		require.Len(t, nodes, 1)
		assert.Equal(t, map[string]any{"b": "new"}, nodes["a"])
	})

	t.Run("write below complete ancestor edits the value in place", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("a"), map[string]any{"b": "old", "c": "keep"})
		tree.SetComplete(NewPath("a/b"), "new")

		nodes := collectCompleteNodes(t, tree)
		require.Len(t, nodes, 1, "completeness must not fragment")
		assert.Equal(t, map[string]any{"b": "new", "c": "keep"}, nodes["a"])
	})

	t.Run("nil value below complete ancestor removes the sub-value", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("a"), map[string]any{"b": "x", "c": "y"})
		tree.SetComplete(NewPath("a/b"), nil)

		nodes := collectCompleteNodes(t, tree)
		assert.Equal(t, map[string]any{"c": "y"}, nodes["a"])
	})
}

func TestTreeNode_ApplyOperation(t *testing.T) {
	t.Run("overwrite", func(t *testing.T) {
		tree := NewTreeNode()
		tree.ApplyOperation(NewOverwrite(NewPath("settings"), map[string]any{"theme": "dark"}))

		sub := tree.Subtree(NewPath("settings"))
		require.True(t, sub.IsComplete())
		assert.Equal(t, map[string]any{"theme": "dark"}, sub.Value())
	})

	t.Run("merge applies each child as an overwrite", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("u"), map[string]any{"a": "1", "b": "2", "c": "3"})
		tree.ApplyOperation(NewMerge(NewPath("u"), map[string]any{
			"a":   "updated",
			"d/e": "nested",
		}))

		nodes := collectCompleteNodes(t, tree)
		assert.Equal(t, map[string]any{
			"a": "updated",
			"b": "2",
			"c": "3",
			"d": map[string]any{"e": "nested"},
		}, nodes["u"])
	})

	t.Run("merge on unknown territory records each child separately", func(t *testing.T) {
		tree := NewTreeNode()
		tree.ApplyOperation(NewMerge(NewPath("u"), map[string]any{"a": "1", "b": "2"}))

		assert.Equal(t, map[string]any{"u/a": "1", "u/b": "2"}, collectCompleteNodes(t, tree))
		assert.False(t, tree.Subtree(NewPath("u")).IsComplete(),
			"merge must not invent completeness for unwritten siblings")
	})
}

func TestTreeNode_Subtree(t *testing.T) {
	tree := NewTreeNode()
	tree.SetComplete(NewPath("a"), map[string]any{"b": map[string]any{"c": "v"}})

	t.Run("extracts through complete ancestor", func(t *testing.T) {
		sub := tree.Subtree(NewPath("a/b/c"))
		require.True(t, sub.IsComplete())
		assert.Equal(t, "v", sub.Value())
	})

	t.Run("unknown path yields empty incomplete node", func(t *testing.T) {
		sub := tree.Subtree(NewPath("x/y"))
		assert.True(t, sub.IsEmpty())
	})

	t.Run("returned tree is detached", func(t *testing.T) {
		sub := tree.Subtree(NewPath("a"))
		sub.SetComplete(NewPath("b"), "mutated")

		assert.Equal(t, "v", ValueAtPath(tree.Subtree(NewPath("a")).Value(), NewPath("b/c")))
	})
}

func TestTreeNode_RemoveWrite(t *testing.T) {
	t.Run("removes a recorded subtree", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("a/b"), "1")
		tree.SetComplete(NewPath("a/c"), "2")

		tree.RemoveWrite(NewPath("a/b"))

		assert.Equal(t, map[string]any{"a/c": "2"}, collectCompleteNodes(t, tree))
	})

	t.Run("carves out of a complete ancestor", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("a"), map[string]any{"b": "1", "c": "2"})

		tree.RemoveWrite(NewPath("a/b"))

		nodes := collectCompleteNodes(t, tree)
		assert.Equal(t, map[string]any{"c": "2"}, nodes["a"])
	})

	t.Run("root removal forgets everything", func(t *testing.T) {
		tree := NewTreeNode()
		tree.SetComplete(NewPath("a"), "1")

		tree.RemoveWrite(Path{})

		assert.True(t, tree.IsEmpty())
	})
}

func TestFromCompleteLeaves_RoundTrip(t *testing.T) {
	original := NewTreeNode()
	original.SetComplete(NewPath("users/alice"), map[string]any{"age": float64(30)})
	original.SetComplete(NewPath("users/bob"), map[string]any{"age": float64(25)})
	original.SetComplete(NewPath("settings"), map[string]any{"theme": "dark"})

	var leaves []CompleteLeaf
	original.ForEachCompleteNode(func(path Path, value any) {
		leaves = append(leaves, CompleteLeaf{Path: path, Value: value})
	})

	rebuilt := FromCompleteLeaves(leaves)
	assert.True(t, original.Equal(rebuilt))
}

func TestTreeNode_ForEachCompleteNodeUnder(t *testing.T) {
	tree := NewTreeNode()
	tree.SetComplete(NewPath("a/b"), "1")
	tree.SetComplete(NewPath("a/c"), "2")
	tree.SetComplete(NewPath("z"), "3")

	var paths []string
	tree.ForEachCompleteNodeUnder(NewPath("a"), func(path Path, value any) {
		paths = append(paths, path.String())
	})

	assert.Equal(t, []string{"a/b", "a/c"}, paths, "paths stay absolute and sorted")
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusfeed/socialmesh/internal/userinteraction/domain"
)

func TestReconstructTree_NestsChildrenInCreationOrder(t *testing.T) {
	flat := []domain.Reply{
		{ID: "r1", RootID: "p", ParentID: "p", Path: "p/r1"},
		{ID: "r2", RootID: "p", ParentID: "r1", Path: "p/r1/r2"},
		{ID: "r3", RootID: "p", ParentID: "r2", Path: "p/r1/r2/r3"},
	}

	roots, byID := reconstructTree(flat)

	require.Len(t, roots, 1)
	assert.Equal(t, "r1", roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "r2", roots[0].Children[0].ID)
	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, "r3", roots[0].Children[0].Children[0].ID)
	assert.Empty(t, roots[0].Children[0].Children[0].Children)

	assert.Len(t, byID, 3)
}

func TestReconstructTree_OrphanedParentBecomesRoot(t *testing.T) {
	// r2's parent ("missing") is not present in the flat set: it becomes a
	// top-level node of its own, per the nesting reconstruction rule.
	flat := []domain.Reply{
		{ID: "r1", RootID: "p", ParentID: "p"},
		{ID: "r2", RootID: "p", ParentID: "missing"},
	}

	roots, _ := reconstructTree(flat)

	require.Len(t, roots, 2)
	ids := map[string]bool{roots[0].ID: true, roots[1].ID: true}
	assert.True(t, ids["r1"])
	assert.True(t, ids["r2"])
}

func TestReconstructTree_EmptyInput(t *testing.T) {
	roots, byID := reconstructTree(nil)
	assert.Empty(t, roots)
	assert.Empty(t, byID)
}

func TestReconstructTree_MultipleChildrenUnderOneParent(t *testing.T) {
	flat := []domain.Reply{
		{ID: "r1", RootID: "p", ParentID: "p"},
		{ID: "r2", RootID: "p", ParentID: "r1"},
		{ID: "r3", RootID: "p", ParentID: "r1"},
	}

	roots, _ := reconstructTree(flat)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 2)
}

package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type node struct {
	ID       string
	Children []node
}

func nodeID(n node) string       { return n.ID }
func nodeChildren(n node) []node { return n.Children }

func rowIDs(rows []Row[node]) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Item.ID)
	}
	return ids
}

func TestFlatten(t *testing.T) {
	parents := []node{
		{ID: "P1", Children: []node{{ID: "C1"}, {ID: "C2"}}},
		{ID: "P2"},
	}

	rows := Flatten(parents, NewSet("P1"), nodeID, nodeChildren)
	assert.Equal(t, []string{"P1", "C1", "C2", "P2"}, rowIDs(rows))

	assert.False(t, rows[0].IsChild)
	assert.True(t, rows[0].Expandable)
	assert.True(t, rows[0].Expanded)
	assert.True(t, rows[1].IsChild)
	assert.Equal(t, "P1", rows[1].ParentID)
	if assert.NotNil(t, rows[1].Parent) {
		assert.Equal(t, "P1", rows[1].Parent.ID)
	}
	assert.False(t, rows[3].Expandable)

	rows = Flatten(parents, NewSet(), nodeID, nodeChildren)
	assert.Equal(t, []string{"P1", "P2"}, rowIDs(rows))
	assert.False(t, rows[0].Expanded)
}

func TestFlatten_ExpandingChildlessParentIsNoop(t *testing.T) {
	parents := []node{{ID: "P2"}}
	rows := Flatten(parents, NewSet("P2"), nodeID, nodeChildren)
	assert.Len(t, rows, 1)
	assert.False(t, rows[0].Expandable)
	assert.False(t, rows[0].Expanded)
}

func TestFlatten_NilSet(t *testing.T) {
	parents := []node{{ID: "P1", Children: []node{{ID: "C1"}}}}
	rows := Flatten(parents, nil, nodeID, nodeChildren)
	assert.Equal(t, []string{"P1"}, rowIDs(rows))
}

func TestParseSet(t *testing.T) {
	s := ParseSet(" REQ-1, ,REQ-2,")
	assert.True(t, s.Has("REQ-1"))
	assert.True(t, s.Has("REQ-2"))
	assert.Len(t, s, 2)
	assert.Empty(t, ParseSet(""))
}

package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type doc struct {
	ID     string
	Name   string
	Plant  string
	Status string
	Owner  string
}

var docFields = Fields[doc]{
	Search: []func(doc) string{
		func(d doc) string { return d.ID },
		func(d doc) string { return d.Name },
	},
	Facets: map[string]Facet[doc]{
		"status":   {Value: func(d doc) string { return d.Status }},
		"plant_id": {Value: func(d doc) string { return d.Plant }},
		"owner":    {Value: func(d doc) string { return d.Owner }, AllowUnassigned: true},
	},
}

func sampleDocs() []doc {
	return []doc{
		{ID: "REQ-2024-001", Name: "Steel Coil CoA", Plant: "P100", Status: "completed", Owner: "u1"},
		{ID: "REQ-2024-002", Name: "Resin Batch", Plant: "P200", Status: "failed"},
		{ID: "REQ-2024-003", Name: "steel bar cert", Plant: "P100", Status: "in_progress", Owner: "u2"},
		{ID: "REQ-2024-004", Name: "Copper Wire", Plant: "P300", Status: "pending"},
	}
}

func TestFilter_NoCriteriaReturnsAll(t *testing.T) {
	docs := sampleDocs()

	got := Filter(docs, Criteria{}, docFields)
	assert.Equal(t, docs, got)

	got = Filter(docs, Criteria{Facets: map[string]string{"status": "all", "plant_id": ""}}, docFields)
	assert.Equal(t, docs, got)
}

func TestFilter_EmptyInput(t *testing.T) {
	got := Filter(nil, Criteria{Search: "steel"}, docFields)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFilter_SearchIsCaseInsensitiveOrAcrossFields(t *testing.T) {
	got := Filter(sampleDocs(), Criteria{Search: "  STEEL "}, docFields)
	assert.Len(t, got, 2)
	assert.Equal(t, "REQ-2024-001", got[0].ID)
	assert.Equal(t, "REQ-2024-003", got[1].ID)

	got = Filter(sampleDocs(), Criteria{Search: "2024-004"}, docFields)
	assert.Len(t, got, 1)
	assert.Equal(t, "Copper Wire", got[0].Name)
}

func TestFilter_FacetsAreAndedWithSearch(t *testing.T) {
	c := Criteria{
		Search: "steel",
		Facets: map[string]string{"status": "In_Progress", "plant_id": "p100"},
	}
	got := Filter(sampleDocs(), c, docFields)
	assert.Len(t, got, 1)
	assert.Equal(t, "REQ-2024-003", got[0].ID)

	c.Facets["plant_id"] = "P200"
	assert.Empty(t, Filter(sampleDocs(), c, docFields))
}

func TestFilter_UnassignedSentinel(t *testing.T) {
	got := Filter(sampleDocs(), Criteria{Facets: map[string]string{"owner": "unassigned"}}, docFields)
	assert.Len(t, got, 2)
	for _, d := range got {
		assert.Empty(t, d.Owner)
	}

	// "unassigned" is a literal value on facets that do not allow the sentinel
	got = Filter(sampleDocs(), Criteria{Facets: map[string]string{"status": "unassigned"}}, docFields)
	assert.Empty(t, got)
}

func TestFilter_UnknownFacetIgnored(t *testing.T) {
	got := Filter(sampleDocs(), Criteria{Facets: map[string]string{"department": "qa"}}, docFields)
	assert.Len(t, got, 4)
}

func TestFilter_SubsetAndIdempotent(t *testing.T) {
	docs := sampleDocs()
	criteria := []Criteria{
		{Search: "re"},
		{Facets: map[string]string{"plant_id": "P100"}},
		{Search: "c", Facets: map[string]string{"owner": "unassigned"}},
		{Search: "nothing-matches"},
	}
	for _, c := range criteria {
		once := Filter(docs, c, docFields)
		twice := Filter(once, c, docFields)
		assert.Equal(t, once, twice)
		for _, d := range once {
			assert.Contains(t, docs, d)
		}
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	got := Filter(sampleDocs(), Criteria{Search: "req"}, docFields)
	ids := make([]string, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"REQ-2024-001", "REQ-2024-002", "REQ-2024-003", "REQ-2024-004"}, ids)
}

func TestCriteria_IsZero(t *testing.T) {
	assert.True(t, Criteria{}.IsZero())
	assert.True(t, Criteria{Search: "  ", Facets: map[string]string{"a": "ALL"}}.IsZero())
	assert.False(t, Criteria{Facets: map[string]string{"a": "x"}}.IsZero())
}

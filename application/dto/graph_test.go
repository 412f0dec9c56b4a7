package dto

import (
	"encoding/json"
	"testing"

	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/entities"
	"mediagraph/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_LegacyStoredGraph(t *testing.T) {
	raw := `{
		"id": "g1",
		"name": "Films",
		"nodes": [
			{"id": "z", "type": "zone", "data": {"name": "Noir", "radius": null}, "position": {"x": 0, "y": 0}},
			{"id": "n1", "type": "resizable", "data": {"title": "Heat", "link": "http://heat", "image_url": "http://heat.png"}, "position": {"x": 10, "y": 20}},
			{"id": "n2", "kind": "zone", "data": {"name": "West", "radius": "150"}, "position": {"x": 5, "y": 5}}
		],
		"edges": [
			{"id": "n1-n1", "source": "n1", "target": "n1"},
			{"source": "n1", "target": "ghost"}
		]
	}`

	var g GraphDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &g))

	doc := g.ApplyTo(aggregates.NewDocument("g1", ""))

	assert.Equal(t, "Films", doc.Name())
	require.Equal(t, 3, doc.NodeCount())

	n1, ok := doc.Node("n1")
	require.True(t, ok)
	media, ok := n1.Media()
	require.True(t, ok)
	assert.Equal(t, "http://heat.png", media.ImageURL)
	assert.Equal(t, valueobjects.Position{X: 10, Y: 20}, n1.Position())

	z, _ := doc.Node("z")
	zone, ok := z.Zone()
	require.True(t, ok)
	assert.Equal(t, float64(entities.DefaultZoneRadius), zone.Radius)

	n2, _ := doc.Node("n2")
	zone, _ = n2.Zone()
	assert.Equal(t, 150.0, zone.Radius)

	assert.Equal(t, 1, doc.EdgeCount())
	assert.True(t, doc.HasEdge("n1-n1"))
}

func TestNode_UnknownKindIsDropped(t *testing.T) {
	_, ok := Node{ID: "x", Kind: "group"}.ToDomain()
	assert.False(t, ok)
	_, ok = Node{Kind: KindMedia}.ToDomain()
	assert.False(t, ok)
}

func TestFromDocument_OmitsHandlesAndStyling(t *testing.T) {
	doc := aggregates.NewDocument("g1", "Graph").
		InsertNode(entities.NewMediaNode("a", entities.MediaPayload{Title: "A"}, valueobjects.Position{X: 1, Y: 2})).
		InsertNode(entities.NewMediaNode("b", entities.MediaPayload{Title: "B"}, valueobjects.Position{}))
	src, _ := valueobjects.NewHandleRef(valueobjects.HandleBottom)
	doc = doc.InsertEdge(entities.NewEdge("a", "b").WithHandles(&src, nil).AsFresh())

	body, err := json.Marshal(ReplaceRequestFromDocument(doc))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"nodes": [
			{"id": "a", "kind": "media", "data": {"title": "A"}, "position": {"x": 1, "y": 2}, "stackHint": 1},
			{"id": "b", "kind": "media", "data": {"title": "B"}, "position": {"x": 0, "y": 0}, "stackHint": 1}
		],
		"edges": [{"id": "a-b", "source": "a", "target": "b"}]
	}`, string(body))
}

func TestID_AcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		raw  string
		want ID
	}{
		{raw: `{"id":"g1"}`, want: "g1"},
		{raw: `{"id":42}`, want: "42"},
		{raw: `{"id":null}`, want: ""},
		{raw: `{}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var s GraphSummary
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.want, s.ID)
		})
	}

	var s GraphSummary
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &s))

	out, err := json.Marshal(GraphSummary{ID: "7", Name: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","name":"x"}`, string(out))
}

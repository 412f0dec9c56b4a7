package validators

import (
	"testing"

	"mediagraph/domain/config"
	"mediagraph/domain/core/aggregates"
	"mediagraph/domain/core/entities"
	"mediagraph/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDoc(t *testing.T) *aggregates.Document {
	t.Helper()
	doc := aggregates.NewDocument("g1", "Graph")
	for _, id := range []string{"A", "B"} {
		doc = doc.InsertNode(entities.NewMediaNode(
			valueobjects.NodeID(id),
			entities.MediaPayload{Title: id},
			valueobjects.Position{},
		))
	}
	doc = doc.PrependNode(entities.NewZoneNode("Z", entities.ZonePayload{Name: "zone", Radius: 80}, valueobjects.Position{}))
	require.Equal(t, 3, doc.NodeCount())
	return doc
}

func handle(side valueobjects.HandleSide) *valueobjects.HandleRef {
	h, _ := valueobjects.NewHandleRef(side)
	return &h
}

func TestConnectionValidator_CreatesFreshEdge(t *testing.T) {
	doc := buildDoc(t)
	v := NewConnectionValidator()

	res := v.Connect(doc, Connection{Source: "A", SourceHandle: handle(valueobjects.HandleBottom), Target: "B", TargetHandle: handle(valueobjects.HandleTop)})

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, valueobjects.EdgeID("A-B"), res.EdgeID)
	edge, ok := res.Doc.Edge("A-B")
	require.True(t, ok)
	assert.True(t, edge.IsFresh())
	src, ok := edge.SourceHandle()
	require.True(t, ok)
	assert.Equal(t, valueobjects.HandleBottom, src.Side)
	assert.Equal(t, 0, doc.EdgeCount())
}

func TestConnectionValidator_DuplicateIsNoOp(t *testing.T) {
	v := NewConnectionValidator()
	doc := v.Connect(buildDoc(t), Connection{Source: "A", Target: "B"}).Doc

	res := v.Connect(doc, Connection{Source: "A", Target: "B"})

	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	assert.Same(t, doc, res.Doc)
	assert.Equal(t, 1, res.Doc.EdgeCount())
}

func TestConnectionValidator_DuplicatePairWithForeignID(t *testing.T) {
	doc := buildDoc(t)
	doc = doc.ReplaceAll("Graph", doc.Nodes(), []entities.Edge{
		entities.ReconstructEdge("e1", "A", "B"),
		entities.ReconstructEdge("e2", "A", "B"),
	})
	require.Equal(t, 1, doc.EdgeCount())

	res := NewConnectionValidator().Connect(doc, Connection{Source: "A", Target: "B"})

	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	assert.Equal(t, valueobjects.EdgeID("e1"), res.EdgeID)
	assert.Same(t, doc, res.Doc)
	assert.Equal(t, 1, res.Doc.EdgeCount())
}

// Edge ids are plain concatenations, so distinct pairs can derive the same id.
// The second connection is a no-op until the first edge is removed.
func TestConnectionValidator_DerivedIDCollision(t *testing.T) {
	assert.Equal(t, valueobjects.DeriveEdgeID("a-b", "c"), valueobjects.DeriveEdgeID("a", "b-c"))

	doc := aggregates.NewDocument("g1", "Graph")
	for _, id := range []string{"a", "a-b", "b-c", "c"} {
		doc = doc.InsertNode(entities.NewMediaNode(valueobjects.NodeID(id), entities.MediaPayload{Title: id}, valueobjects.Position{}))
	}
	v := NewConnectionValidator()
	first := v.Connect(doc, Connection{Source: "a-b", Target: "c"})
	require.Equal(t, OutcomeCreated, first.Outcome)

	second := v.Connect(first.Doc, Connection{Source: "a", Target: "b-c"})

	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.Equal(t, "edge id already used by another pair", second.Reason)
	assert.Same(t, first.Doc, second.Doc)

	freed := v.Connect(first.Doc.RemoveEdge("a-b-c"), Connection{Source: "a", Target: "b-c"})
	assert.Equal(t, OutcomeCreated, freed.Outcome)
}

func TestConnectionValidator_ReverseDirectionIsDistinct(t *testing.T) {
	v := NewConnectionValidator()
	doc := v.Connect(buildDoc(t), Connection{Source: "A", Target: "B"}).Doc

	res := v.Connect(doc, Connection{Source: "B", Target: "A"})

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.True(t, res.Doc.HasEdge("A-B"))
	assert.True(t, res.Doc.HasEdge("B-A"))
	assert.Equal(t, 2, res.Doc.EdgeCount())
}

func TestConnectionValidator_Rejections(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
	}{
		{name: "unknown source", conn: Connection{Source: "X", Target: "B"}},
		{name: "unknown target", conn: Connection{Source: "A", Target: "X"}},
		{name: "empty source", conn: Connection{Target: "B"}},
		{name: "zone source", conn: Connection{Source: "Z", Target: "B"}},
		{name: "zone target", conn: Connection{Source: "A", Target: "Z"}},
		{name: "target handle used as source", conn: Connection{Source: "A", SourceHandle: handle(valueobjects.HandleTop), Target: "B"}},
		{name: "source handle used as target", conn: Connection{Source: "A", Target: "B", TargetHandle: handle(valueobjects.HandleRight)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := buildDoc(t)
			res := NewConnectionValidator().Connect(doc, tt.conn)

			assert.Equal(t, OutcomeRejected, res.Outcome)
			assert.NotEmpty(t, res.Reason)
			assert.Same(t, doc, res.Doc)
		})
	}
}

func TestConnectionValidator_BothHandleServesEitherEnd(t *testing.T) {
	both := &valueobjects.HandleRef{Side: valueobjects.HandleTop, Type: valueobjects.HandleBoth}

	res := NewConnectionValidator().Connect(buildDoc(t), Connection{Source: "A", SourceHandle: both, Target: "B", TargetHandle: both})

	assert.Equal(t, OutcomeCreated, res.Outcome)
}

func TestConnectionValidator_SelfLoops(t *testing.T) {
	res := NewConnectionValidator().Connect(buildDoc(t), Connection{Source: "A", Target: "A"})
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.True(t, res.Doc.HasEdge("A-A"))

	cfg := config.DefaultDomainConfig()
	cfg.AllowSelfConnections = false
	res = NewConnectionValidatorWithConfig(cfg).Connect(buildDoc(t), Connection{Source: "A", Target: "A"})
	assert.Equal(t, OutcomeRejected, res.Outcome)
}

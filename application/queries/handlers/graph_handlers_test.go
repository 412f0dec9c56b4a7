package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/application/queries"
	"mediagraph/application/queries/bus"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/infrastructure/persistence/memory"
	appErrors "mediagraph/pkg/errors"
)

func newBus(t *testing.T) (*bus.QueryBus, *memory.GraphRepository) {
	t.Helper()
	repo := memory.NewGraphRepository()
	b := bus.NewQueryBus(bus.LoggingMiddleware(zap.NewNop()))
	require.NoError(t, Register(b, repo))
	return b, repo
}

func TestGetGraph(t *testing.T) {
	b, repo := newBus(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, valueobjects.GraphID("g1"), "Board")
	require.NoError(t, err)
	_, err = repo.Replace(ctx, valueobjects.GraphID("g1"),
		[]dto.Node{{ID: "a", Kind: dto.KindMedia}, {ID: "b", Kind: dto.KindMedia}},
		[]dto.Edge{{ID: "a-b", Source: "a", Target: "b"}},
	)
	require.NoError(t, err)

	result, err := b.Ask(ctx, queries.GetGraphQuery{GraphID: "g1"})
	require.NoError(t, err)

	doc, ok := result.(*dto.GraphDocument)
	require.True(t, ok)
	assert.Equal(t, dto.ID("g1"), doc.ID)
	assert.Equal(t, "Board", doc.Name)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Edges, 1)
}

func TestGetGraph_Errors(t *testing.T) {
	b, _ := newBus(t)

	_, err := b.Ask(context.Background(), queries.GetGraphQuery{GraphID: "missing"})
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))

	_, err = b.Ask(context.Background(), queries.GetGraphQuery{})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
}

func TestListGraphs(t *testing.T) {
	b, repo := newBus(t)
	ctx := context.Background()

	result, err := b.Ask(ctx, queries.ListGraphsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []dto.GraphSummary{}, result)

	_, err = repo.Create(ctx, valueobjects.GraphID("g1"), "First")
	require.NoError(t, err)
	_, err = repo.Create(ctx, valueobjects.GraphID("g2"), "Second")
	require.NoError(t, err)

	result, err = b.Ask(ctx, queries.ListGraphsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []dto.GraphSummary{{ID: "g1", Name: "First"}, {ID: "g2", Name: "Second"}}, result)
}

func TestQueryBus_DuplicateRegistration(t *testing.T) {
	b, repo := newBus(t)
	err := b.Register(queries.ListGraphsQuery{}, NewListGraphsHandler(repo))
	require.Error(t, err)
}

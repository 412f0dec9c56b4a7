package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/domain/config"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/domain/events"
	"mediagraph/infrastructure/persistence/memory"
	appErrors "mediagraph/pkg/errors"
)

type recordingPublisher struct {
	events []events.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.DomainEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) PublishBatch(ctx context.Context, es []events.DomainEvent) error {
	for _, e := range es {
		_ = p.Publish(ctx, e)
	}
	return p.err
}

func newService(t *testing.T) (*GraphService, *memory.GraphRepository, *recordingPublisher) {
	t.Helper()
	repo := memory.NewGraphRepository()
	pub := &recordingPublisher{}
	svc := NewGraphService(repo, pub, valueobjects.NewSequenceGenerator("g"), config.DefaultDomainConfig(), zap.NewNop())
	return svc, repo, pub
}

func TestGraphService_Create(t *testing.T) {
	svc, repo, pub := newService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, dto.CreateGraphRequest{Name: "  Mood board "})
	require.NoError(t, err)
	assert.Equal(t, dto.ID("g1"), resp.ID)
	assert.Equal(t, "Mood board", resp.Name)

	record, err := repo.Get(ctx, valueobjects.GraphID("g1"))
	require.NoError(t, err)
	assert.Empty(t, record.Nodes)
	assert.Empty(t, record.Edges)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeGraphCreated, pub.events[0].GetEventType())
	assert.Equal(t, "g1", pub.events[0].GetAggregateID())
}

func TestGraphService_CreateValidation(t *testing.T) {
	svc, _, pub := newService(t)

	tests := []struct {
		name string
		req  dto.CreateGraphRequest
	}{
		{"empty", dto.CreateGraphRequest{Name: ""}},
		{"blank", dto.CreateGraphRequest{Name: "   "}},
		{"too long", dto.CreateGraphRequest{Name: strings.Repeat("x", 201)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, appErrors.IsValidation(err))
		})
	}
	assert.Empty(t, pub.events)
}

func TestGraphService_Replace(t *testing.T) {
	svc, repo, pub := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateGraphRequest{Name: "Board"})
	require.NoError(t, err)
	id := valueobjects.GraphID(created.ID)

	req := dto.ReplaceGraphRequest{
		Nodes: []dto.Node{
			{ID: "a", LegacyType: "resizable", Data: dto.NodeData{Title: "A"}, Position: valueobjects.Position{X: 1, Y: 2}},
			{ID: "z", Kind: dto.KindZone, Data: dto.NodeData{Name: "Zone", Radius: 80}},
		},
		Edges: []dto.Edge{
			{Source: "a", Target: "z"},
			{Source: "a", Target: "missing"},
		},
	}

	resp, err := svc.Replace(ctx, id, req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)
	assert.NotEmpty(t, resp.UpdatedAt)

	record, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, record.Nodes, 2)
	require.Len(t, record.Edges, 1)
	assert.Equal(t, "a-z", record.Edges[0].ID)

	var kinds []string
	for _, n := range record.Nodes {
		kinds = append(kinds, n.Kind)
	}
	assert.ElementsMatch(t, []string{dto.KindMedia, dto.KindZone}, kinds)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.TypeGraphSaved, pub.events[1].GetEventType())
}

func TestGraphService_ReplaceErrors(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	t.Run("missing graph", func(t *testing.T) {
		_, err := svc.Replace(ctx, valueobjects.GraphID("nope"), dto.ReplaceGraphRequest{})
		require.Error(t, err)
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := svc.Replace(ctx, valueobjects.GraphID(""), dto.ReplaceGraphRequest{})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("unknown kind", func(t *testing.T) {
		created, err := svc.Create(ctx, dto.CreateGraphRequest{Name: "Board"})
		require.NoError(t, err)

		_, err = svc.Replace(ctx, valueobjects.GraphID(created.ID), dto.ReplaceGraphRequest{
			Nodes: []dto.Node{{ID: "a", Kind: "sticky"}},
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestGraphService_PublishFailureDoesNotFailWrite(t *testing.T) {
	svc, _, pub := newService(t)
	pub.err = errors.New("bus down")

	resp, err := svc.Create(context.Background(), dto.CreateGraphRequest{Name: "Board"})
	require.NoError(t, err)
	assert.Equal(t, dto.ID("g1"), resp.ID)
}

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediagraph/application/dto"
	"mediagraph/domain/core/valueobjects"
	appErrors "mediagraph/pkg/errors"
)

func newTestRepo(t *testing.T) *GraphRepository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGraphRepository_CreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := repo.Create(ctx, "g-b", "Films")
	require.NoError(t, err)
	assert.Equal(t, "Films", first.Name)
	_, err = repo.Create(ctx, "g-a", "Books")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "g-a", "Again")
	assert.True(t, appErrors.IsConflict(err))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, valueobjects.GraphID("g-b"), list[0].ID)
	assert.Equal(t, valueobjects.GraphID("g-a"), list[1].ID)
	assert.True(t, base.Add(time.Second).Equal(list[0].CreatedAt))
}

func TestGraphRepository_ListKeepsCreationOrderAcrossFractionalSeconds(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	stamps := []time.Time{
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 12, 0, 0, 100_000_000, time.UTC),
		time.Date(2024, 5, 1, 12, 0, 1, 0, time.UTC),
	}
	i := 0
	repo.now = func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}

	for _, id := range []valueobjects.GraphID{"whole", "fraction", "next"} {
		_, err := repo.Create(ctx, id, id.String())
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, valueobjects.GraphID("whole"), list[0].ID)
	assert.Equal(t, valueobjects.GraphID("fraction"), list[1].ID)
	assert.Equal(t, valueobjects.GraphID("next"), list[2].ID)
	assert.True(t, stamps[1].Equal(list[1].CreatedAt))
}

func TestGraphRepository_ReplaceAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "g1", "Films")
	require.NoError(t, err)

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, got.Nodes)
	assert.Empty(t, got.Edges)

	nodes := []dto.Node{
		{ID: "z", Kind: "zone", Data: dto.NodeData{Name: "Noir", Radius: 120}, Position: valueobjects.Position{X: 1, Y: 2}},
		{ID: "n1", Kind: "media", Data: dto.NodeData{Title: "Heat", Link: "http://heat", ImageURL: "http://heat.png"}, StackHint: 1},
	}
	edges := []dto.Edge{{ID: "n1-n1", Source: "n1", Target: "n1"}}

	updatedAt, err := repo.Replace(ctx, "g1", nodes, edges)
	require.NoError(t, err)
	assert.False(t, updatedAt.Before(created.CreatedAt))

	got, err = repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Films", got.Name)
	assert.Equal(t, nodes, got.Nodes)
	assert.Equal(t, edges, got.Edges)
	assert.True(t, got.UpdatedAt.Equal(updatedAt))
}

func TestGraphRepository_Missing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "nope")
	assert.True(t, appErrors.IsNotFound(err))

	_, err = repo.Replace(ctx, "nope", nil, nil)
	assert.True(t, appErrors.IsNotFound(err))
}

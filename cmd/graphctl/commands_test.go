package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediagraph/application/dto"
	querybus "mediagraph/application/queries/bus"
	queryhandlers "mediagraph/application/queries/handlers"
	"mediagraph/application/services"
	"mediagraph/domain/config"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/infrastructure/messaging/logging"
	"mediagraph/infrastructure/persistence/memory"
	"mediagraph/interfaces/http/rest"
)

func newStore(t *testing.T) (*httptest.Server, *services.GraphService) {
	t.Helper()
	logger := zap.NewNop()
	repo := memory.NewGraphRepository()
	qb := querybus.NewQueryBus()
	require.NoError(t, queryhandlers.Register(qb, repo))
	svc := services.NewGraphService(repo, logging.NewPublisher(logger), valueobjects.NewSequenceGenerator("g"), config.DefaultDomainConfig(), logger)

	server := httptest.NewServer(rest.NewRouter(svc, qb, nil, rest.Options{}, logger).Setup())
	t.Cleanup(server.Close)
	return server, svc
}

func run(t *testing.T, backend string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--backend", backend}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGraphctl_CreateListShow(t *testing.T) {
	server, svc := newStore(t)

	out, err := run(t, server.URL, "create", "Mood", "board")
	require.NoError(t, err)
	assert.Equal(t, "g1\n", out)

	_, err = svc.Replace(context.Background(), valueobjects.GraphID("g1"), dto.ReplaceGraphRequest{
		Nodes: []dto.Node{
			{ID: "a", Kind: dto.KindMedia, Data: dto.NodeData{Title: "Poster"}},
			{ID: "z", Kind: dto.KindZone, Data: dto.NodeData{Name: "Corner", Radius: 50}},
		},
		Edges: []dto.Edge{{Source: "a", Target: "z"}},
	})
	require.NoError(t, err)

	out, err = run(t, server.URL, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "g1")
	assert.Contains(t, out, "Mood board")

	out, err = run(t, server.URL, "show", "g1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Mood board (g1): 2 nodes, 1 edges", lines[0])
	assert.Contains(t, out, "Poster")
	assert.Contains(t, out, "Corner")
	assert.Contains(t, out, "a -> z")

	out, err = run(t, server.URL, "show", "g1", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Mood board"`)
}

func TestGraphctl_Errors(t *testing.T) {
	server, _ := newStore(t)

	_, err := run(t, server.URL, "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = run(t, server.URL, "create")
	require.Error(t, err)
}

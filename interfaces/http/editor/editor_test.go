package editor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediagraph/application/dto"
	"mediagraph/application/pipeline"
	"mediagraph/application/projection"
	querybus "mediagraph/application/queries/bus"
	queryhandlers "mediagraph/application/queries/handlers"
	"mediagraph/application/services"
	"mediagraph/application/session"
	"mediagraph/domain/config"
	"mediagraph/domain/core/valueobjects"
	"mediagraph/infrastructure/messaging/logging"
	"mediagraph/infrastructure/persistence/httpstore"
	"mediagraph/infrastructure/persistence/memory"
	"mediagraph/interfaces/http/rest"
)

type harness struct {
	store   *httptest.Server
	editor  *httptest.Server
	backend *httpstore.Client
	clock   *pipeline.ManualClock
	manager *Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()

	repo := memory.NewGraphRepository()
	qb := querybus.NewQueryBus()
	require.NoError(t, queryhandlers.Register(qb, repo))
	svc := services.NewGraphService(repo, logging.NewPublisher(logger), valueobjects.NewSequenceGenerator("g"), config.DefaultDomainConfig(), logger)
	store := httptest.NewServer(rest.NewRouter(svc, qb, nil, rest.Options{}, logger).Setup())
	t.Cleanup(store.Close)

	backend := httpstore.New(httpstore.DefaultConfig(store.URL), logger)
	clock := pipeline.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	manager := NewManager(backend, ManagerOptions{
		Clock:     clock,
		IDs:       valueobjects.NewSequenceGenerator("n"),
		Positions: valueobjects.NewFixedSampler(valueobjects.Position{X: 10, Y: 20}),
	}, nil, logger)

	editor := httptest.NewServer(NewRouter(manager, nil, RouterOptions{}, logger))
	t.Cleanup(editor.Close)
	t.Cleanup(func() { manager.CloseAll(context.Background()) })

	return &harness{store: store, editor: editor, backend: backend, clock: clock, manager: manager}
}

func (h *harness) do(t *testing.T, method, path, body string, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.editor.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestEditor_EditAndSave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.backend.Create(ctx, "Board")
	require.NoError(t, err)
	base := "/sessions/" + created.ID.String()

	var scene projection.Scene
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, base+"/scene", "", &scene))
	assert.Equal(t, "Board", scene.Name)
	assert.Empty(t, scene.Elements)

	var res CommandResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, base+"/nodes/media", `{"title":"A","link":"https://a.test"}`, &res))
	assert.True(t, res.Changed)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, base+"/nodes/media", `{"title":"B"}`, &res))
	assert.True(t, res.Changed)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, base+"/connect",
		`{"source":"n1","sourceHandle":"bottom","target":"n2","targetHandle":"top"}`, &res))
	assert.True(t, res.Changed)
	assert.Equal(t, valueobjects.EdgeID("n1-n2"), res.EdgeID)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, base+"/scene", "", &scene))
	require.Len(t, scene.Elements, 2)
	require.Len(t, scene.Connectors, 1)
	assert.Equal(t, projection.StrokeFresh, scene.Connectors[0].Style.Stroke)

	// Nothing is written until the quiet period has elapsed
	stored, err := h.backend.Fetch(ctx, valueobjects.GraphID(created.ID))
	require.NoError(t, err)
	assert.Empty(t, stored.Nodes)

	var status session.Status
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, base+"/status", "", &status))
	assert.True(t, status.Pending)

	h.clock.Advance(time.Second)

	stored, err = h.backend.Fetch(ctx, valueobjects.GraphID(created.ID))
	require.NoError(t, err)
	require.Len(t, stored.Nodes, 2)
	require.Len(t, stored.Edges, 1)
	assert.Equal(t, dto.Edge{ID: "n1-n2", Source: "n1", Target: "n2"}, stored.Edges[0])

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, base+"/status", "", &status))
	assert.False(t, status.Pending)
	require.NotNil(t, status.LastSaved)
	assert.Equal(t, 2, status.Nodes)
}

func TestEditor_SelectionAndRemoval(t *testing.T) {
	h := newHarness(t)
	created, err := h.backend.Create(context.Background(), "Board")
	require.NoError(t, err)
	base := "/sessions/" + created.ID.String()

	var res CommandResponse
	h.do(t, http.MethodPost, base+"/nodes/zone", `{"name":"Zone","radius":"120px"}`, &res)
	require.True(t, res.Changed)

	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, base+"/select", `{"id":"n1"}`, &res))
	assert.False(t, res.Changed)
	assert.Equal(t, valueobjects.NodeID("n1"), res.Selection)

	var scene projection.Scene
	h.do(t, http.MethodGet, base+"/scene", "", &scene)
	require.Len(t, scene.Elements, 1)
	assert.True(t, scene.Elements[0].Selected)
	assert.Equal(t, projection.ElementZoneCircle, scene.Elements[0].Type)

	var removed CommandResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodDelete, base+"/nodes/n1", "", &removed))
	assert.True(t, removed.Changed)
	assert.Empty(t, removed.Selection)

	var again CommandResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodDelete, base+"/nodes/n1", "", &again))
	assert.False(t, again.Changed)
}

func TestEditor_InvalidRequests(t *testing.T) {
	h := newHarness(t)
	created, err := h.backend.Create(context.Background(), "Board")
	require.NoError(t, err)
	base := "/sessions/" + created.ID.String()

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, base+"/move", `{"position":{"x":1,"y":2}}`, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, base+"/connect", `{"source":"a","target":"b","sourceHandle":"middle"}`, nil))
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, base+"/nodes/media", `{"title":`, nil))

	var res CommandResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, base+"/connect", `{"source":"a","target":"b"}`, &res))
	assert.False(t, res.Changed)
	assert.Equal(t, "rejected", string(res.Outcome))
}

func TestEditor_LoadFailureLeavesEmptySession(t *testing.T) {
	h := newHarness(t)

	var status session.Status
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/sessions/missing/status", "", &status))
	assert.Equal(t, valueobjects.GraphID("missing"), status.GraphID)
	assert.NotEmpty(t, status.LoadError)
	assert.Equal(t, 0, status.Nodes)

	var res CommandResponse
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/sessions/missing/nodes/media", `{"title":"A"}`, &res))
	assert.True(t, res.Changed)
}

func TestEditor_CloseCancelsPendingSave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.backend.Create(ctx, "Board")
	require.NoError(t, err)
	base := "/sessions/" + created.ID.String()

	h.do(t, http.MethodPost, base+"/nodes/media", `{"title":"A"}`, nil)
	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, base, "", nil))
	assert.Equal(t, 0, h.manager.Count())

	h.clock.Advance(5 * time.Second)

	stored, err := h.backend.Fetch(ctx, valueobjects.GraphID(created.ID))
	require.NoError(t, err)
	assert.Empty(t, stored.Nodes)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodDelete, base, "", nil))
}

func TestEditor_EventStream(t *testing.T) {
	h := newHarness(t)
	created, err := h.backend.Create(context.Background(), "Board")
	require.NoError(t, err)
	base := "/sessions/" + created.ID.String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.editor.URL+base+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() projection.Scene {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				var scene projection.Scene
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &scene))
				return scene
			}
		}
	}

	// The current scene arrives on connect
	first := next()
	assert.Equal(t, "Board", first.Name)
	assert.Empty(t, first.Elements)

	h.do(t, http.MethodPost, base+"/nodes/media", `{"title":"A"}`, nil)

	second := next()
	require.Len(t, second.Elements, 1)
	assert.Equal(t, projection.ElementMediaCard, second.Elements[0].Type)
}

func TestEditor_FlushOnCloseReportsSaveFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.backend.Create(ctx, "Board")
	require.NoError(t, err)

	manager := NewManager(h.backend, ManagerOptions{
		FlushOnClose: true,
		Clock:        h.clock,
		IDs:          valueobjects.NewSequenceGenerator("n"),
		Positions:    valueobjects.NewFixedSampler(valueobjects.Position{}),
	}, nil, zap.NewNop())
	flushing := httptest.NewServer(NewRouter(manager, nil, RouterOptions{}, zap.NewNop()))
	t.Cleanup(flushing.Close)

	base := flushing.URL + "/sessions/" + created.ID.String()
	resp, err := http.Post(base+"/nodes/media", "application/json", strings.NewReader(`{"title":"A"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	h.store.Close()

	req, err := http.NewRequest(http.MethodDelete, base, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "GRAPH_SAVE_FAILED", body["code"])
	assert.Equal(t, created.ID.String(), body["graphId"])
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, 0, manager.Count())
}

func TestEditor_UnknownRoute(t *testing.T) {
	h := newHarness(t)

	var body map[string]interface{}
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/sessions/g1/nope", "", &body))
	assert.Equal(t, "ROUTE_NOT_FOUND", body["code"])
}

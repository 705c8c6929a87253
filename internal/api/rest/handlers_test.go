package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/wicket/internal/scheduler"
	"github.com/fortuna/wicket/internal/store"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) Status() scheduler.Status {
	args := m.Called()
	return args.Get(0).(scheduler.Status)
}

func (m *mockController) RefreshMatchList(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockMatchReader struct {
	mock.Mock
}

func (m *mockMatchReader) GetMatchList(ctx context.Context) ([]*store.Match, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*store.Match), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchReader) GetMatch(ctx context.Context, matchID string) (*store.Match, error) {
	args := m.Called(ctx, matchID)
	if v := args.Get(0); v != nil {
		return v.(*store.Match), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchReader) GetMatchData(ctx context.Context, matchID string) (*store.MatchData, error) {
	args := m.Called(ctx, matchID)
	if v := args.Get(0); v != nil {
		return v.(*store.MatchData), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchReader) GetLatestSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind) (*store.Snapshot, error) {
	args := m.Called(ctx, matchID, kind)
	if v := args.Get(0); v != nil {
		return v.(*store.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchReader) GetSnapshotHistory(ctx context.Context, matchID string, kind store.SnapshotKind, limit int) ([]*store.Snapshot, error) {
	args := m.Called(ctx, matchID, kind, limit)
	if v := args.Get(0); v != nil {
		return v.([]*store.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchReader) GetStorageStats(ctx context.Context) (*store.StorageStats, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*store.StorageStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetLatestSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind) (json.RawMessage, error) {
	args := m.Called(ctx, matchID, kind)
	if v := args.Get(0); v != nil {
		return v.(json.RawMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCache) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestServer(ctrl *mockController, reader *mockMatchReader, cache SnapshotCache) *httptest.Server {
	handler := NewHandler(ctrl, reader, cache, nil)
	return httptest.NewServer(NewRouter(handler))
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestGetStatus(t *testing.T) {
	ctrl := &mockController{}
	reader := &mockMatchReader{}

	ctrl.On("Status").Return(scheduler.Status{
		Running:        true,
		MatchCount:     3,
		ActiveTrackers: []string{"m1", "m2"},
		CountsByStatus: map[store.MatchStatus]int{store.StatusLive: 2, store.StatusUpcoming: 1},
	})
	reader.On("GetStorageStats", mock.Anything).Return(&store.StorageStats{TotalMatches: 3}, nil)

	ts := newTestServer(ctrl, reader, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Scheduler scheduler.Status    `json:"scheduler"`
		Storage   *store.StorageStats `json:"storage"`
	}
	decode(t, resp, &body)
	assert.True(t, body.Scheduler.Running)
	assert.Equal(t, []string{"m1", "m2"}, body.Scheduler.ActiveTrackers)
	assert.Equal(t, 3, body.Storage.TotalMatches)
}

func TestGetMatches(t *testing.T) {
	ctrl := &mockController{}
	reader := &mockMatchReader{}
	reader.On("GetMatchList", mock.Anything).Return([]*store.Match{
		{ID: "m1", Teams: "India vs Australia", Status: store.StatusLive, ScheduledStart: time.Now()},
	}, nil)

	ts := newTestServer(ctrl, reader, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/matches")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Matches []*store.Match `json:"matches"`
		Count   int            `json:"count"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "m1", body.Matches[0].ID)
}

func TestGetMatchDataPrefersCachedLive(t *testing.T) {
	ctrl := &mockController{}
	reader := &mockMatchReader{}
	cache := &mockCache{}

	stale := json.RawMessage(`{"score":"IND 50/1"}`)
	cached := json.RawMessage(`{"score":"IND 112/3"}`)

	reader.On("GetMatchData", mock.Anything, "m1").Return(&store.MatchData{
		Match: &store.Match{ID: "m1", Status: store.StatusLive},
		Live:  stale,
	}, nil)
	cache.On("GetLatestSnapshot", mock.Anything, "m1", store.KindLive).Return(cached, nil)

	ts := newTestServer(ctrl, reader, cache)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/matches/m1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body store.MatchData
	decode(t, resp, &body)
	assert.JSONEq(t, string(cached), string(body.Live))
}

func TestGetMatchDataNotFound(t *testing.T) {
	ctrl := &mockController{}
	reader := &mockMatchReader{}
	reader.On("GetMatchData", mock.Anything, "nope").Return(nil, errors.New("match not found: nope"))

	ts := newTestServer(ctrl, reader, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/matches/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSnapshot(t *testing.T) {
	ctrl := &mockController{}
	reader := &mockMatchReader{}
	reader.On("GetLatestSnapshot", mock.Anything, "m1", store.KindScorecard).Return(&store.Snapshot{
		MatchID: "m1",
		Kind:    store.KindScorecard,
		Payload: json.RawMessage(`{"innings":[]}`),
	}, nil)

	ts := newTestServer(ctrl, reader, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/matches/m1/snapshots/scorecard")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap store.Snapshot
	decode(t, resp, &snap)
	assert.Equal(t, store.KindScorecard, snap.Kind)
}

func TestGetSnapshotInvalidKind(t *testing.T) {
	ts := newTestServer(&mockController{}, &mockMatchReader{}, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/matches/m1/snapshots/boxscore")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSnapshotHistory(t *testing.T) {
	ctrl := &mockController{}
	reader := &mockMatchReader{}
	reader.On("GetSnapshotHistory", mock.Anything, "m1", store.KindLive, 5).Return([]*store.Snapshot{
		{MatchID: "m1", Kind: store.KindLive},
		{MatchID: "m1", Kind: store.KindLive},
	}, nil)

	ts := newTestServer(ctrl, reader, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/matches/m1/snapshots/live?history=5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 2, body.Count)
	reader.AssertExpectations(t)
}

func TestTriggerRefresh(t *testing.T) {
	ctrl := &mockController{}
	reader := &mockMatchReader{}
	ctrl.On("RefreshMatchList", mock.Anything).Return(nil)
	ctrl.On("Status").Return(scheduler.Status{Running: true, MatchCount: 4})

	ts := newTestServer(ctrl, reader, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ctrl.AssertExpectations(t)
}

func TestTriggerRefreshFailure(t *testing.T) {
	ctrl := &mockController{}
	ctrl.On("RefreshMatchList", mock.Anything).Return(errors.New("listing unreachable"))

	ts := newTestServer(ctrl, &mockMatchReader{}, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

package scheduler

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/fortuna/wicket/internal/extract"
	"github.com/fortuna/wicket/internal/store"
)

// mock.Mock fakes for every boundary the scheduler consumes.

type mockStore struct {
	mock.Mock
}

func (m *mockStore) PutMatchList(ctx context.Context, matches []*store.Match) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

func (m *mockStore) GetMatchList(ctx context.Context) ([]*store.Match, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*store.Match), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) PutMatchStatus(ctx context.Context, matchID string, status store.MatchStatus) error {
	args := m.Called(ctx, matchID, status)
	return args.Error(0)
}

func (m *mockStore) PutSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error {
	args := m.Called(ctx, matchID, kind, payload)
	return args.Error(0)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) DiscoverMatches(ctx context.Context) ([]extract.DiscoveredMatch, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]extract.DiscoveredMatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockExtractor) Open(ctx context.Context, url string) (Session, error) {
	args := m.Called(ctx, url)
	if v := args.Get(0); v != nil {
		return v.(Session), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Fetch(ctx context.Context, kind store.SnapshotKind) (json.RawMessage, error) {
	args := m.Called(ctx, kind)
	if v := args.Get(0); v != nil {
		return v.(json.RawMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSession) IsEnded(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error {
	args := m.Called(ctx, matchID, kind, payload)
	return args.Error(0)
}

func (m *mockPublisher) PublishStatusChange(ctx context.Context, matchID string, status store.MatchStatus) error {
	args := m.Called(ctx, matchID, status)
	return args.Error(0)
}

package main

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/adapters/config"
	"savewise/internal/domain/prediction"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// memStore is an in-memory RemoteStore, newest first
type memStore struct {
	mu      sync.Mutex
	records []prediction.Record
	nextID  int
	pingErr error
	echo    bool
}

func newMemStore() *memStore { return &memStore{echo: true} }

func (m *memStore) Name() string { return "mem" }

func (m *memStore) Create(ctx context.Context, rec *prediction.Record) (*prediction.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.echo {
		return nil, nil
	}
	m.nextID++
	stored := *rec
	stored.ID = strconv.Itoa(m.nextID)
	m.records = append([]prediction.Record{stored}, m.records...)
	return &stored, nil
}

func (m *memStore) List(ctx context.Context) ([]prediction.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]prediction.Record(nil), m.records...), nil
}

func (m *memStore) Latest(ctx context.Context) (*prediction.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return nil, errors.ErrNotFound
	}
	rec := m.records[0]
	return &rec, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return errors.ErrNotFound
}

func (m *memStore) Ping(ctx context.Context) error { return m.pingErr }

func TestRunRoundTrip(t *testing.T) {
	store := newMemStore()
	require.NoError(t, run(context.Background(), store, false, logger.NewNop()))
	assert.Empty(t, store.records)
}

func TestRunKeepsProbe(t *testing.T) {
	store := newMemStore()
	require.NoError(t, run(context.Background(), store, true, logger.NewNop()))
	require.Len(t, store.records, 1)
	assert.Contains(t, store.records[0].Input.Occupation, "storecheck-")
}

func TestRunFailures(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		store := newMemStore()
		store.pingErr = errors.ErrUnavailable
		err := run(context.Background(), store, false, logger.NewNop())
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
	})

	t.Run("unconfirmed create", func(t *testing.T) {
		store := newMemStore()
		store.echo = false
		err := run(context.Background(), store, false, logger.NewNop())
		assert.True(t, errors.Is(err, errors.ErrNoConfirmation))
	})
}

func TestOpenStoreRejectsNone(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Provider: config.ProviderNone}}
	_, closeFn, err := openStore(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	closeFn()
}

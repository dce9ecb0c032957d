package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), SQLiteOptions{
		Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		TTL:  ttl,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	runStoreContract(t, openTestSQLite(t, time.Hour))
}

func TestSQLiteStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	id := profile.NewID()
	require.NoError(t, s.Put(ctx, id, profile.KeyCart, []byte(`{}`)))

	now = now.Add(2 * time.Minute)
	_, found, err := s.Get(ctx, id, profile.KeyCart)
	require.NoError(t, err)
	assert.False(t, found)

	purged, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profiles.db")
	id := profile.NewID()

	first, err := OpenSQLite(ctx, SQLiteOptions{Path: path, TTL: time.Hour})
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, id, profile.KeyAuth, []byte(`{"isAuthenticated":true}`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, SQLiteOptions{Path: path, TTL: time.Hour})
	require.NoError(t, err)
	defer second.Close()

	v, found, err := second.Get(ctx, id, profile.KeyAuth)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"isAuthenticated":true}`, string(v))
	assert.NoError(t, second.Ping(ctx))
}

func TestNew_Drivers(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.StoreConfig{Driver: DriverMemory, TTL: time.Hour}, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(ctx, config.StoreConfig{Driver: DriverRedis}, Deps{})
	assert.Error(t, err, "redis driver without a client")

	_, err = New(ctx, config.StoreConfig{Driver: "etcd"}, Deps{})
	assert.Error(t, err)

	s, err = New(ctx, config.StoreConfig{
		Driver:     DriverSQLite,
		TTL:        time.Hour,
		SQLitePath: filepath.Join(t.TempDir(), "s.db"),
	}, Deps{})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	assert.NoError(t, s.Close())
}

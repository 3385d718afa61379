package pending

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/statestore"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testRegistration() Registration {
	return Registration{
		User:   models.User{ID: "u-1", Email: "ann@example.com", Plan: models.PlanFree},
		Tokens: models.Tokens{AccessToken: "access", RefreshToken: "refresh"},
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	mem := statestore.NewMemory(nil)
	store := New(mem, newNoopLogger())
	ctx := context.Background()

	_, ok := store.Load(ctx)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, testRegistration()))

	reg, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, testRegistration().User, reg.User)
	assert.Equal(t, testRegistration().Tokens, reg.Tokens)
	assert.Positive(t, reg.SavedAt)
	assert.True(t, store.Exists(ctx))

	require.NoError(t, store.Clear(ctx))
	assert.False(t, store.Exists(ctx))
	assert.False(t, mem.Has(UserKey))
	assert.False(t, mem.Has(FlagKey))

	// повторная очистка безопасна
	assert.NoError(t, store.Clear(ctx))
}

func TestStore_RequiresBothParts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(m *statestore.MemoryStore)
	}{
		{
			name: "only user snapshot",
			setup: func(m *statestore.MemoryStore) {
				require.NoError(t, m.Set(ctx, UserKey, testRegistration(), 0))
			},
		},
		{
			name: "only flag",
			setup: func(m *statestore.MemoryStore) {
				require.NoError(t, m.Set(ctx, FlagKey, true, 0))
			},
		},
		{
			name: "flag false",
			setup: func(m *statestore.MemoryStore) {
				require.NoError(t, m.Set(ctx, UserKey, testRegistration(), 0))
				require.NoError(t, m.Set(ctx, FlagKey, false, 0))
			},
		},
		{
			name: "no saved_at",
			setup: func(m *statestore.MemoryStore) {
				require.NoError(t, m.Set(ctx, UserKey, testRegistration(), 0))
				require.NoError(t, m.Set(ctx, FlagKey, true, 0))
			},
		},
		{
			name: "corrupted snapshot",
			setup: func(m *statestore.MemoryStore) {
				m.SetRaw(UserKey, []byte("not json"), 0)
				require.NoError(t, m.Set(ctx, FlagKey, true, 0))
			},
		},
		{
			name: "corrupted flag",
			setup: func(m *statestore.MemoryStore) {
				require.NoError(t, m.Set(ctx, UserKey, testRegistration(), 0))
				m.SetRaw(FlagKey, []byte(`"yes"`), 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := statestore.NewMemory(nil)
			tt.setup(mem)

			store := New(mem, newNoopLogger())
			_, ok := store.Load(ctx)
			assert.False(t, ok)
			assert.False(t, store.Exists(ctx))
		})
	}
}

func TestIsExpired(t *testing.T) {
	saved := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := Registration{SavedAt: saved.UnixMilli()}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "just saved", now: saved, want: false},
		{name: "before ttl", now: saved.Add(time.Hour - time.Millisecond), want: false},
		{name: "at ttl", now: saved.Add(time.Hour), want: true},
		{name: "long abandoned", now: saved.Add(30 * 24 * time.Hour), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpired(reg, tt.now, time.Hour))
		})
	}

	assert.True(t, IsExpired(Registration{}, saved, time.Hour))
}

func TestStore_ExpiredRecordIsDeletedOnRead(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	// хранилище без собственного срока, чтобы проверить именно чтение
	mem := statestore.NewMemory(func() time.Time { return time.Time{} })
	store := New(mem, newNoopLogger(), WithClock(clock), WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRegistration()))
	assert.Equal(t, time.Hour, store.TTL())

	now = now.Add(59 * time.Minute)
	assert.True(t, store.Exists(ctx))

	now = now.Add(time.Minute)
	assert.False(t, store.Exists(ctx))
	assert.False(t, mem.Has(UserKey))
	assert.False(t, mem.Has(FlagKey))
}

package statestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func TestMemory_SetGetInvalidate(t *testing.T) {
	store := NewMemory(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", testStruct{Name: "Bob", Age: 3}, 0))

	var out testStruct
	found, err := store.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Bob", out.Name)

	require.NoError(t, store.Invalidate(ctx, "k"))
	require.NoError(t, store.Invalidate(ctx, "k"))
	assert.False(t, store.Has("k"))
}

func TestMemory_Expiration(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	store := NewMemory(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", 1, time.Minute))

	clock.t = clock.t.Add(59 * time.Second)
	var out int
	found, err := store.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)

	clock.t = clock.t.Add(time.Second)
	found, err = store.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, store.Has("k"))
}

func TestMemory_Corrupted(t *testing.T) {
	store := NewMemory(nil)
	store.SetRaw("bad", []byte("{"), 0)

	var out testStruct
	found, err := store.Get(context.Background(), "bad", &out)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestNamespace_PrefixAndDefaultTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	store := NewMemory(clock.Now)
	ctx := context.Background()

	session := SessionNamespace(store, "sid-1", time.Hour)
	device := DeviceNamespace(store, "did-1")

	require.NoError(t, session.Set(ctx, "grace_period", 1, 0))
	require.NoError(t, device.Set(ctx, "auth_tokens", 2, 0))

	assert.True(t, store.Has("session:sid-1:grace_period"))
	assert.True(t, store.Has("device:did-1:auth_tokens"))
	assert.Equal(t, "session:sid-1:grace_period", session.Key("grace_period"))

	// другая сессия того же устройства ничего не видит
	var out int
	found, err := SessionNamespace(store, "sid-2", time.Hour).Get(ctx, "grace_period", &out)
	require.NoError(t, err)
	assert.False(t, found)

	clock.t = clock.t.Add(2 * time.Hour)
	found, err = session.Get(ctx, "grace_period", &out)
	require.NoError(t, err)
	assert.False(t, found, "session keys expire with the session ttl")

	found, err = device.Get(ctx, "auth_tokens", &out)
	require.NoError(t, err)
	assert.True(t, found, "device keys have no ttl")
	assert.Equal(t, 2, out)
}

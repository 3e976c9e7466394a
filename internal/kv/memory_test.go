package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v1"))
	require.NoError(t, m.Set(ctx, "k", "v2"))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, m.Remove(ctx, "k"))
	require.NoError(t, m.Remove(ctx, "k"), "removing an absent key is not an error")
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_FailWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", "v"))

	m.FailWrites(true)
	assert.ErrorIs(t, m.Set(ctx, "k", "other"), ErrUnavailable)
	assert.ErrorIs(t, m.Remove(ctx, "k"), ErrUnavailable)

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "reads keep working")
	assert.Equal(t, "v", v)

	m.FailWrites(false)
	assert.NoError(t, m.Set(ctx, "k", "other"))
}

func TestShared_IsProcessWide(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}

func TestScreenKey(t *testing.T) {
	assert.Equal(t, "screen-482913", ScreenKey("482913"))
}

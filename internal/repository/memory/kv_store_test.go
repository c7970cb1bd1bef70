package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()

	_, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "cart", `{"lines":[]}`))
	require.NoError(t, s.Set(ctx, "cart", `{"lines":[1]}`))

	v, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"lines":[1]}`, v)

	require.NoError(t, s.Remove(ctx, "cart"))
	require.NoError(t, s.Remove(ctx, "cart"))
	_, ok, err = s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

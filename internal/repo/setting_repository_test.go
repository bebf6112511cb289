package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRepository_SetIfAbsent_Idempotent(t *testing.T) {
	db := newTestDB(t)
	r := NewSettingRepository(db)
	ctx := context.Background()

	created, err := r.SetIfAbsent(ctx, "recipe_manager_url", "https://tandoor.local")
	require.NoError(t, err)
	assert.True(t, created)

	// повторная — created=false, значение не перезаписано
	created, err = r.SetIfAbsent(ctx, "recipe_manager_url", "https://other.local")
	require.NoError(t, err)
	assert.False(t, created)

	v, ok, err := r.Get(ctx, "recipe_manager_url")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://tandoor.local", v)
}

func TestSettingRepository_SetOverwrites(t *testing.T) {
	db := newTestDB(t)
	r := NewSettingRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "password_min_length", "12"))
	require.NoError(t, r.Set(ctx, "password_min_length", "16"))

	v, ok, err := r.Get(ctx, "password_min_length")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "16", v)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "16", all["password_min_length"])

	_, ok, err = r.Get(ctx, "no-such-key")
	require.NoError(t, err)
	assert.False(t, ok)
}

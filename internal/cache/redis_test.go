package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func TestAsideReadsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)

	ctx := context.Background()
	fetches := 0
	fetch := func(dest *item) func() error {
		return func() error {
			fetches++
			dest.Name = "soup"
			return nil
		}
	}

	var first item
	require.NoError(t, Aside(ctx, rdb, RecipeKey("r1"), &first, time.Minute, fetch(&first)))
	var second item
	require.NoError(t, Aside(ctx, rdb, RecipeKey("r1"), &second, time.Minute, fetch(&second)))

	assert.Equal(t, 1, fetches)
	assert.Equal(t, "soup", second.Name)
	assert.True(t, mr.Exists("recipe:r1"))

	Invalidate(ctx, rdb, RecipeKey("r1"))
	assert.False(t, mr.Exists("recipe:r1"))
}

func TestAsideWithoutRedis(t *testing.T) {
	var dest item
	err := Aside(context.Background(), nil, "k", &dest, time.Minute, func() error {
		dest.Name = "direct"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", dest.Name)

	boom := errors.New("boom")
	err = Aside(context.Background(), nil, "k", &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	assert.NotNil(t, Connect(context.Background(), mr.Addr()))
	assert.NotNil(t, Connect(context.Background(), "redis://"+mr.Addr()+"/0"))

	_, err := NewClient("redis://%zz")
	assert.Error(t, err)

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, Connect(context.Background(), addr))
}

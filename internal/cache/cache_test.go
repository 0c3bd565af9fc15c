package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)

	type payload struct {
		Name string
		Size int64
	}

	require.NoError(t, c.Set("k", &payload{Name: "report.pdf", Size: 42}, time.Minute))

	var got payload
	require.NoError(t, c.Get("k", &got))
	assert.Equal(t, "report.pdf", got.Name)
	assert.EqualValues(t, 42, got.Size)

	require.NoError(t, c.Delete("k"))
	assert.Error(t, c.Get("k", &got))
}

func TestFetch_LoadsOnMiss(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)

	calls := 0
	load := func() (string, error) {
		calls++
		return "value", nil
	}

	v, err := Fetch(c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = Fetch(c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls, "second fetch should hit the cache")
}

func TestFetch_PropagatesLoaderError(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)

	boom := errors.New("boom")
	_, err := Fetch(c, "k", time.Minute, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

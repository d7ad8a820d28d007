package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_GetOrSet(t *testing.T) {
	cs := NewCacheService()
	defer cs.Close()

	calls := 0
	fn := func() (interface{}, error) {
		calls++
		return "value", nil
	}

	v, err := cs.GetOrSet(context.Background(), "midwife_search:10115:30", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = cs.GetOrSet(context.Background(), "midwife_search:10115:30", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls)
}

func TestCacheService_ErrorsAreNotCached(t *testing.T) {
	cs := NewCacheService()
	defer cs.Close()

	_, err := cs.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)

	_, found := cs.Get("k")
	assert.False(t, found)
}

func TestCacheService_Expiry(t *testing.T) {
	cs := NewCacheService()
	defer cs.Close()

	cs.Set("k", 1, -time.Second)
	_, found := cs.Get("k")
	assert.False(t, found)

	cs.purgeExpired(time.Now())
	assert.Equal(t, 0, cs.Len())
}

func TestCacheService_InvalidateByPrefix(t *testing.T) {
	cs := NewCacheService()
	defer cs.Close()

	cs.Set("midwife_search:10115:30", 1, time.Minute)
	cs.Set("midwife_search:80331:50", 2, time.Minute)
	cs.Set("other", 3, time.Minute)

	cs.InvalidateByPrefix("midwife_search:")

	assert.Equal(t, 1, cs.Len())
	_, found := cs.Get("other")
	assert.True(t, found)
}

package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Insert(t *testing.T) {
	c := New[string](3)
	require.NoError(t, c.Insert("A", "valueA", 1))
	require.NoError(t, c.Insert("B", "valueB", 1))
	require.NoError(t, c.Insert("C", "valueC", 1))
	assert.Equal(t, 3, c.Weight())
	assert.Equal(t, 3, c.Budget())
	assert.Equal(t, 3, c.Len())

	assert.Equal(t, ErrKeyExists, c.Insert("A", "other", 1))
	v, ok := c.Retrieve("A")
	require.True(t, ok)
	assert.Equal(t, "valueA", v)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)
	require.NoError(t, c.Insert("evicted", 0, 1))
	require.NoError(t, c.Insert("A", 1, 1))
	require.NoError(t, c.Insert("B", 2, 1))
	assert.Equal(t, 2, c.Weight())

	_, ok := c.Retrieve("evicted")
	assert.False(t, ok)
	_, ok = c.Retrieve("A")
	assert.True(t, ok)
	_, ok = c.Retrieve("B")
	assert.True(t, ok)
}

func TestCache_EvictsLeastRecentlyRetrieved(t *testing.T) {
	c := New[int](2)
	require.NoError(t, c.Insert("A", 1, 1))
	require.NoError(t, c.Insert("B", 2, 1))

	_, ok := c.Retrieve("A")
	require.True(t, ok)
	require.NoError(t, c.Insert("C", 3, 1))

	_, ok = c.Retrieve("B")
	assert.False(t, ok)
	_, ok = c.Retrieve("A")
	assert.True(t, ok)
	_, ok = c.Retrieve("C")
	assert.True(t, ok)
}

func TestCache_HeavyEntry(t *testing.T) {
	c := New[int](2)
	require.NoError(t, c.Insert("A", 1, 1))

	// An entry heavier than the budget evicts everything, itself included.
	require.NoError(t, c.Insert("B", 2, 3))
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Weight())

	require.NoError(t, c.Insert("C", 3, 1))
	v, ok := c.Retrieve("C")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestCache_Clear(t *testing.T) {
	c := New[string](1)
	require.NoError(t, c.Insert("cleared", "value", 1))
	c.Clear()

	_, ok := c.Retrieve("cleared")
	assert.False(t, ok)
	assert.Zero(t, c.Weight())
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int](64)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("%d-%d", worker, i)
				_ = c.Insert(key, i, 1)
				c.Retrieve(key)
			}
		}(worker)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Weight(), 64)
	assert.Equal(t, c.Weight(), c.Len())
}

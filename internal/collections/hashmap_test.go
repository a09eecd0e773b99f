// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package collections

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashmapPreservesInsertionOrder(t *testing.T) {
	require := require.New(t)

	h := NewHashmap[string, int]()
	h.Put("x", 1)
	h.Put("y", 2)
	h.Put("z", 3)

	var keys []string
	h.Iterate(func(k string, v int) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal([]string{"x", "y", "z"}, keys)

	oldest, ok := h.OldestKey()
	require.True(ok)
	require.Equal("x", oldest)
}

func TestHashmapDeleteMidList(t *testing.T) {
	require := require.New(t)

	h := NewHashmap[int, string]()
	h.Put(1, "a")
	h.Put(2, "b")
	h.Put(3, "c")

	h.Delete(2)
	require.Equal(2, h.Len())

	var keys []int
	h.Iterate(func(k int, v string) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal([]int{1, 3}, keys)

	_, ok := h.Get(2)
	require.False(ok)
}

func TestHashmapUpdateKeepsPosition(t *testing.T) {
	require := require.New(t)

	h := NewHashmap[int, string]()
	h.Put(1, "a")
	h.Put(2, "b")
	h.Put(1, "updated")

	var keys []int
	h.Iterate(func(k int, v string) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal([]int{1, 2}, keys)

	v, ok := h.Get(1)
	require.True(ok)
	require.Equal("updated", v)
}

func TestHashmapIterateEarlyStop(t *testing.T) {
	require := require.New(t)

	h := NewHashmap[int, int]()
	for i := 0; i < 5; i++ {
		h.Put(i, i*i)
	}

	var seen []int
	h.Iterate(func(k, v int) bool {
		seen = append(seen, k)
		return k < 2
	})
	require.Equal([]int{0, 1, 2}, seen)
}

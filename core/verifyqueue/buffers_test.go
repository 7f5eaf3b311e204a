// Copyright 2024 The go-ferrite Authors
// This file is part of the go-ferrite library.
//
// The go-ferrite library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ferrite library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ferrite library. If not, see <http://www.gnu.org/licenses/>.

package verifyqueue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferrite-chain/go-ferrite/common"
)

func TestFIFOOrdering(t *testing.T) {
	var q fifo[int]
	require.True(t, q.empty())

	for i := 0; i < 5; i++ {
		q.pushBack(i)
	}
	require.Equal(t, 5, q.len())

	for i := 0; i < 5; i++ {
		v, ok := q.popFront()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.True(t, q.empty())
	_, ok := q.popFront()
	require.False(t, ok)
}

func TestFIFODrainAll(t *testing.T) {
	var q fifo[string]
	q.pushBack("a")
	q.pushBack("b")
	q.pushBack("c")

	got := q.drainAll()
	require.Equal(t, []string{"a", "b", "c"}, got)
	require.True(t, q.empty())
}

func TestFIFOShrinkPreservesOrder(t *testing.T) {
	var q fifo[int]
	for i := 0; i < 10; i++ {
		q.pushBack(i)
	}
	for i := 0; i < 7; i++ {
		q.popFront()
	}
	q.shrink()
	require.Equal(t, 3, q.len())
	require.Equal(t, 0, q.start)

	for i := 7; i < 10; i++ {
		v, ok := q.popFront()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestFIFORemoveWhere(t *testing.T) {
	var q fifo[int]
	for i := 0; i < 5; i++ {
		q.pushBack(i)
	}
	removed := q.removeWhere(func(v int) bool { return v == 2 })
	require.True(t, removed)
	require.Equal(t, []int{0, 1, 3, 4}, q.items())

	removed = q.removeWhere(func(v int) bool { return v == 99 })
	require.False(t, removed)
}

func TestBadSet(t *testing.T) {
	b := newBadSet()
	h := common.HexToHash("0x01")
	require.False(t, b.contains(h))
	b.insert(h)
	require.True(t, b.contains(h))
}

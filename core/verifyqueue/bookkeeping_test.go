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

func TestBookkeepingTotalDifficulty(t *testing.T) {
	b := newBookkeeping()
	parent := common.HexToHash("0xp")
	h1 := common.HexToHash("0x1")
	h2 := common.HexToHash("0x2")

	b.insert(h1, common.NewDifficulty(100), parent)
	b.insert(h2, common.NewDifficulty(31072), parent)
	require.Equal(t, uint64(31172), b.totalDifficulty().Uint64())

	require.False(t, b.removeMany([]common.Hash{h1}))
	require.Equal(t, uint64(31072), b.totalDifficulty().Uint64())

	require.True(t, b.removeMany([]common.Hash{h2}))
	require.True(t, b.totalDifficulty().IsZero())
}

func TestBookkeepingParentsDecrement(t *testing.T) {
	b := newBookkeeping()
	parent := common.HexToHash("0xp")
	h1 := common.HexToHash("0x1")
	h2 := common.HexToHash("0x2")

	b.insert(h1, common.NewDifficulty(1), parent)
	b.insert(h2, common.NewDifficulty(1), parent)
	require.Equal(t, 2, b.parents[parent])

	b.removeMany([]common.Hash{h1})
	require.Equal(t, 1, b.parents[parent])

	b.removeMany([]common.Hash{h2})
	_, present := b.parents[parent]
	require.False(t, present, "zero-valued parent entries must be absent, not zero")
}

func TestBookkeepingInsertRejectsDuplicate(t *testing.T) {
	b := newBookkeeping()
	parent := common.HexToHash("0xp")
	h := common.HexToHash("0x1")

	require.True(t, b.insert(h, common.NewDifficulty(10), parent))
	require.False(t, b.insert(h, common.NewDifficulty(10), parent))

	require.Equal(t, uint64(10), b.totalDifficulty().Uint64())
	require.Equal(t, 1, b.parents[parent])
}

func TestBookkeepingMarkAsGoodEmptyIsNoop(t *testing.T) {
	b := newBookkeeping()
	require.True(t, b.removeMany(nil))

	h := common.HexToHash("0x1")
	b.insert(h, common.NewDifficulty(5), common.Hash{})
	require.False(t, b.removeMany(nil))
	require.True(t, b.contains(h))
}

func TestBookkeepingClear(t *testing.T) {
	b := newBookkeeping()
	b.insert(common.HexToHash("0x1"), common.NewDifficulty(5), common.HexToHash("0xp"))
	b.clear()
	require.True(t, b.isEmpty())
	require.True(t, b.totalDifficulty().IsZero())
	require.Empty(t, b.parentHashes())
}

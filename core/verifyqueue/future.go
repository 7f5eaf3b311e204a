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
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ferrite-chain/go-ferrite/common"
)

// futureCacheSize bounds how many TemporarilyInvalid inputs (e.g.
// future-timestamped blocks) Import will remember for a caller to cheaply
// re-offer later. This supplements the distilled spec: it's the Go
// equivalent of the teacher's own future-block handling (an LRU of
// not-yet-valid blocks retried once their timestamp catches up), grounded
// in the golang-lru usage observed in the pack.
const futureCacheSize = 256

// futureCache remembers recently rejected TemporarilyInvalid inputs. It is
// purely a convenience for callers (e.g. a sync loop that wants to retry a
// future block without re-fetching it) — nothing in the pipeline's
// correctness depends on it, and entries are never promoted to bad.
type futureCache struct {
	cache *lru.Cache[common.Hash, Input]
}

func newFutureCache() *futureCache {
	c, _ := lru.New[common.Hash, Input](futureCacheSize)
	return &futureCache{cache: c}
}

func (f *futureCache) add(input Input) {
	f.cache.Add(input.Hash(), input)
}

// Take removes and returns a previously cached future input, if present.
func (f *futureCache) Take(hash common.Hash) (Input, bool) {
	v, ok := f.cache.Get(hash)
	if ok {
		f.cache.Remove(hash)
	}
	return v, ok
}

func (f *futureCache) clear() {
	f.cache.Purge()
}

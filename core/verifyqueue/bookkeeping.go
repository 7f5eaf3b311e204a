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
	"sync"

	"github.com/ferrite-chain/go-ferrite/common"
)

// processingEntry is what the processing map remembers about an in-flight
// item: just enough to undo its contribution to total_difficulty and
// processing_parents on acknowledgement.
type processingEntry struct {
	difficulty common.Difficulty
	parent     common.Hash
}

// bookkeeping holds the processing map, the processing-parents map, and the
// total-difficulty accumulator under a single mutex. The teacher's design
// note (§9) calls out a bug class in the split RwLock version — a
// read-then-relock race on the parents decrement — that only exists because
// the maps are separate locks; collapsing all three into one critical
// section removes the race entirely rather than papering over it, and is
// the Open Question resolution recorded in DESIGN.md.
type bookkeeping struct {
	mu         sync.Mutex
	processing map[common.Hash]processingEntry
	parents    map[common.Hash]int
	total      common.Difficulty
}

func newBookkeeping() *bookkeeping {
	return &bookkeeping{
		processing: make(map[common.Hash]processingEntry),
		parents:    make(map[common.Hash]int),
	}
}

func (b *bookkeeping) contains(hash common.Hash) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.processing[hash]
	return ok
}

// insert records hash as in-flight, unless it already is. It reports
// whether the insert happened: the check and the write share one critical
// section, so two goroutines racing to import the same hash can never both
// succeed (mirrors the original's `processing.insert(...).is_some()`
// check-and-set).
func (b *bookkeeping) insert(hash common.Hash, difficulty common.Difficulty, parent common.Hash) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.processing[hash]; ok {
		return false
	}
	b.processing[hash] = processingEntry{difficulty: difficulty, parent: parent}
	b.total = b.total.Add(difficulty)
	b.parents[parent]++
	return true
}

// removeLocked removes hash's bookkeeping entry; caller must hold b.mu.
func (b *bookkeeping) removeLocked(hash common.Hash) {
	entry, ok := b.processing[hash]
	if !ok {
		return
	}
	delete(b.processing, hash)
	b.total = b.total.Sub(entry.difficulty)
	if n := b.parents[entry.parent]; n <= 1 {
		delete(b.parents, entry.parent)
	} else {
		b.parents[entry.parent] = n - 1
	}
}

// removeMany acknowledges every hash (mark_as_good) and reports whether the
// processing set is now empty.
func (b *bookkeeping) removeMany(hashes []common.Hash) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range hashes {
		b.removeLocked(h)
	}
	return len(b.processing) == 0
}

func (b *bookkeeping) isEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.processing) == 0
}

func (b *bookkeeping) totalDifficulty() common.Difficulty {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// parentHashes returns a snapshot of every parent hash currently referenced
// by an in-flight item, used by IsProcessingFork.
func (b *bookkeeping) parentHashes() []common.Hash {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]common.Hash, 0, len(b.parents))
	for p := range b.parents {
		out = append(out, p)
	}
	return out
}

func (b *bookkeeping) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processing = make(map[common.Hash]processingEntry)
	b.parents = make(map[common.Hash]int)
	b.total = common.Difficulty{}
}

func (b *bookkeeping) shrink() {
	b.mu.Lock()
	defer b.mu.Unlock()
	compact := make(map[common.Hash]processingEntry, len(b.processing))
	for k, v := range b.processing {
		compact[k] = v
	}
	b.processing = compact
}

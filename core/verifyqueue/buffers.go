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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ferrite-chain/go-ferrite/common"
)

// fifo is a slice-backed FIFO queue, the Go stand-in for the teacher's
// VecDeque. Amortized O(1) push/pop; popped slots stay in the backing slice
// until shrink, which collect_garbage calls to bound memory (§4.6 step 1),
// compacts the live window into a fresh slice.
type fifo[T any] struct {
	buf   []T
	start int
}

func (q *fifo[T]) pushBack(v T) {
	q.buf = append(q.buf, v)
}

func (q *fifo[T]) len() int { return len(q.buf) - q.start }

func (q *fifo[T]) empty() bool { return q.len() == 0 }

// front returns the head element and whether the queue was non-empty.
func (q *fifo[T]) front() (T, bool) {
	var zero T
	if q.empty() {
		return zero, false
	}
	return q.buf[q.start], true
}

// popFront removes and returns the head element.
func (q *fifo[T]) popFront() (T, bool) {
	v, ok := q.front()
	if !ok {
		return v, false
	}
	q.buf[q.start] = *new(T) // drop the reference so it can be GC'd
	q.start++
	return v, true
}

// drainAll removes and returns every element, in FIFO order.
func (q *fifo[T]) drainAll() []T {
	out := q.buf[q.start:]
	q.buf = nil
	q.start = 0
	return out
}

func (q *fifo[T]) clear() {
	q.buf = nil
	q.start = 0
}

// shrink compacts the live window to the front of a freshly sized slice,
// the equivalent of VecDeque::shrink_to_fit.
func (q *fifo[T]) shrink() {
	n := q.len()
	if n == 0 {
		q.buf = nil
		q.start = 0
		return
	}
	compact := make([]T, n)
	copy(compact, q.buf[q.start:])
	q.buf = compact
	q.start = 0
}

// items returns the live window in FIFO order without copying; writes
// through the result change the queue (removeWhere below relies on this).
func (q *fifo[T]) items() []T {
	return q.buf[q.start:]
}

// removeWhere deletes the first element matching pred and reports whether
// one was found.
func (q *fifo[T]) removeWhere(pred func(T) bool) bool {
	items := q.items()
	for i, v := range items {
		if pred(v) {
			copy(items[i:], items[i+1:])
			q.buf = q.buf[:len(q.buf)-1]
			return true
		}
	}
	return false
}

// badSet is a concurrency-unsafe (caller locks) set of hashes known to be
// invalid, backed by mapset per the DOMAIN STACK wiring.
type badSet struct {
	set mapset.Set[common.Hash]
}

func newBadSet() badSet {
	return badSet{set: mapset.NewThreadUnsafeSet[common.Hash]()}
}

func (b *badSet) contains(h common.Hash) bool { return b.set.Contains(h) }
func (b *badSet) insert(h common.Hash)        { b.set.Add(h) }

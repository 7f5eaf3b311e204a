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

import "sync"

// poolState is either work(k) — workers with id < k are active, the rest
// sleep — or exit. The zero value is never used; callers always go through
// newPoolState.
type poolStateKind int

const (
	stateWork poolStateKind = iota
	stateExit
)

type poolState struct {
	mu   sync.Mutex
	cond *sync.Cond
	kind poolStateKind
	n    int // valid when kind == stateWork
}

func newPoolState(initial int) *poolState {
	s := &poolState{kind: stateWork, n: initial}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// setWork moves the pool to Work(n) and wakes every worker blocked on the
// state condition.
func (s *poolState) setWork(n int) {
	s.mu.Lock()
	s.kind = stateWork
	s.n = n
	s.mu.Unlock()
	s.cond.Broadcast()
}

// setExit moves the pool to Exit and wakes every worker blocked on the
// state condition.
func (s *poolState) setExit() {
	s.mu.Lock()
	s.kind = stateExit
	s.mu.Unlock()
	s.cond.Broadcast()
}

// active reports the current Work(k) value, or (0, false) if Exit.
func (s *poolState) active() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind == stateExit {
		return 0, false
	}
	return s.n, true
}

// waitForTurn blocks worker id until either it is within the active range
// or the pool is exiting, in which case it reports shouldExit == true.
func (s *poolState) waitForTurn(id int) (shouldExit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.kind == stateWork && id >= s.n {
		s.cond.Wait()
	}
	return s.kind == stateExit
}

// isExiting reports whether the pool has moved to Exit, without blocking.
func (s *poolState) isExiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind == stateExit
}

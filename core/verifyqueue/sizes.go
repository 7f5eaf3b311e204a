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

import "sync/atomic"

// sizes tracks the approximate heap footprint of items currently sitting in
// each of the three pipeline stages. Every field is updated under the same
// stage lock that guards the corresponding FIFO's membership (invariant 6),
// so readers outside that lock only ever see eventually-consistent values —
// queue_info is fine with that, nothing else reads these directly.
type sizes struct {
	unverified atomic.Uint64
	verifying  atomic.Uint64
	verified   atomic.Uint64
}

func (s *sizes) addUnverified(n int) { s.unverified.Add(uint64(n)) }
func (s *sizes) subUnverified(n int) { s.unverified.Add(^uint64(n - 1)) }
func (s *sizes) addVerifying(n int)  { s.verifying.Add(uint64(n)) }
func (s *sizes) subVerifying(n int)  { s.verifying.Add(^uint64(n - 1)) }
func (s *sizes) addVerified(n int)   { s.verified.Add(uint64(n)) }
func (s *sizes) subVerified(n int)   { s.verified.Add(^uint64(n - 1)) }

func (s *sizes) reset() {
	s.unverified.Store(0)
	s.verifying.Store(0)
	s.verified.Store(0)
}

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
	"sync/atomic"

	"github.com/ferrite-chain/go-ferrite/log"
)

// Opcode is the single message a Signal ever carries downstream.
type Opcode int

// BlockVerified is the only opcode a Signal ever sends: "the verified FIFO
// is non-empty, go drain it".
const BlockVerified Opcode = 1

// Signal is a one-shot "ready" notifier to the downstream consumer. It fires
// at most once per drain epoch (§4.5, invariant 7): only the goroutine that
// wins the signalled false→true CAS actually sends.
type Signal struct {
	signalled atomic.Bool
	deleting  *atomic.Bool
	ch        chan Opcode
}

// newSignal builds a Signal delivering on ch, sharing deleting with the
// owning Pipeline so shutdown can silence it.
func newSignal(ch chan Opcode, deleting *atomic.Bool) *Signal {
	return &Signal{ch: ch, deleting: deleting}
}

// setSync delivers BlockVerified with a blocking send if this call wins the
// CAS. No-op while deleting.
func (s *Signal) setSync() {
	if s.deleting.Load() {
		return
	}
	if s.signalled.CompareAndSwap(false, true) {
		s.ch <- BlockVerified
	}
}

// setAsync delivers BlockVerified without blocking the caller if this call
// wins the CAS; the send itself still has to reach the channel, so it is
// dispatched on its own goroutine the way the teacher's async IoChannel send
// behaves. No-op while deleting.
func (s *Signal) setAsync() {
	if s.deleting.Load() {
		return
	}
	if s.signalled.CompareAndSwap(false, true) {
		go func() {
			defer func() {
				// Close never closes the channel, so this send does not
				// panic in this package; the recover is defensive only.
				if r := recover(); r != nil {
					log.Debug("verifyqueue: dropped async ready signal", "panic", r)
				}
			}()
			s.ch <- BlockVerified
		}()
	}
}

// reset clears the one-shot latch, called by drain at the start of a new
// epoch.
func (s *Signal) reset() {
	s.signalled.Store(false)
}

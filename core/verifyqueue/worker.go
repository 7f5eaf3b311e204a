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
	"github.com/ferrite-chain/go-ferrite/common"
	"github.com/ferrite-chain/go-ferrite/log"
)

// worker is one long-lived OS-scheduled goroutine in the pool, coordinated
// by the shared poolState (§4.2). Verification is CPU-bound and must run in
// parallel across real cores, so workers are plain goroutines backed by
// GOMAXPROCS, never a cooperative scheduler trick.
type worker struct {
	id        int
	v         *verification
	adapter   KindAdapter
	engine    Engine
	state     *poolState
	signal    *Signal
	checkSeal bool
	metrics   *queueMetrics
}

func (w *worker) run() {
	log.Debug("verifier starting", "id", w.id)
	defer log.Debug("verifier exiting", "id", w.id)

	for {
		// 1. Gate on pool state.
		if w.state.waitForTurn(w.id) {
			return
		}

		// 2. Gate on work.
		w.v.unverifiedMu.Lock()
		if w.v.unverified.empty() {
			w.v.verifyingMu.Lock()
			verifyingEmpty := w.v.verifying.empty()
			w.v.verifyingMu.Unlock()
			if verifyingEmpty {
				w.v.emptyCond.Broadcast()
			}
		}
		for w.v.unverified.empty() {
			if w.state.isExiting() {
				w.v.unverifiedMu.Unlock()
				return
			}
			w.v.moreToVerify.Wait()
		}
		if w.state.isExiting() {
			w.v.unverifiedMu.Unlock()
			return
		}

		// 3. Claim one item: pop unverified, push a placeholder onto
		// verifying before releasing either lock.
		w.v.verifyingMu.Lock()
		item, ok := w.v.unverified.popFront()
		if !ok {
			// Raced with another worker under the same unverifiedMu hold;
			// cannot happen since we hold unverifiedMu continuously from
			// the emptiness check, but guard anyway rather than panic.
			w.v.verifyingMu.Unlock()
			w.v.unverifiedMu.Unlock()
			continue
		}
		w.v.sizes.subUnverified(item.Size())
		slot := &verifySlot{hash: item.Hash()}
		w.v.verifying.pushBack(slot)
		w.v.verifyingMu.Unlock()
		w.v.unverifiedMu.Unlock()

		// 4. Verify off the stage locks.
		out, err := w.adapter.Verify(item, w.engine, w.checkSeal)

		// 5. Commit the outcome.
		if err == nil {
			w.commitSuccess(slot, out)
		} else {
			w.commitFailure(slot, item.Hash())
		}
	}
}

func (w *worker) commitSuccess(slot *verifySlot, out Verified) {
	w.v.verifyingMu.Lock()
	slot.output = out
	w.v.sizes.addVerifying(out.Size())
	front, _ := w.v.verifying.front()
	isHead := front == slot
	if isHead {
		w.v.drainVerifying()
	}
	w.v.verifyingMu.Unlock()
	if w.metrics != nil {
		w.metrics.verified.Inc(1)
	}
	if isHead {
		w.signal.setSync()
	}
}

func (w *worker) commitFailure(slot *verifySlot, hash common.Hash) {
	w.v.verifyingMu.Lock()
	w.v.badMu.Lock()
	w.v.bad.insert(hash)
	w.v.badMu.Unlock()
	w.v.verifying.removeWhere(func(s *verifySlot) bool { return s == slot })

	front, ok := w.v.verifying.front()
	ready := ok && front.output != nil
	if ready {
		w.v.drainVerifying()
	}
	w.v.verifyingMu.Unlock()
	if w.metrics != nil {
		w.metrics.rejected.Inc(1)
	}
	if ready {
		w.signal.setSync()
	}
}

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

import "github.com/ferrite-chain/go-ferrite/log"

// Close tears down the worker pool cooperatively (§4.7). It clears the
// queue, silences the ready signal, moves the pool to Exit, and joins every
// worker. A verify() call already in flight is not cancelled — shutdown
// latency is bounded by the slowest in-progress verification (§5). Workers
// never recover from an adapter panic (§7): in Go that means an unrecovered
// panic in a worker goroutine takes the whole process down immediately,
// which is a stricter but faithful rendering of "a worker panic is fatal"
// than waiting for Close to observe it.
func (p *Pipeline) Close() {
	p.Clear()
	p.deleting.Store(true)
	p.state.setExit()

	// Push any worker currently blocked between its exit-check and its
	// condition wait past the race window: briefly touch unverifiedMu so a
	// worker parked on moreToVerify observes the state flip, then wake it.
	p.v.unverifiedMu.Lock()
	p.v.unverifiedMu.Unlock()
	p.v.moreToVerify.Broadcast()

	p.wg.Wait()
	log.Debug("verifyqueue: all verifiers joined")
}

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

// verifySlot is a commit slot in the verifying FIFO: it represents the
// order an item left unverified, not the work of verifying it. A worker
// pushes one with output == nil before it starts verifying, so head-of-line
// order is recorded at work-start (§3, "Verifying placeholder").
type verifySlot struct {
	hash   common.Hash
	output Verified
}

// verification holds the three stage FIFOs and the bad set, plus the locks
// and condition variables that guard them. All locks must be acquired in
// the order declared by the field order below (§4.3).
type verification struct {
	unverifiedMu sync.Mutex
	unverified   fifo[Unverified]
	moreToVerify *sync.Cond // tied to unverifiedMu
	emptyCond    *sync.Cond // tied to unverifiedMu; flush() waits on it

	verifyingMu sync.Mutex
	verifying   fifo[*verifySlot]

	verifiedMu sync.Mutex
	verified   fifo[Verified]

	badMu sync.Mutex
	bad   badSet

	sizes     sizes
	checkSeal bool
}

func newVerification(checkSeal bool) *verification {
	v := &verification{
		bad:       newBadSet(),
		checkSeal: checkSeal,
	}
	v.moreToVerify = sync.NewCond(&v.unverifiedMu)
	v.emptyCond = sync.NewCond(&v.unverifiedMu)
	return v
}

// drainVerifying pops contiguous completed placeholders off the head of
// verifying, discarding any whose parent is bad and otherwise appending to
// verified (§4.4). Caller must hold verifyingMu.
func (v *verification) drainVerifying() {
	v.verifiedMu.Lock()
	v.badMu.Lock()
	defer v.badMu.Unlock()
	defer v.verifiedMu.Unlock()

	removed, inserted := 0, 0
	for {
		slot, ok := v.verifying.front()
		if !ok || slot.output == nil {
			break
		}
		v.verifying.popFront()
		removed += slot.output.Size()
		if v.bad.contains(slot.output.ParentHash()) {
			v.bad.insert(slot.output.Hash())
		} else {
			inserted += slot.output.Size()
			v.verified.pushBack(slot.output)
		}
	}
	v.sizes.subVerifying(removed)
	v.sizes.addVerified(inserted)
}

// isEmpty reports whether all three stages are empty.
func (v *verification) isEmpty() bool {
	v.unverifiedMu.Lock()
	u := v.unverified.empty()
	v.unverifiedMu.Unlock()
	if !u {
		return false
	}

	v.verifyingMu.Lock()
	vg := v.verifying.empty()
	v.verifyingMu.Unlock()
	if !vg {
		return false
	}

	v.verifiedMu.Lock()
	defer v.verifiedMu.Unlock()
	return v.verified.empty()
}

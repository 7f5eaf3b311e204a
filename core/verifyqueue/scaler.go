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

// CollectGarbage is meant to be called once per host scheduler tick (e.g.
// from a time.Ticker in the caller). It shrinks the backing storage of the
// three stage FIFOs and the processing map, then — if scaling is enabled —
// periodically re-targets the active verifier count based on load (§4.6).
func (p *Pipeline) CollectGarbage() {
	p.v.unverifiedMu.Lock()
	p.v.unverified.shrink()
	uLen := p.v.unverified.len()
	p.v.unverifiedMu.Unlock()

	p.v.verifyingMu.Lock()
	p.v.verifying.shrink()
	p.v.verifyingMu.Unlock()

	p.v.verifiedMu.Lock()
	p.v.verified.shrink()
	vLen := p.v.verified.len()
	p.v.verifiedMu.Unlock()

	p.book.shrink()

	if !p.scaleVerifiers {
		return
	}

	if p.ticksSinceAdjustment.Add(1) < uint64(p.readjustmentPeriod) {
		return
	}
	p.ticksSinceAdjustment.Store(0)

	current := p.NumVerifiers()

	u, v := int64(uLen), int64(vLen)
	diff := v - u
	if diff < 0 {
		diff = -diff
	}
	total := v + u

	var target int
	switch {
	case uLen < 20:
		target = 1
	case diff <= total/10:
		target = current
	case v > u:
		target = current - 1
	default:
		target = current + 1
	}
	p.rescale(target)
}

// rescale wakes or sleeps workers to get as close to target as
// possible, clamped to [1, pool size] (§4.6 step 5).
func (p *Pipeline) rescale(target int) {
	current := p.NumVerifiers()
	if target > p.poolSize {
		target = p.poolSize
	}
	if target < 1 {
		target = 1
	}

	log.Debug("verifyqueue: scaling verifiers", "from", current, "to", target)
	p.state.setWork(target)
	if p.metrics != nil {
		p.metrics.updateActiveVerifiers(target)
	}
}

// ScaleVerifiers exposes rescale for callers (and tests) that want
// to force a specific active worker count directly, e.g. to exercise the
// clamping behaviour in seed scenario 5.
func (p *Pipeline) ScaleVerifiers(target int) {
	p.rescale(target)
}

// SetReadjustmentPeriod overrides the number of CollectGarbage ticks between
// scaling decisions; cmd/verifyqueued sets it from its ReadjustPeriod config
// option. It is not synchronised with a concurrent CollectGarbage call.
func (p *Pipeline) SetReadjustmentPeriod(n int) {
	p.readjustmentPeriod = n
}

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

// Package verifyqueue implements the concurrent verification pipeline that
// sits between untrusted ingress and the downstream chain: a three-stage
// FIFO (unverified / verifying / verified) with per-item out-of-order work
// but in-order commit, backed by a dynamically-scaled worker pool.
package verifyqueue

import (
	"runtime"
	"sync"
	"sync/atomic"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/ferrite-chain/go-ferrite/common"
	"github.com/ferrite-chain/go-ferrite/log"
)

// Status is the outward-facing classification returned by Pipeline.Status.
type Status int

const (
	StatusUnknown Status = iota
	StatusQueued
	StatusBad
)

// QueueInfo reports per-stage counts and a byte estimate, mirroring §4.1's
// queue_info.
type QueueInfo struct {
	UnverifiedQueueSize int
	VerifyingQueueSize  int
	VerifiedQueueSize   int
	MaxQueueSize        int
	MaxMemUse           int
	MemUsed             int
}

// IsFull reports whether either the item-count or byte-count limit has been
// reached.
func (q QueueInfo) IsFull() bool {
	return q.UnverifiedQueueSize >= q.MaxQueueSize || q.MemUsed >= q.MaxMemUse
}

// Route is the opaque ancestry answer returned by Chain.TreeRoute. Its
// contents are irrelevant to the pipeline: only presence/absence matters.
type Route struct{}

// Chain is the downstream ledger's ancestry contract, consulted only by
// IsProcessingFork. Out of scope per §1 — the pipeline never queries it for
// anything else.
type Chain interface {
	TreeRoute(from, to common.Hash) (Route, bool)
}

// defaultReadjustmentPeriod is the number of CollectGarbage ticks between
// scaling decisions (§4.6); SetReadjustmentPeriod overrides it.
const defaultReadjustmentPeriod = 12

// Pipeline is the public API: import, drain, acknowledge, and inspect the
// verification queue. It owns the worker pool and joins every worker on
// Close.
type Pipeline struct {
	engine  Engine
	adapter KindAdapter

	v      *verification
	state  *poolState
	signal *Signal
	ch     chan Opcode

	book *bookkeeping

	maxQueueSize int
	maxMemUse    int

	scaleVerifiers       bool
	readjustmentPeriod   int
	ticksSinceAdjustment atomic.Uint64
	poolSize             int

	future *futureCache

	deleting atomic.Bool
	wg       sync.WaitGroup

	metrics *queueMetrics
}

// New constructs a Pipeline and starts its worker pool. metricsRegistry may
// be nil to disable instrumentation.
func New(config Config, engine Engine, adapter KindAdapter, checkSeal bool, metricsRegistry gometrics.Registry, metricsPrefix string) *Pipeline {
	config = config.clamp()

	maxVerifiers := runtime.NumCPU()
	defaultAmount := max(1, min(maxVerifiers, config.Verifier.NumVerifiers))

	poolSize := defaultAmount
	if config.Verifier.ScaleVerifiers {
		poolSize = maxVerifiers
	}

	p := &Pipeline{
		engine:             engine,
		adapter:            adapter,
		v:                  newVerification(checkSeal),
		state:              newPoolState(defaultAmount),
		book:               newBookkeeping(),
		maxQueueSize:       config.MaxQueueSize,
		maxMemUse:          config.MaxMemUse,
		scaleVerifiers:     config.Verifier.ScaleVerifiers,
		readjustmentPeriod: defaultReadjustmentPeriod,
		poolSize:           poolSize,
		future:             newFutureCache(),
		metrics:            newQueueMetrics(metricsRegistry, metricsPrefix),
	}
	p.ch = make(chan Opcode, 1)
	p.signal = newSignal(p.ch, &p.deleting)

	log.Debug("verifyqueue: allocating verifiers", "count", poolSize, "active", defaultAmount, "scaling", config.Verifier.ScaleVerifiers)

	p.wg.Add(poolSize)
	for i := 0; i < poolSize; i++ {
		w := &worker{
			id:        i,
			v:         p.v,
			adapter:   adapter,
			engine:    engine,
			state:     p.state,
			signal:    p.signal,
			checkSeal: checkSeal,
			metrics:   p.metrics,
		}
		go func() {
			defer p.wg.Done()
			w.run()
		}()
	}
	return p
}

// Ready returns the channel Signal delivers BlockVerified on. The consumer
// should Drain after every receive.
func (p *Pipeline) Ready() <-chan Opcode { return p.ch }

// Import submits input for verification. On success it returns the item's
// hash and a nil error; on failure it returns the zero hash and the
// classifying error (§4.1, §7). The input itself is not handed back; a
// TemporarilyInvalid input is kept for RetryFuture.
func (p *Pipeline) Import(input Input) (common.Hash, error) {
	hash := input.Hash()
	rawHash := input.RawHash()

	// Fast-path rejection only: the authoritative check happens atomically
	// with the insert below, since two callers racing on the same hash
	// must not both get past it (§4.1, §5).
	if p.book.contains(hash) {
		return common.Hash{}, ErrAlreadyQueued
	}

	p.v.badMu.Lock()
	if p.v.bad.contains(hash) || p.v.bad.contains(rawHash) {
		p.v.badMu.Unlock()
		return common.Hash{}, ErrKnownBad
	}
	if p.v.bad.contains(input.ParentHash()) {
		p.v.bad.insert(hash)
		p.v.badMu.Unlock()
		return common.Hash{}, ErrKnownBad
	}
	p.v.badMu.Unlock()

	item, err := p.adapter.Create(input, p.engine, p.v.checkSeal)
	if err != nil {
		p.handleCreateError(err, hash, rawHash, input)
		if p.metrics != nil {
			p.metrics.rejected.Inc(1)
		}
		return common.Hash{}, err
	}

	parent := item.ParentHash()
	if !p.book.insert(hash, item.Difficulty(), parent) {
		// Lost the race: another caller inserted this hash between our
		// fast-path check and here. Don't double-count or double-queue it.
		return common.Hash{}, ErrAlreadyQueued
	}

	p.v.unverifiedMu.Lock()
	p.v.sizes.addUnverified(item.Size())
	p.v.unverified.pushBack(item)
	p.v.unverifiedMu.Unlock()
	p.v.moreToVerify.Broadcast()

	if p.metrics != nil {
		p.metrics.imported.Inc(1)
	}
	return hash, nil
}

// RetryFuture re-offers a previously TemporarilyInvalid input for import,
// e.g. once its future-dated timestamp has caught up to the local clock.
// It consumes the cached entry regardless of the retry's outcome: a caller
// that wants another attempt must wait for the input to be rejected as
// TemporarilyInvalid again.
func (p *Pipeline) RetryFuture(hash common.Hash) (common.Hash, error) {
	input, ok := p.future.Take(hash)
	if !ok {
		return common.Hash{}, ErrNoFutureInput
	}
	return p.Import(input)
}

func (p *Pipeline) handleCreateError(err error, hash, rawHash common.Hash, input Input) {
	var be *BlockError
	if !asBlockError(err, &be) {
		p.v.badMu.Lock()
		p.v.bad.insert(hash)
		p.v.badMu.Unlock()
		return
	}
	switch be.Kind {
	case TemporarilyInvalid:
		p.future.add(input)
	case InvalidTransactionsRoot, InvalidUnclesHash:
		p.v.badMu.Lock()
		p.v.bad.insert(rawHash)
		p.v.badMu.Unlock()
	default:
		p.v.badMu.Lock()
		p.v.bad.insert(hash)
		p.v.badMu.Unlock()
	}
}

// asBlockError is a small errors.As wrapper kept local so callers never need
// to import "errors" just to classify an Import failure.
func asBlockError(err error, target **BlockError) bool {
	for err != nil {
		if be, ok := err.(*BlockError); ok {
			*target = be
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Drain removes up to max items from the head of verified (§4.1).
func (p *Pipeline) Drain(max int) []Verified {
	p.v.verifiedMu.Lock()
	count := min(max, p.v.verified.len())
	drained := p.v.verified.drainAll()
	result := drained[:count]
	remainder := drained[count:]
	for _, r := range remainder {
		p.v.verified.pushBack(r)
	}
	removedSize := 0
	for _, r := range result {
		removedSize += r.Size()
	}
	p.v.sizes.subVerified(removedSize)
	remaining := !p.v.verified.empty()
	p.v.verifiedMu.Unlock()

	p.signal.reset()
	if remaining {
		p.signal.setAsync()
	}
	return result
}

// MarkAsGood acknowledges hashes as committed to the chain. Returns true iff
// the processing set becomes empty (§4.1).
func (p *Pipeline) MarkAsGood(hashes []common.Hash) bool {
	if len(hashes) == 0 {
		return p.book.isEmpty()
	}
	return p.book.removeMany(hashes)
}

// MarkAsBad condemns hashes and transitively prunes their descendants out of
// verified (§4.1, §4.4's sibling pass over verified).
func (p *Pipeline) MarkAsBad(hashes []common.Hash) {
	if len(hashes) == 0 {
		return
	}

	p.v.verifiedMu.Lock()
	defer p.v.verifiedMu.Unlock()
	p.v.badMu.Lock()
	defer p.v.badMu.Unlock()
	p.book.mu.Lock()
	defer p.book.mu.Unlock()

	for _, h := range hashes {
		p.v.bad.insert(h)
		p.book.removeLocked(h)
	}

	kept := make([]Verified, 0, p.v.verified.len())
	removedSize := 0
	for _, item := range p.v.verified.drainAll() {
		if p.v.bad.contains(item.ParentHash()) {
			removedSize += item.Size()
			p.v.bad.insert(item.Hash())
			p.book.removeLocked(item.Hash())
		} else {
			kept = append(kept, item)
		}
	}
	for _, item := range kept {
		p.v.verified.pushBack(item)
	}
	p.v.sizes.subVerified(removedSize)
}

// Status reports whether hash is queued, bad, or unknown (§4.1).
func (p *Pipeline) Status(hash common.Hash) Status {
	if p.book.contains(hash) {
		return StatusQueued
	}
	p.v.badMu.Lock()
	bad := p.v.bad.contains(hash)
	p.v.badMu.Unlock()
	if bad {
		return StatusBad
	}
	return StatusUnknown
}

// QueueInfo reports current stage sizes and configured limits (§4.1).
func (p *Pipeline) QueueInfo() QueueInfo {
	const slotOverhead = 64 // approximate per-slot bookkeeping overhead

	p.v.unverifiedMu.Lock()
	uLen := p.v.unverified.len()
	p.v.unverifiedMu.Unlock()
	uBytes := int(p.v.sizes.unverified.Load()) + uLen*slotOverhead

	p.v.verifyingMu.Lock()
	vLen := p.v.verifying.len()
	p.v.verifyingMu.Unlock()
	vBytes := int(p.v.sizes.verifying.Load()) + vLen*slotOverhead

	p.v.verifiedMu.Lock()
	rLen := p.v.verified.len()
	p.v.verifiedMu.Unlock()
	rBytes := int(p.v.sizes.verified.Load()) + rLen*slotOverhead

	info := QueueInfo{
		UnverifiedQueueSize: uLen,
		VerifyingQueueSize:  vLen,
		VerifiedQueueSize:   rLen,
		MaxQueueSize:        p.maxQueueSize,
		MaxMemUse:           p.maxMemUse,
		MemUsed:             uBytes + vBytes + rBytes,
	}
	p.metrics.updateQueueInfo(info)
	return info
}

// Flush blocks until both unverified and verifying are empty.
func (p *Pipeline) Flush() {
	p.v.unverifiedMu.Lock()
	defer p.v.unverifiedMu.Unlock()
	for {
		if p.v.unverified.empty() {
			p.v.verifyingMu.Lock()
			empty := p.v.verifying.empty()
			p.v.verifyingMu.Unlock()
			if empty {
				return
			}
		}
		p.v.emptyCond.Wait()
	}
}

// Clear empties all three stages and both processing maps, and zeroes every
// counter (§4.1).
func (p *Pipeline) Clear() {
	p.v.unverifiedMu.Lock()
	p.v.verifyingMu.Lock()
	p.v.verifiedMu.Lock()
	p.v.unverified.clear()
	p.v.verifying.clear()
	p.v.verified.clear()
	p.v.sizes.reset()
	p.v.verifiedMu.Unlock()
	p.v.verifyingMu.Unlock()
	p.v.unverifiedMu.Unlock()

	p.book.clear()
	p.future.clear()
}

// IsProcessingFork reports whether, for every parent referenced by an
// in-flight item, the chain has no known ancestry to bestHash. It may
// return a false negative on long queues (§4.1).
func (p *Pipeline) IsProcessingFork(bestHash common.Hash, chain Chain) bool {
	for _, parent := range p.book.parentHashes() {
		if _, ok := chain.TreeRoute(parent, bestHash); ok {
			return false
		}
	}
	return true
}

// TotalDifficulty returns the sum of difficulty across every item currently
// in processing.
func (p *Pipeline) TotalDifficulty() common.Difficulty {
	return p.book.totalDifficulty()
}

// NumVerifiers returns the current active worker count, always in
// [1, pool size].
func (p *Pipeline) NumVerifiers() int {
	n, ok := p.state.active()
	if !ok {
		panic("verifyqueue: state only set to exit on shutdown; pipeline is live")
	}
	return n
}

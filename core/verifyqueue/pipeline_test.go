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

package verifyqueue_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ferrite-chain/go-ferrite/common"
	"github.com/ferrite-chain/go-ferrite/core/verifyqueue"
	"github.com/ferrite-chain/go-ferrite/core/verifyqueue/chainkind"
)

func testConfig() verifyqueue.Config {
	return verifyqueue.Config{
		MaxQueueSize: verifyqueue.MinQueueLimit,
		MaxMemUse:    verifyqueue.MinMemLimit,
		Verifier:     verifyqueue.VerifierSettings{NumVerifiers: 2},
	}
}

func waitReady(t *testing.T, p *verifyqueue.Pipeline) {
	t.Helper()
	select {
	case <-p.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ready signal")
	}
}

func block(number uint64, parent common.Hash, difficulty uint64) *chainkind.BlockInput {
	h := chainkind.Header{
		ParentHash: parent,
		Number:     number,
		Difficulty: common.NewDifficulty(difficulty),
	}
	return &chainkind.BlockInput{Header: h}
}

// Seed scenario 1: a single good block is imported, verified, drained, and
// acknowledged, and the total difficulty tracks it through that lifecycle.
func TestSeedSingleGoodBlock(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	b := block(1, common.Hash{}, 100)
	hash, err := p.Import(b)
	require.NoError(t, err)
	require.Equal(t, b.Hash(), hash)
	require.Equal(t, uint64(100), p.TotalDifficulty().Uint64())

	p.Flush()
	waitReady(t, p)

	drained := p.Drain(10)
	require.Len(t, drained, 1)
	require.Equal(t, hash, drained[0].Hash())

	require.Equal(t, verifyqueue.StatusQueued, p.Status(hash))

	empty := p.MarkAsGood([]common.Hash{hash})
	require.True(t, empty)
	require.True(t, p.TotalDifficulty().IsZero())
}

// Seed scenario 2: importing the same hash twice while the first import is
// still in flight is rejected outright.
func TestSeedDuplicateRejected(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	b := block(1, common.Hash{}, 10)
	_, err := p.Import(b)
	require.NoError(t, err)

	_, err = p.Import(b)
	require.ErrorIs(t, err, verifyqueue.ErrAlreadyQueued)
}

// Seed scenario 3: once a block has been drained and acknowledged, its hash
// leaves the processing set entirely and may be imported again.
func TestSeedReimportAfterAcknowledge(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	b := block(1, common.Hash{}, 10)
	hash, err := p.Import(b)
	require.NoError(t, err)

	p.Flush()
	waitReady(t, p)
	p.Drain(10)
	p.MarkAsGood([]common.Hash{hash})

	require.Equal(t, verifyqueue.StatusUnknown, p.Status(hash))

	_, err = p.Import(b)
	require.NoError(t, err)
}

// Concurrent Import calls racing on the same hash must yield exactly one
// winner: total difficulty, parent bookkeeping, and the unverified queue
// must each reflect the block once, never twice (§4.1, §5).
func TestImportConcurrentDuplicatesSingleWinner(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	b := block(1, common.Hash{}, 77)

	const racers = 16
	results := make(chan error, racers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < racers; i++ {
		go func() {
			start.Wait()
			_, err := p.Import(b)
			results <- err
		}()
	}
	start.Done()

	successes := 0
	for i := 0; i < racers; i++ {
		if err := <-results; err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, verifyqueue.ErrAlreadyQueued)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, uint64(77), p.TotalDifficulty().Uint64())

	p.Flush()
	waitReady(t, p)
	require.Len(t, p.Drain(10), 1)
}

// Seed scenario 4: once either limit is reached, QueueInfo.IsFull latches
// true until the backlog drains.
func TestSeedBackpressure(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = verifyqueue.MinQueueLimit
	p := verifyqueue.New(cfg, chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	// Hold the pool at a single active verifier, the lowest count
	// ScaleVerifiers allows, so imported items pile up rather than
	// draining as fast as they arrive.
	p.ScaleVerifiers(1)

	parent := common.Hash{}
	for i := 0; i < verifyqueue.MinQueueLimit+1; i++ {
		b := block(uint64(i), parent, 1)
		_, err := p.Import(b)
		require.NoError(t, err)
		parent = b.Hash()
	}

	require.True(t, p.QueueInfo().IsFull())
}

// Seed scenario 5: ScaleVerifiers always clamps its target into
// [1, pool size], regardless of how far out of range the caller asks.
func TestSeedScalingClamped(t *testing.T) {
	cfg := testConfig()
	cfg.Verifier = verifyqueue.VerifierSettings{ScaleVerifiers: true, NumVerifiers: 2}
	p := verifyqueue.New(cfg, chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	p.ScaleVerifiers(-5)
	require.Equal(t, 1, p.NumVerifiers())

	p.ScaleVerifiers(1 << 20)
	capacity := p.NumVerifiers()
	require.GreaterOrEqual(t, capacity, 1)

	// A second absurdly large request clamps to the exact same ceiling,
	// proving the pool size itself (not just the requested target) bounds
	// the result.
	p.ScaleVerifiers(1 << 21)
	require.Equal(t, capacity, p.NumVerifiers())
}

// Seed scenario 6: a pipeline configured with zero verifiers still runs
// with exactly one active worker, never zero.
func TestSeedZeroConfiguredVerifiers(t *testing.T) {
	cfg := testConfig()
	cfg.Verifier = verifyqueue.VerifierSettings{NumVerifiers: 0}
	p := verifyqueue.New(cfg, chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	require.Equal(t, 1, p.NumVerifiers())
}

func TestMarkAsBadPrunesDescendants(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	parent := block(1, common.Hash{}, 10)
	parentHash, err := p.Import(parent)
	require.NoError(t, err)

	child := block(2, parentHash, 10)
	childHash, err := p.Import(child)
	require.NoError(t, err)

	p.Flush()
	waitReady(t, p)
	// Hand only the parent downstream; the child stays in verified, where
	// MarkAsBad's descendant scan can find it.
	p.Drain(1)

	p.MarkAsBad([]common.Hash{parentHash})

	require.Equal(t, verifyqueue.StatusBad, p.Status(parentHash))
	require.Equal(t, verifyqueue.StatusBad, p.Status(childHash))
}

func TestDrainEmptyQueueReturnsNil(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	require.Empty(t, p.Drain(10))
}

func TestClearIsIdempotentAndResetsCounters(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	_, err := p.Import(block(1, common.Hash{}, 10))
	require.NoError(t, err)

	p.Clear()
	p.Clear()

	info := p.QueueInfo()
	require.Zero(t, info.UnverifiedQueueSize)
	require.Zero(t, info.VerifiedQueueSize)
	require.True(t, p.TotalDifficulty().IsZero())
}

func TestStatusClassification(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	unknown := common.HexToHash("0xdeadbeef")
	require.Equal(t, verifyqueue.StatusUnknown, p.Status(unknown))

	hash, err := p.Import(block(1, common.Hash{}, 10))
	require.NoError(t, err)
	require.Equal(t, verifyqueue.StatusQueued, p.Status(hash))

	p.MarkAsBad([]common.Hash{hash})
	require.Equal(t, verifyqueue.StatusBad, p.Status(hash))
}

// Out-of-order completion across multiple workers never reorders what
// Drain hands back: it is always a prefix of import order.
func TestDrainPreservesImportOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Verifier = verifyqueue.VerifierSettings{NumVerifiers: 4}
	p := verifyqueue.New(cfg, chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	const n = 50
	hashes := make([]common.Hash, n)
	parent := common.Hash{}
	for i := 0; i < n; i++ {
		b := block(uint64(i), parent, 1)
		h, err := p.Import(b)
		require.NoError(t, err)
		hashes[i] = h
		parent = h
	}

	p.Flush()

	var drained []verifyqueue.Verified
	for len(drained) < n {
		waitReady(t, p)
		drained = append(drained, p.Drain(n)...)
	}

	for i, item := range drained {
		require.Equal(t, hashes[i], item.Hash())
	}
}

func TestTemporarilyInvalidDoesNotPolluteBadSet(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	b := &chainkind.BlockInput{
		Header: chainkind.Header{ParentHash: common.Hash{}, Number: 1, Difficulty: common.NewDifficulty(1)},
		Future: true,
	}
	_, err := p.Import(b)
	require.Error(t, err)

	require.Equal(t, verifyqueue.StatusUnknown, p.Status(b.Hash()))
}

// RetryFuture re-admits a cached TemporarilyInvalid input once whatever
// made it temporarily invalid no longer applies, and reports
// ErrNoFutureInput for a hash it never cached.
func TestRetryFutureReadmitsCachedInput(t *testing.T) {
	p := verifyqueue.New(testConfig(), chainkind.NewFaker(), chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	b := &chainkind.BlockInput{
		Header: chainkind.Header{ParentHash: common.Hash{}, Number: 1, Difficulty: common.NewDifficulty(5)},
		Future: true,
	}
	_, err := p.Import(b)
	require.Error(t, err)
	require.Equal(t, verifyqueue.StatusUnknown, p.Status(b.Hash()))

	_, err = p.RetryFuture(common.HexToHash("0xdeadbeef"))
	require.ErrorIs(t, err, verifyqueue.ErrNoFutureInput)

	// The clock has caught up: the same input is no longer future-dated.
	b.Future = false
	hash, err := p.RetryFuture(b.Hash())
	require.NoError(t, err)
	require.Equal(t, b.Hash(), hash)
	require.Equal(t, verifyqueue.StatusQueued, p.Status(hash))

	// The cache entry was consumed by the first retry.
	_, err = p.RetryFuture(hash)
	require.ErrorIs(t, err, verifyqueue.ErrNoFutureInput)
}

func TestBadSealRejectsDuringVerify(t *testing.T) {
	engine := &chainkind.Faker{RejectAll: true}
	p := verifyqueue.New(testConfig(), engine, chainkind.BlockAdapter{}, true, nil, "")
	defer p.Close()

	b := block(1, common.Hash{}, 10)
	hash, err := p.Import(b)
	require.NoError(t, err)

	p.Flush()

	require.Equal(t, verifyqueue.StatusBad, p.Status(hash))
	require.Empty(t, p.Drain(10))
}

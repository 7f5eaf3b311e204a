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

// Command verifyqueued is a small demo harness for core/verifyqueue: it
// feeds a synthetic chain of blocks through a Pipeline and drains the
// result, the way a real node would sit between p2p ingress and chain
// insertion. There is no network or storage layer here (§1's scope
// boundary) — just enough ambient plumbing (config, logging, metrics) to
// exercise the queue the way the rest of this module does.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/ferrite-chain/go-ferrite/common"
	"github.com/ferrite-chain/go-ferrite/core/verifyqueue"
	"github.com/ferrite-chain/go-ferrite/core/verifyqueue/chainkind"
	"github.com/ferrite-chain/go-ferrite/log"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a verifyqueued TOML config file",
	}
	blocksFlag = &cli.IntFlag{
		Name:  "blocks",
		Usage: "override the number of synthetic blocks to feed through the queue",
		Value: -1,
	}
	verifiersFlag = &cli.IntFlag{
		Name:  "verifiers",
		Usage: "override the initial active verifier count",
		Value: -1,
	}
	scaleFlag = &cli.BoolFlag{
		Name:  "scale",
		Usage: "enable dynamic verifier scaling",
	}
	rejectSealsFlag = &cli.BoolFlag{
		Name:  "reject-seals",
		Usage: "run with a consensus engine that rejects every seal, to demo the bad-block path",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity, 0 (crit) through 5 (trace)",
		Value: 3,
	}
)

func main() {
	app := &cli.App{
		Name:   "verifyqueued",
		Usage:  "drive core/verifyqueue against a synthetic block feed",
		Flags:  []cli.Flag{configFlag, blocksFlag, verifiersFlag, scaleFlag, rejectSealsFlag, verbosityFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// verbosityLevel maps the teacher's familiar 0 (crit) .. 5 (trace) scale
// onto a log.Level, clamping out-of-range input to the nearest end.
func verbosityLevel(v int) log.Level {
	levels := []log.Level{log.LevelCrit, log.LevelError, log.LevelWarn, log.LevelInfo, log.LevelDebug, log.LevelTrace}
	if v < 0 {
		v = 0
	}
	if v >= len(levels) {
		v = len(levels) - 1
	}
	return levels[v]
}

func run(c *cli.Context) error {
	log.SetDefault(log.New(log.NewTerminalHandler(verbosityLevel(c.Int(verbosityFlag.Name)))))

	cfg := defaultVerifyqueuedConfig()
	if path := c.String(configFlag.Name); path != "" {
		if err := loadConfig(path, &cfg); err != nil {
			return fmt.Errorf("verifyqueued: loading config: %w", err)
		}
	}
	if n := c.Int(blocksFlag.Name); n >= 0 {
		cfg.Feed.BlockCount = n
	}
	if n := c.Int(verifiersFlag.Name); n >= 0 {
		cfg.Queue.NumVerifiers = n
	}
	if c.Bool(scaleFlag.Name) {
		cfg.Queue.ScaleVerifiers = true
	}
	if c.Bool(rejectSealsFlag.Name) {
		cfg.Queue.RejectBadSeals = true
	}

	registry := gometrics.NewRegistry()
	engine := &chainkind.Faker{RejectAll: cfg.Queue.RejectBadSeals}
	pipeline := verifyqueue.New(cfg.Queue.toPipelineConfig(), engine, chainkind.BlockAdapter{}, true, registry, cfg.Queue.MetricsPrefix)
	pipeline.SetReadjustmentPeriod(cfg.Queue.ReadjustPeriod)
	defer pipeline.Close()

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return produceBlocks(gctx, pipeline, cfg.Feed)
	})
	g.Go(func() error {
		return drainLoop(gctx, pipeline)
	})
	g.Go(func() error {
		return collectGarbageLoop(gctx, pipeline, cfg.Queue)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	info := pipeline.QueueInfo()
	log.Info("verifyqueued: run complete",
		"unverified", info.UnverifiedQueueSize,
		"verifying", info.VerifyingQueueSize,
		"verified", info.VerifiedQueueSize,
		"total_difficulty", pipeline.TotalDifficulty())
	return nil
}

// produceBlocks feeds a synthetic chain through Import at a fixed cadence,
// every ForkEvery-th block branching off genesis instead of the tip, and
// occasionally submitting a future-dated
// block to exercise the TemporarilyInvalid/RetryFuture path. It flushes the
// pipeline before returning so the final drainLoop pass sees every block it
// submitted.
func produceBlocks(ctx context.Context, p *verifyqueue.Pipeline, feed feedConfig) error {
	tip := common.Hash{}
	genesis := common.Hash{}
	interval := time.Duration(feed.ProduceEvery) * time.Millisecond

	var pending []*chainkind.BlockInput

	for i := 0; i < feed.BlockCount; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		parent := tip
		if feed.ForkEvery > 0 && i%feed.ForkEvery == 0 {
			parent = genesis
		}

		header := chainkind.Header{
			ParentHash: parent,
			Number:     uint64(i + 1),
			Time:       uint64(i),
			Difficulty: common.NewDifficulty(1 + uint64(rand.Intn(8))),
		}
		future := feed.FutureEvery > 0 && i%feed.FutureEvery == 0
		input := &chainkind.BlockInput{Header: header, Future: future}

		hash, err := p.Import(input)
		switch {
		case err == nil:
			tip = hash
		case future:
			// Cached by the pipeline as TemporarilyInvalid; remember it so
			// we can re-offer it once its timestamp would no longer be
			// considered future-dated.
			pending = append(pending, input)
		case err == verifyqueue.ErrAlreadyQueued, err == verifyqueue.ErrKnownBad:
			log.Debug("verifyqueued: rejected", "number", header.Number, "err", err)
		default:
			log.Debug("verifyqueued: import failed", "number", header.Number, "err", err)
		}

		if interval > 0 {
			time.Sleep(interval)
		}
	}

	for _, input := range pending {
		input.Future = false
		if hash, err := p.RetryFuture(input.Hash()); err != nil {
			log.Debug("verifyqueued: future retry failed", "err", err)
		} else {
			tip = hash
		}
	}

	p.Flush()
	return nil
}

// drainLoop is the consumer side: every ready signal it drains whatever has
// accumulated and immediately acknowledges it, since this demo has no real
// downstream chain to insert into.
func drainLoop(ctx context.Context, p *verifyqueue.Pipeline) error {
	for {
		select {
		case <-ctx.Done():
			drainRemaining(p)
			return ctx.Err()
		case <-p.Ready():
			drainRemaining(p)
		}
	}
}

func drainRemaining(p *verifyqueue.Pipeline) {
	for {
		items := p.Drain(256)
		if len(items) == 0 {
			return
		}
		hashes := make([]common.Hash, len(items))
		for i, item := range items {
			hashes[i] = item.Hash()
		}
		p.MarkAsGood(hashes)
	}
}

// collectGarbageLoop ticks CollectGarbage on a fixed interval, the role a
// node's maintenance loop plays for the teacher's own queue types.
func collectGarbageLoop(ctx context.Context, p *verifyqueue.Pipeline, cfg queueConfig) error {
	interval := time.Duration(cfg.GCIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.CollectGarbage()
		}
	}
}

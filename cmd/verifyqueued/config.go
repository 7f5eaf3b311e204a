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

package main

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ferrite-chain/go-ferrite/core/verifyqueue"
)

// verifyqueuedConfig is the on-disk shape of the daemon's config file,
// mirroring the teacher's gethConfig: one struct per subsystem, loaded
// wholesale with a single toml.Decode call.
type verifyqueuedConfig struct {
	Queue queueConfig
	Feed  feedConfig
}

// queueConfig maps directly onto verifyqueue.Config plus the verifier
// settings, with the same field names the teacher uses for its own
// size-limit options so operators transplanting a geth-style config find
// the names familiar.
type queueConfig struct {
	MaxQueueSize   int
	MaxMemUseMB    int
	NumVerifiers   int
	ScaleVerifiers bool
	RejectBadSeals bool
	MetricsPrefix  string
	ReadjustPeriod int
	GCIntervalMS   int
}

// feedConfig controls the synthetic block producer the demo runs against,
// since this module has no real network ingress (§1's scope boundary).
type feedConfig struct {
	BlockCount   int
	ProduceEvery int // milliseconds between synthetic imports
	ForkEvery    int // every Nth block branches from genesis instead of the tip
	FutureEvery  int // every Nth block is submitted future-dated, then retried
}

func defaultVerifyqueuedConfig() verifyqueuedConfig {
	def := verifyqueue.DefaultConfig()
	return verifyqueuedConfig{
		Queue: queueConfig{
			MaxQueueSize:   def.MaxQueueSize,
			MaxMemUseMB:    def.MaxMemUse / (1024 * 1024),
			NumVerifiers:   def.Verifier.NumVerifiers,
			ScaleVerifiers: def.Verifier.ScaleVerifiers,
			RejectBadSeals: false,
			MetricsPrefix:  "verifyqueue/",
			ReadjustPeriod: 12,
			GCIntervalMS:   500,
		},
		Feed: feedConfig{
			BlockCount:   1000,
			ProduceEvery: 2,
			ForkEvery:    0,
			FutureEvery:  97,
		},
	}
}

// loadConfig decodes a toml file into cfg, the same loadConfig/toml.Decode
// shape the teacher's cmd/geth uses for its own config file.
func loadConfig(file string, cfg *verifyqueuedConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = toml.NewDecoder(f).Decode(cfg)
	return err
}

func (c queueConfig) toPipelineConfig() verifyqueue.Config {
	return verifyqueue.Config{
		MaxQueueSize: c.MaxQueueSize,
		MaxMemUse:    c.MaxMemUseMB * 1024 * 1024,
		Verifier: verifyqueue.VerifierSettings{
			ScaleVerifiers: c.ScaleVerifiers,
			NumVerifiers:   c.NumVerifiers,
		},
	}
}

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

import "runtime"

// MinQueueLimit is the lowest max_queue_size Config.clamp will accept.
const MinQueueLimit = 512

// MinMemLimit is the lowest max_mem_use Config.clamp will accept.
const MinMemLimit = 16384

// VerifierSettings controls the worker pool's size and scaling behaviour.
type VerifierSettings struct {
	// ScaleVerifiers enables periodic load-based adjustment of the active
	// worker count (see Scaler).
	ScaleVerifiers bool
	// NumVerifiers is the initial active worker count. It is clamped to
	// [1, runtime.NumCPU()] regardless of ScaleVerifiers; when scaling is
	// enabled the pool is still sized to NumCPU so it can grow into that
	// many active workers later.
	NumVerifiers int
}

// DefaultVerifierSettings mirrors the teacher's num_cpus::get() default.
func DefaultVerifierSettings() VerifierSettings {
	return VerifierSettings{
		ScaleVerifiers: false,
		NumVerifiers:   runtime.NumCPU(),
	}
}

// Config configures a Pipeline.
type Config struct {
	// MaxQueueSize caps the unverified item count for IsFull.
	MaxQueueSize int
	// MaxMemUse caps the total estimated byte footprint for IsFull.
	MaxMemUse int
	Verifier  VerifierSettings
}

// DefaultConfig matches the teacher's Config::default().
func DefaultConfig() Config {
	return Config{
		MaxQueueSize: 30000,
		MaxMemUse:    50 * 1024 * 1024,
		Verifier:     DefaultVerifierSettings(),
	}
}

// clamp enforces the MIN_QUEUE_LIMIT / MIN_MEM_LIMIT floors from §4.1.
func (c Config) clamp() Config {
	if c.MaxQueueSize < MinQueueLimit {
		c.MaxQueueSize = MinQueueLimit
	}
	if c.MaxMemUse < MinMemLimit {
		c.MaxMemUse = MinMemLimit
	}
	return c
}

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

import "github.com/ferrite-chain/go-ferrite/common"

// Item is the identity surface every stage of the pipeline relies on,
// satisfied by Input, Unverified and Verified alike.
type Item interface {
	Hash() common.Hash
	ParentHash() common.Hash
	Difficulty() common.Difficulty
	// Size returns an approximate heap footprint in bytes, used to
	// maintain the Sizes counters.
	Size() int
}

// Input is the raw, not-yet-parsed form submitted to Import.
type Input interface {
	Item
	// RawHash is the pre-canonicalisation hash, used only to flag
	// malformed-body cases (§7).
	RawHash() common.Hash
}

// Unverified is the parsed but unchecked form produced by KindAdapter.Create.
type Unverified interface {
	Item
}

// Verified is the checked form produced by KindAdapter.Verify.
type Verified interface {
	Item
}

// Engine is the opaque consensus object passed through to the adapter. It is
// shared across all workers and must be safe for concurrent use.
type Engine interface {
	// Name identifies the engine for logging purposes.
	Name() string
}

// KindAdapter knows how to parse raw input into an Unverified item and how
// to check an Unverified item's validity against an Engine, producing a
// Verified item. Two variants are expected in practice: a full "Blocks"
// adapter and a header-only "Headers" adapter (§6); both are external
// collaborators from the pipeline's point of view — this package only
// depends on the interface.
type KindAdapter interface {
	// Create parses input into an Unverified item. On failure it returns
	// a nil item and an error, normally a *BlockError classifying the
	// failure; the input is not returned.
	Create(input Input, engine Engine, checkSeal bool) (Unverified, error)
	// Verify performs the CPU-heavy structural/cryptographic check. It is
	// always called with no stage lock held.
	Verify(item Unverified, engine Engine, checkSeal bool) (Verified, error)
}

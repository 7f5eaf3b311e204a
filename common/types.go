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

// Package common holds the identity and accounting types shared by every
// package in this module: content hashes and the additive difficulty value
// items carry through the verification pipeline.
package common

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// HashLength is the expected length of a content hash, in bytes.
const HashLength = 32

// Hash is a 32-byte content address, e.g. the hash of a block or header.
type Hash [HashLength]byte

// BytesToHash converts b to a Hash, left-padding or truncating on the left
// as needed.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash converts a hex string (with or without 0x prefix) to a Hash.
func HexToHash(s string) Hash {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}
	}
	return BytesToHash(b)
}

// Bytes returns the byte representation of h.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex representation of h.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// Format implements fmt.Formatter so Hash prints sensibly in log fields.
func (h Hash) Format(s fmt.State, c byte) {
	fmt.Fprintf(s, "%s", h.Hex())
}

// Difficulty is a nonnegative, additive 256-bit integer. It wraps
// holiman/uint256 rather than math/big, matching the newer parts of the
// teacher codebase (e.g. gas accounting) that avoid big.Int's allocations on
// the hot path.
type Difficulty struct {
	v uint256.Int
}

// NewDifficulty builds a Difficulty from a uint64.
func NewDifficulty(x uint64) Difficulty {
	var d Difficulty
	d.v.SetUint64(x)
	return d
}

// Add returns a + b. Never mutates its receivers.
func (a Difficulty) Add(b Difficulty) Difficulty {
	var r Difficulty
	r.v.Add(&a.v, &b.v)
	return r
}

// Sub returns a - b. The pipeline never constructs a Difficulty that would
// make this underflow (processing entries are only subtracted once, on
// acknowledgement), but callers in a hurry should still check IsZero first
// when driving totals down to exactly zero.
func (a Difficulty) Sub(b Difficulty) Difficulty {
	var r Difficulty
	r.v.Sub(&a.v, &b.v)
	return r
}

// IsZero reports whether the difficulty is zero.
func (a Difficulty) IsZero() bool { return a.v.IsZero() }

// Uint64 returns the low 64 bits of the difficulty, for display purposes.
func (a Difficulty) Uint64() uint64 { return a.v.Uint64() }

// String implements fmt.Stringer.
func (a Difficulty) String() string { return a.v.Dec() }

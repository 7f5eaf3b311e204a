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
	"errors"
	"fmt"
)

// ErrAlreadyQueued is returned by Import when the item's hash is already in
// the processing set.
var ErrAlreadyQueued = errors.New("verifyqueue: already queued")

// ErrKnownBad is returned by Import when the item's hash, raw hash, or
// parent hash is already in the bad set.
var ErrKnownBad = errors.New("verifyqueue: known bad")

// ErrNoFutureInput is returned by Pipeline.RetryFuture when hash has no
// cached TemporarilyInvalid input waiting to be re-offered.
var ErrNoFutureInput = errors.New("verifyqueue: no cached future input for hash")

// BlockErrorKind classifies why a KindAdapter rejected an item, which in
// turn decides whether (and what) Import marks bad. See §7.
type BlockErrorKind int

const (
	// Other covers any verification failure not called out below; the
	// item's canonical hash is marked bad.
	Other BlockErrorKind = iota
	// TemporarilyInvalid (e.g. a future timestamp) must not pollute the
	// bad set; the caller may retry later.
	TemporarilyInvalid
	// InvalidTransactionsRoot means the body is malformed but the header
	// may still be fine; only the raw (pre-canonicalisation) hash is
	// marked bad.
	InvalidTransactionsRoot
	// InvalidUnclesHash is the header-adjacent analogue of
	// InvalidTransactionsRoot.
	InvalidUnclesHash
)

// BlockError wraps a KindAdapter verification failure with its kind.
type BlockError struct {
	Kind BlockErrorKind
	Err  error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("verifyqueue: %v", e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// NewBlockError builds a BlockError of the given kind.
func NewBlockError(kind BlockErrorKind, err error) *BlockError {
	return &BlockError{Kind: kind, Err: err}
}

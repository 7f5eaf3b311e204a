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

package chainkind

import (
	"errors"

	"github.com/ferrite-chain/go-ferrite/common"
	"github.com/ferrite-chain/go-ferrite/core/verifyqueue"
)

var (
	errFutureHeader        = errors.New("chainkind: header timestamp in the future")
	errUnexpectedHeaderArg = errors.New("chainkind: unexpected argument type for Headers kind")
)

// HeaderInput is the raw form submitted to a header-only pipeline: no body
// to validate, so there is no InvalidTransactionsRoot/InvalidUnclesHash
// path — only TemporarilyInvalid and Other apply.
type HeaderInput struct {
	Header Header
	Future bool
}

func (h *HeaderInput) Hash() common.Hash             { return h.Header.Hash() }
func (h *HeaderInput) RawHash() common.Hash          { return h.Header.Hash() }
func (h *HeaderInput) ParentHash() common.Hash       { return h.Header.ParentHash }
func (h *HeaderInput) Difficulty() common.Difficulty { return h.Header.Difficulty }
func (h *HeaderInput) Size() int                     { return 512 + len(h.Header.Extra) }

// HeaderItem is the parsed form of a HeaderInput.
type HeaderItem struct {
	header Header
	size   int
}

func (h *HeaderItem) Hash() common.Hash             { return h.header.Hash() }
func (h *HeaderItem) ParentHash() common.Hash       { return h.header.ParentHash }
func (h *HeaderItem) Difficulty() common.Difficulty { return h.header.Difficulty }
func (h *HeaderItem) Size() int                     { return h.size }

// HeaderAdapter implements verifyqueue.KindAdapter for the header-only
// "Headers" kind (§6).
type HeaderAdapter struct{}

func (HeaderAdapter) Create(input verifyqueue.Input, engine verifyqueue.Engine, checkSeal bool) (verifyqueue.Unverified, error) {
	hi, ok := input.(*HeaderInput)
	if !ok {
		return nil, verifyqueue.NewBlockError(verifyqueue.Other, errUnexpectedHeaderArg)
	}
	if hi.Future {
		return nil, verifyqueue.NewBlockError(verifyqueue.TemporarilyInvalid, errFutureHeader)
	}
	return &HeaderItem{header: hi.Header, size: hi.Size()}, nil
}

func (HeaderAdapter) Verify(item verifyqueue.Unverified, engine verifyqueue.Engine, checkSeal bool) (verifyqueue.Verified, error) {
	h := item.(*HeaderItem)
	if checkSeal {
		if ce, ok := engine.(ConsensusEngine); ok {
			if err := ce.VerifySeal(&h.header); err != nil {
				return nil, verifyqueue.NewBlockError(verifyqueue.Other, err)
			}
		}
	}
	return h, nil
}

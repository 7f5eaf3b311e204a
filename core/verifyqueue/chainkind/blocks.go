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
	"crypto/sha256"
	"errors"

	"github.com/ferrite-chain/go-ferrite/common"
	"github.com/ferrite-chain/go-ferrite/core/verifyqueue"
)

var (
	errFutureBlock        = errors.New("chainkind: timestamp in the future")
	errInvalidTxsRoot     = errors.New("chainkind: transactions root mismatch")
	errInvalidUnclesHash  = errors.New("chainkind: uncles hash mismatch")
	errUnexpectedBlockArg = errors.New("chainkind: unexpected argument type for Blocks kind")
)

// BlockInput is the raw, not-yet-parsed form a producer submits to the
// "Blocks" pipeline. Future/BadTxsRoot/BadUnclesHash are test knobs
// standing in for what would otherwise be discovered by actually decoding
// wire bytes.
type BlockInput struct {
	Header Header
	// BodyRaw approximates the block's encoded transaction and uncle
	// lists; only its length feeds Size().
	BodyRaw []byte
	// Future marks the header as carrying a timestamp the local clock
	// considers not yet valid — a TemporarilyInvalid rejection (§7).
	Future bool
	// BadTxsRoot / BadUnclesHash simulate a body that doesn't match the
	// header's claimed roots — header may still be fine (§7).
	BadTxsRoot    bool
	BadUnclesHash bool
}

func (b *BlockInput) Hash() common.Hash             { return b.Header.Hash() }
func (b *BlockInput) ParentHash() common.Hash       { return b.Header.ParentHash }
func (b *BlockInput) Difficulty() common.Difficulty { return b.Header.Difficulty }
func (b *BlockInput) Size() int                     { return 512 + len(b.BodyRaw) + len(b.Header.Extra) }

// RawHash is a pre-canonicalisation identity for the raw body: it changes
// whenever the body bytes change, even though Hash() (derived from the
// header alone) does not. This is what lets Import flag a malformed body
// without condemning a header that might be perfectly valid (§7).
func (b *BlockInput) RawHash() common.Hash {
	return hashFields(b.Header.ParentHash, b.Header.Number, b.Header.Time, common.Hash(sha256.Sum256(b.BodyRaw)), b.Header.UnclesHash, b.Header.Extra)
}

// Block is the parsed form of a BlockInput, used as both the Unverified and
// Verified stage representation — verification only flips whether the
// engine has blessed it, it doesn't change its shape.
type Block struct {
	header Header
	size   int
}

func (b *Block) Hash() common.Hash             { return b.header.Hash() }
func (b *Block) ParentHash() common.Hash       { return b.header.ParentHash }
func (b *Block) Difficulty() common.Difficulty { return b.header.Difficulty }
func (b *Block) Size() int                     { return b.size }

// BlockAdapter implements verifyqueue.KindAdapter for the full "Blocks"
// kind (§6).
type BlockAdapter struct{}

func (BlockAdapter) Create(input verifyqueue.Input, engine verifyqueue.Engine, checkSeal bool) (verifyqueue.Unverified, error) {
	bi, ok := input.(*BlockInput)
	if !ok {
		return nil, verifyqueue.NewBlockError(verifyqueue.Other, errUnexpectedBlockArg)
	}
	if bi.Future {
		return nil, verifyqueue.NewBlockError(verifyqueue.TemporarilyInvalid, errFutureBlock)
	}
	if bi.BadTxsRoot {
		return nil, verifyqueue.NewBlockError(verifyqueue.InvalidTransactionsRoot, errInvalidTxsRoot)
	}
	if bi.BadUnclesHash {
		return nil, verifyqueue.NewBlockError(verifyqueue.InvalidUnclesHash, errInvalidUnclesHash)
	}
	return &Block{header: bi.Header, size: bi.Size()}, nil
}

func (BlockAdapter) Verify(item verifyqueue.Unverified, engine verifyqueue.Engine, checkSeal bool) (verifyqueue.Verified, error) {
	b := item.(*Block)
	if checkSeal {
		if ce, ok := engine.(ConsensusEngine); ok {
			if err := ce.VerifySeal(&b.header); err != nil {
				return nil, verifyqueue.NewBlockError(verifyqueue.Other, err)
			}
		}
	}
	return b, nil
}

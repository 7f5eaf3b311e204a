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

// Package chainkind provides reference KindAdapter implementations for the
// two variants named in §6 of the verification pipeline spec: a full
// "Blocks" adapter and a header-only "Headers" adapter. Real engines and
// wire formats are out of scope for core/verifyqueue (§1); this package
// exists so the pipeline has something concrete to drive in tests and in
// the cmd/verifyqueued demo.
package chainkind

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/ferrite-chain/go-ferrite/common"
)

// Header is the minimal set of fields the pipeline cares about: identity,
// ancestry, and weight. A real chain's header carries much more; none of it
// matters to verifyqueue.
type Header struct {
	ParentHash common.Hash
	Number     uint64
	Time       uint64
	Difficulty common.Difficulty
	TxRoot     common.Hash
	UnclesHash common.Hash
	Extra      []byte
}

// Hash returns the canonical content hash of the header.
func (h *Header) Hash() common.Hash {
	return hashFields(h.ParentHash, h.Number, h.Time, h.TxRoot, h.UnclesHash, h.Extra)
}

func hashFields(parent common.Hash, number, ts uint64, txRoot, unclesHash common.Hash, extra []byte) common.Hash {
	buf := make([]byte, 0, 32+8+8+32+32+len(extra))
	buf = append(buf, parent.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, number)
	buf = binary.BigEndian.AppendUint64(buf, ts)
	buf = append(buf, txRoot.Bytes()...)
	buf = append(buf, unclesHash.Bytes()...)
	buf = append(buf, extra...)
	sum := sha256.Sum256(buf)
	return common.Hash(sum)
}

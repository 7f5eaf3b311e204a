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

import "errors"

// ConsensusEngine is the consensus capability a KindAdapter checks a header
// against (§6's "Engine capability"). It must be safe for concurrent calls
// from every worker.
type ConsensusEngine interface {
	Name() string
	VerifySeal(h *Header) error
}

// ErrBadSeal is returned by a Faker configured to reject everything, for
// exercising the Other verification-error path.
var ErrBadSeal = errors.New("chainkind: invalid seal")

// Faker is a consensus engine that accepts every header unless RejectAll is
// set, mirroring the teacher's own consensus/ethash.NewFaker() test double:
// something cheap enough to drive concurrency and pipeline-ordering tests
// without paying for real proof-of-work.
type Faker struct {
	// RejectAll, when set, makes VerifySeal fail every header with
	// ErrBadSeal — used to exercise the Other verification-error path.
	RejectAll bool
}

// NewFaker returns a Faker that accepts every header.
func NewFaker() *Faker { return &Faker{} }

func (f *Faker) Name() string { return "faker" }

func (f *Faker) VerifySeal(h *Header) error {
	if f.RejectAll {
		return ErrBadSeal
	}
	return nil
}

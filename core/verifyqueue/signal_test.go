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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalFiresOncePerEpoch(t *testing.T) {
	ch := make(chan Opcode, 1)
	var deleting atomic.Bool
	s := newSignal(ch, &deleting)

	s.setSync()
	s.setSync() // second call must be a no-op: channel has room for exactly one message

	select {
	case op := <-ch:
		require.Equal(t, BlockVerified, op)
	case <-time.After(time.Second):
		t.Fatal("signal never fired")
	}

	select {
	case <-ch:
		t.Fatal("signal fired twice in one epoch")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignalResetRearms(t *testing.T) {
	ch := make(chan Opcode, 1)
	var deleting atomic.Bool
	s := newSignal(ch, &deleting)

	s.setSync()
	<-ch
	s.reset()
	s.setSync()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("signal did not re-arm after reset")
	}
}

func TestSignalNoopWhileDeleting(t *testing.T) {
	ch := make(chan Opcode, 1)
	var deleting atomic.Bool
	deleting.Store(true)
	s := newSignal(ch, &deleting)

	s.setSync()
	select {
	case <-ch:
		t.Fatal("signal fired while deleting")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignalAsyncDelivers(t *testing.T) {
	ch := make(chan Opcode, 1)
	var deleting atomic.Bool
	s := newSignal(ch, &deleting)

	s.setAsync()
	select {
	case op := <-ch:
		require.Equal(t, BlockVerified, op)
	case <-time.After(time.Second):
		t.Fatal("async signal never fired")
	}
}

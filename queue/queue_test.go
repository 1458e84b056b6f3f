// Copyright (c) 2020-2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ot-tsch/tsch/types"
)

func addr(b byte) types.Addr {
	var a types.Addr
	a[7] = b
	return a
}

func TestEnqueueIsFIFO(t *testing.T) {
	s := NewStore()
	dest := addr(1)

	p1, err := s.Enqueue(dest, []byte("a"), 1, nil, nil)
	assert.NoError(t, err)
	p2, err := s.Enqueue(dest, []byte("b"), 2, nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, p1, s.Head(dest))
	assert.Equal(t, p1, s.Pop(dest))
	assert.Equal(t, p2, s.Head(dest))
	assert.Equal(t, p2, s.Pop(dest))
	assert.Nil(t, s.Pop(dest))
}

func TestQueueFullRejectsEnqueue(t *testing.T) {
	s := NewStore()
	dest := addr(1)

	for i := 0; i < types.QueueSize-1; i++ {
		_, err := s.Enqueue(dest, []byte{byte(i)}, uint8(i), nil, nil)
		assert.NoError(t, err)
	}
	_, err := s.Enqueue(dest, []byte("overflow"), 99, nil, nil)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestPopResetsBackoffWhenDrained(t *testing.T) {
	s := NewStore()
	dest := addr(1)
	nq := s.Add(dest)
	nq.BE = types.MaxBE
	nq.BW = 3

	_, err := s.Enqueue(dest, []byte("a"), 1, nil, nil)
	assert.NoError(t, err)
	s.Pop(dest)

	assert.EqualValues(t, types.MinBE, nq.BE)
	assert.EqualValues(t, 0, nq.BW)
}

func TestBackoffInvariantsHoldAcrossRange(t *testing.T) {
	nq := newNeighborQueue(addr(1))
	for be := uint8(types.MinBE); be <= types.MaxBE; be++ {
		nq.BE = be
		for bw := uint8(0); bw < (1 << be); bw++ {
			nq.BW = bw
			nq.checkInvariants()
		}
	}
}

func TestRoundRobinCyclesFairlyAmongPending(t *testing.T) {
	s := NewStore()
	a1, a2, a3 := addr(1), addr(2), addr(3)

	_, _ = s.Enqueue(a1, []byte("x"), 1, nil, nil)
	_, _ = s.Enqueue(a2, []byte("y"), 1, nil, nil)
	_, _ = s.Enqueue(a3, []byte("z"), 1, nil, nil)

	seen := map[types.Addr]int{}
	for i := 0; i < 6; i++ {
		nq := s.RoundRobinNextPending()
		assert.NotNil(t, nq)
		seen[nq.Addr]++
	}
	assert.Equal(t, 2, seen[a1])
	assert.Equal(t, 2, seen[a2])
	assert.Equal(t, 2, seen[a3])
}

func TestRoundRobinDoesNotSkipBackedOffNeighbors(t *testing.T) {
	s := NewStore()
	a1, a2 := addr(1), addr(2)

	_, _ = s.Enqueue(a1, []byte("x"), 1, nil, nil)
	_, _ = s.Enqueue(a2, []byte("y"), 1, nil, nil)
	s.Get(a1).BW = 1 // still in backoff window; the slot decision handles that

	nq := s.RoundRobinNextPending()
	assert.NotNil(t, nq)
	assert.Equal(t, a1, nq.Addr)
}

func TestRoundRobinReturnsNilWhenNothingPending(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.RoundRobinNextPending())

	dest := addr(1)
	s.Add(dest)
	assert.Nil(t, s.RoundRobinNextPending())
}

func TestCompleteInvokesCallbackWithStatus(t *testing.T) {
	var gotStatus types.MacStatus
	var gotTx uint8
	cb := func(p *TxPacket, status types.MacStatus, transmissions uint8) {
		gotStatus = status
		gotTx = transmissions
	}

	s := NewStore()
	dest := addr(1)
	p, _ := s.Enqueue(dest, []byte("a"), 1, cb, "ctx")
	p.Transmissions = 3
	p.Complete(types.MacStatusNoAck)

	assert.Equal(t, types.MacStatusNoAck, gotStatus)
	assert.EqualValues(t, 3, gotTx)
	assert.Equal(t, "ctx", p.Context())
}

func TestRemoveDropsQueueAndCursor(t *testing.T) {
	s := NewStore()
	a1, a2 := addr(1), addr(2)
	s.Add(a1)
	s.Add(a2)
	assert.Equal(t, 2, s.Len())

	s.Remove(a1)
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Get(a1))
}

func TestBeginEndMutationPanicsOnReentry(t *testing.T) {
	s := NewStore()
	s.BeginMutation()
	defer s.EndMutation()

	assert.Panics(t, func() {
		s.BeginMutation()
	})
}

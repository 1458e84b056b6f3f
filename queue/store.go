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
	"github.com/pkg/errors"

	"github.com/ot-tsch/tsch/logger"
	"github.com/ot-tsch/tsch/types"
)

// ErrUnknownNeighbor names the error for a neighbor that has no queue
// in the Store. No Store operation returns it: Get, Head and Pop report
// an unknown neighbor with nil, and Enqueue creates the queue.
var ErrUnknownNeighbor = errors.New("queue: unknown neighbor")

// ErrQueueFull is returned by Enqueue when a neighbor's ring is full.
var ErrQueueFull = errors.New("queue: neighbor queue full")

// Store owns the set of per-neighbor queues and the round-robin cursor
// used to pick a contender on a shared broadcast cell. It is driven
// single-threaded from the slot state machine; the busy flag below is
// cooperative bookkeeping, not a mutex.
type Store struct {
	neighbors map[types.Addr]*NeighborQueue
	order     []types.Addr // insertion order, stable round-robin base
	cursor    int

	busy bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		neighbors: make(map[types.Addr]*NeighborQueue),
	}
}

// BeginMutation marks the store as being mutated by the caller. It
// panics if called while already busy: the MAC driver is expected to
// run single-threaded within one radio event, so re-entrant mutation
// signals a logic error, not contention.
func (s *Store) BeginMutation() {
	logger.AssertFalse(s.busy)
	s.busy = true
}

// EndMutation clears the busy flag set by BeginMutation.
func (s *Store) EndMutation() {
	logger.AssertTrue(s.busy)
	s.busy = false
}

// Busy reports whether the store is currently mid-mutation. The slot
// state machine consults this at the top of every slot and treats the
// slot as OFF while true.
func (s *Store) Busy() bool {
	return s.busy
}

// Get returns the neighbor's queue, or nil if it has none.
func (s *Store) Get(addr types.Addr) *NeighborQueue {
	return s.neighbors[addr]
}

// Add creates an empty queue for addr if it does not already have one,
// and returns it either way.
func (s *Store) Add(addr types.Addr) *NeighborQueue {
	if nq, ok := s.neighbors[addr]; ok {
		return nq
	}
	nq := newNeighborQueue(addr)
	s.neighbors[addr] = nq
	s.order = append(s.order, addr)
	return nq
}

// Remove drops addr's queue entirely, discarding any packets still
// pending in it.
func (s *Store) Remove(addr types.Addr) {
	if _, ok := s.neighbors[addr]; !ok {
		return
	}
	delete(s.neighbors, addr)
	for i, a := range s.order {
		if a == addr {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.cursor >= len(s.order) {
		s.cursor = 0
	}
}

// Enqueue appends a new packet to addr's queue, creating the queue if
// it doesn't exist yet.
func (s *Store) Enqueue(addr types.Addr, frame []byte, seq uint8, cb SentCallback, ctx interface{}) (*TxPacket, error) {
	nq := s.Add(addr)
	p := NewTxPacket(frame, addr, seq, cb, ctx)
	if !nq.push(p) {
		return nil, errors.Wrapf(ErrQueueFull, "neighbor %s", addr)
	}
	return p, nil
}

// Head returns the head packet of addr's queue, or nil if it has none
// or is empty.
func (s *Store) Head(addr types.Addr) *TxPacket {
	nq := s.Get(addr)
	if nq == nil {
		return nil
	}
	return nq.Head()
}

// Pop removes and returns the head packet of addr's queue. If the
// queue drains to empty, the neighbor's backoff state resets to its
// minimum.
func (s *Store) Pop(addr types.Addr) *TxPacket {
	nq := s.Get(addr)
	if nq == nil {
		return nil
	}
	p := nq.Pop()
	if nq.Empty() {
		nq.resetBackoffToMin()
	}
	return p
}

// RoundRobinNextPending scans neighbors starting just after the last
// one served, in insertion order, and returns the first with any
// pending packet, regardless of backoff state. It advances the cursor
// past whatever it returns, so repeated calls cycle fairly across
// contending neighbors on a shared broadcast cell. Backoff (bw > 0)
// does not exclude a neighbor here; it is the slot decision step's job
// to turn a still-backed-off pick into a TX_BACKOFF slot instead of an
// actual transmission.
func (s *Store) RoundRobinNextPending() *NeighborQueue {
	n := len(s.order)
	if n == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		idx := (s.cursor + i) % n
		nq := s.neighbors[s.order[idx]]
		if nq != nil && !nq.Empty() {
			s.cursor = (idx + 1) % n
			return nq
		}
	}
	return nil
}

// Len returns the number of neighbors with a queue, used mainly by tests.
func (s *Store) Len() int {
	return len(s.order)
}

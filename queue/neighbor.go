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
	"github.com/ot-tsch/tsch/logger"
	"github.com/ot-tsch/tsch/types"
)

// ringMask masks an index into [0, types.QueueSize), relying on
// QueueSize being a power of two.
const ringMask = types.QueueSize - 1

// NeighborQueue holds one neighbor's pending outbound packets and its
// CSMA backoff state.
type NeighborQueue struct {
	Addr       types.Addr
	TimeSource bool

	BE uint8 // backoff exponent, MinBE..MaxBE
	BW uint8 // backoff counter, < 1<<BE

	ring     [types.QueueSize]*TxPacket
	put, get uint8
}

func newNeighborQueue(addr types.Addr) *NeighborQueue {
	return &NeighborQueue{
		Addr: addr,
		BE:   types.MinBE,
	}
}

// occupancy returns the number of packets currently queued.
func (n *NeighborQueue) occupancy() uint8 {
	return (n.put - n.get) & ringMask
}

// Empty reports whether the ring holds no packets.
func (n *NeighborQueue) Empty() bool {
	return n.occupancy() == 0
}

// full reports whether the ring has no room for another packet. One
// slot is always reserved to distinguish "empty" from "full" with
// plain index equality, the classic circular-buffer discipline.
func (n *NeighborQueue) full() bool {
	return n.occupancy() == ringMask
}

// push appends p to the tail of the ring, returning false if full.
func (n *NeighborQueue) push(p *TxPacket) bool {
	if n.full() {
		return false
	}
	n.ring[n.put&ringMask] = p
	n.put++
	return true
}

// Head returns the packet at the head of the ring, or nil if empty.
func (n *NeighborQueue) Head() *TxPacket {
	if n.Empty() {
		return nil
	}
	return n.ring[n.get&ringMask]
}

// Pop removes and returns the head packet, or nil if empty.
func (n *NeighborQueue) Pop() *TxPacket {
	if n.Empty() {
		return nil
	}
	p := n.ring[n.get&ringMask]
	n.ring[n.get&ringMask] = nil
	n.get++
	return p
}

// resetBackoffToMin resets BE/BW to their minimal values, done by
// Store.Pop whenever a neighbor's queue drains.
func (n *NeighborQueue) resetBackoffToMin() {
	n.BE = types.MinBE
	n.BW = 0
}

// checkInvariants is used by tests to assert the backoff exponent and
// window stay within their bounds.
func (n *NeighborQueue) checkInvariants() {
	logger.AssertTrue(n.BE >= types.MinBE && n.BE <= types.MaxBE)
	logger.AssertTrue(n.BW < (1 << n.BE))
}

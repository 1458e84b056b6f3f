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

package mac

import (
	"github.com/ot-tsch/tsch/tick"
	"github.com/ot-tsch/tsch/types"
)

// AssocState is the coarse state of the 802.15.4e state machine.
// Association/scan is stubbed: every Mac starts already synchronized.
type AssocState uint8

const (
	StateOff AssocState = iota
	StateAssociated
)

// ieee154e is the process-wide singleton MAC state: ASN, the two MAC
// sequence counters, sync status and the timestamp the last slot
// boundary was captured at.
type ieee154e struct {
	asn          uint64
	dsn          uint8
	ebsn         uint8
	isSync       bool
	state        AssocState
	joinPriority uint8
	capturedTime tick.Tick
}

// nextSeq advances a MAC sequence counter, never letting it land on
// the wire as zero: if the increment wraps to zero, it is incremented
// a second time.
func nextSeq(seq *uint8) uint8 {
	*seq++
	if *seq == 0 {
		*seq++
	}
	return *seq
}

// seqnoEntry is one record in the received-seqno duplicate-suppression
// ring.
type seqnoEntry struct {
	sender types.Addr
	seq    uint8
	valid  bool
}

// seqnoRing is the fixed-size, most-recent-first history Input
// consults to drop duplicate deliveries.
type seqnoRing struct {
	entries [types.SeqnoHistory]seqnoEntry
}

// seen reports whether (sender, seq) already appears in the ring.
func (r *seqnoRing) seen(sender types.Addr, seq uint8) bool {
	for _, e := range r.entries {
		if e.valid && e.sender == sender && e.seq == seq {
			return true
		}
	}
	return false
}

// insert shifts the ring down (oldest entry falls off the end) and
// records (sender, seq) at position 0, the new most-recent slot.
func (r *seqnoRing) insert(sender types.Addr, seq uint8) {
	for i := len(r.entries) - 1; i > 0; i-- {
		r.entries[i] = r.entries[i-1]
	}
	r.entries[0] = seqnoEntry{sender: sender, seq: seq, valid: true}
}

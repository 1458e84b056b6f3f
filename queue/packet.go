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

// Package queue implements the per-neighbor transmit queues and CSMA
// backoff state: a fixed-capacity ring of pending outbound packets per
// neighbor, plus the round-robin cursor shared broadcast slots use to
// pick among contending neighbors.
package queue

import (
	"github.com/ot-tsch/tsch/types"
)

// SentCallback is invoked once a TxPacket reaches a final status.
type SentCallback func(p *TxPacket, status types.MacStatus, transmissions uint8)

// TxPacket owns one serialized outbound frame. It lives from enqueue
// until either it is acknowledged/sent (MacStatusOK) or it has been
// attempted types.MaxRetries times.
type TxPacket struct {
	Frame         []byte
	Dest          types.Addr
	Seq           uint8
	Transmissions uint8
	Status        types.MacStatus
	cb            SentCallback
	ctx           interface{}
}

// NewTxPacket wraps frame for transmission to dest, with the given
// completion callback and opaque context.
func NewTxPacket(frame []byte, dest types.Addr, seq uint8, cb SentCallback, ctx interface{}) *TxPacket {
	return &TxPacket{
		Frame:  frame,
		Dest:   dest,
		Seq:    seq,
		Status: types.MacStatusDeferred,
		cb:     cb,
		ctx:    ctx,
	}
}

// Context returns the opaque context given at enqueue time.
func (p *TxPacket) Context() interface{} {
	return p.ctx
}

// Complete records the final status and invokes the completion callback.
func (p *TxPacket) Complete(status types.MacStatus) {
	p.Status = status
	if p.cb != nil {
		p.cb(p, status, p.Transmissions)
	}
}

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

// (file continues the mac package; see mac.go for the façade)

package mac

import (
	"github.com/ot-tsch/tsch/logger"
	"github.com/ot-tsch/tsch/queue"
	"github.com/ot-tsch/tsch/types"
)

// txEvent is one posted completion: a packet that just reached a final
// status, waiting to be handed to the upper layer's sent-callback.
type txEvent struct {
	packet        *queue.TxPacket
	status        types.MacStatus
	transmissions uint8
}

// callbackDispatcher decouples the slot state machine from upper-layer
// completion callbacks: the state machine runs in a time-critical
// context and must never invoke arbitrary upper-layer code inline, so
// it posts completions here and a separate poll step drains them.
// Modeled as a plain slice of pending events rather than a goroutine + channel,
// matching this module's single-threaded, cooperative scheduling model.
type callbackDispatcher struct {
	pending []txEvent
}

// Post enqueues a completion for later dispatch. Called only from the
// powercycle state machine once a packet's outcome is final.
func (d *callbackDispatcher) post(p *queue.TxPacket, status types.MacStatus, transmissions uint8) {
	d.pending = append(d.pending, txEvent{packet: p, status: status, transmissions: transmissions})
}

// Poll drains every posted completion, invoking each packet's
// sent-callback. Intended to run from the main task, never from the
// radio-timer ISR context the powercycle runs in.
func (d *callbackDispatcher) poll() {
	if len(d.pending) == 0 {
		return
	}
	batch := d.pending
	d.pending = nil
	for _, ev := range batch {
		logger.Debugf("mac: dispatching sent-callback dest=%s status=%s tx=%d",
			ev.packet.Dest, ev.status, ev.transmissions)
		ev.packet.Complete(ev.status)
	}
}

// Pending reports how many completions are waiting for Poll, mainly
// for tests asserting the dispatcher actually defers delivery.
func (d *callbackDispatcher) Pending() int {
	return len(d.pending)
}

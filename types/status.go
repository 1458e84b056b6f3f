// Copyright (c) 2020-2023, The OTNS Authors.
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

package types

// MacStatus is the final disposition of a TxPacket, delivered to the
// upper layer via the MAC sent-callback.
type MacStatus uint8

const (
	MacStatusDeferred  MacStatus = iota // still queued, no outcome yet
	MacStatusOK                         // acknowledged (or broadcast, sent)
	MacStatusNoAck                      // no ACK received within the window
	MacStatusCollision                  // CCA found the channel busy
	MacStatusErr                        // radio-reported error
)

func (s MacStatus) String() string {
	switch s {
	case MacStatusDeferred:
		return "DEFERRED"
	case MacStatusOK:
		return "OK"
	case MacStatusNoAck:
		return "NOACK"
	case MacStatusCollision:
		return "COLLISION"
	case MacStatusErr:
		return "ERR"
	default:
		return "INVALID"
	}
}

// RadioState mirrors the four logical states energy accounting and the
// powercycle state machine drive the radio through.
type RadioState byte

const (
	RadioDisabled RadioState = 0
	RadioSleep    RadioState = 1
	RadioRx       RadioState = 2
	RadioTx       RadioState = 3
)

func (s RadioState) String() string {
	switch s {
	case RadioDisabled:
		return "Off"
	case RadioSleep:
		return "Slp"
	case RadioRx:
		return "Rx_"
	case RadioTx:
		return "Tx_"
	default:
		return "INVALID"
	}
}

// SchedulerStatus is returned by tick.Scheduler.ScheduleAt.
type SchedulerStatus uint8

const (
	SchedulerOK          SchedulerStatus = iota
	SchedulerMissed                      // deadline already passed max_allowable_delta
	SchedulerHardwareErr                 // underlying timer rejected the arm request
)

func (s SchedulerStatus) String() string {
	switch s {
	case SchedulerOK:
		return "OK"
	case SchedulerMissed:
		return "MISSED"
	case SchedulerHardwareErr:
		return "HARDWARE_ERR"
	default:
		return "INVALID"
	}
}

// Fixed protocol constants for the TSCH MAC.
const (
	MaxRetries    = 4 // MAX_RETRIES
	MinBE         = 1 // MIN_BE
	MaxBE         = 4 // MAX_BE
	QueueSize     = 8 // QUEUE_SIZE, must be a power of two
	SeqnoHistory  = 8 // SEQNO_HISTORY
	AckLen        = 3 // ACK_LEN: FCF(2) + seqno(1)
	ExtraAckLen   = 4 // EXTRA_ACK_LEN: sync IE
	MinChannel    = 11
	MaxChannel    = 26
	NumChannels   = MaxChannel - MinChannel + 1 // 16, the 2.4GHz channel table
)

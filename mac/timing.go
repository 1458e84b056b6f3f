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

import "github.com/ot-tsch/tsch/tick"

// Timing holds the offsets that shape one TSCH slot template: when CCA
// starts, when the frame goes out, how long to wait for an ACK, and so
// on. Values are in radio-timer ticks. The exact figures depend on the
// radio in use, so these are defaults for a generic ~32.768kHz timer,
// not a specific chip's datasheet numbers.
type Timing struct {
	TsCCAOffset    int32
	TsCCA          int32
	TsTxOffset     int32
	TsRxOffset     int32
	TsTxAckDelay   int32
	TsShortGT      int32
	TsLongGT       int32
	TsSlotDuration int32
	DelayTx        int32
	DelayRx        int32
	WdDataDuration int32
	WdAckDuration  int32
}

// DefaultTiming returns the template this module ships with.
func DefaultTiming() Timing {
	return Timing{
		TsCCAOffset:    10,
		TsCCA:          4,
		TsTxOffset:     40,
		TsRxOffset:     30,
		TsTxAckDelay:   50,
		TsShortGT:      6,
		TsLongGT:       10,
		TsSlotDuration: 328,
		DelayTx:        2,
		DelayRx:        2,
		WdDataDuration: 40,
		WdAckDuration:  20,
	}
}

// SlotDecision is the per-slot choice the powercycle state machine
// computes before driving the radio.
type SlotDecision uint8

const (
	DecisionOff SlotDecision = iota
	DecisionTX
	DecisionTXIdle
	DecisionTXBackoff
	DecisionRX
)

func (d SlotDecision) String() string {
	switch d {
	case DecisionOff:
		return "OFF"
	case DecisionTX:
		return "TX"
	case DecisionTXIdle:
		return "TX_IDLE"
	case DecisionTXBackoff:
		return "TX_BACKOFF"
	case DecisionRX:
		return "RX"
	default:
		return "INVALID"
	}
}

// TimerSlot names the scheduler deadline that wakes the powercycle at
// the start of the next timeslot.
const TimerSlot tick.TimerID = "slot"

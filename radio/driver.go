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

// Package radio defines the contract the MAC core requires from an
// IEEE 802.15.4 radio. This module never implements a hardware
// driver: mac consumes this interface and radio/fake provides a
// deterministic stand-in for tests.
package radio

import (
	"github.com/ot-tsch/tsch/tick"
)

// TxResult is the outcome of a Transmit call, mirroring what a real
// radio's TX-done interrupt reports.
type TxResult uint8

const (
	TxResultOK        TxResult = iota
	TxResultCollision          // CCA found the channel busy
	TxResultErr                // hardware-reported failure
	TxResultNoAck              // frame went out but no ACK arrived in time
)

func (r TxResult) String() string {
	switch r {
	case TxResultOK:
		return "OK"
	case TxResultCollision:
		return "COLLISION"
	case TxResultErr:
		return "ERR"
	case TxResultNoAck:
		return "NOACK"
	default:
		return "UNKNOWN"
	}
}

// MakeAckFunc synthesizes an ACK payload for a just-received frame.
// It is invoked from the radio's receive path (conceptually an ISR)
// and must not block; captureStart/captureEnd are the SFD timestamps
// of the frame being acknowledged.
type MakeAckFunc func(frame []byte, captureStart, captureEnd tick.Tick) []byte

// ResumeFunc is invoked once the synthesized ACK has gone out, so the
// subscriber can fold the transmission into its own bookkeeping.
type ResumeFunc func()

// Driver is the radio contract the MAC core drives. All operations
// are expected to be non-blocking; Transmit, Read and ReadAck report
// their outcome synchronously relative to when the caller invokes
// them, matching how the slot state machine polls the radio on its
// own deadlines rather than waiting on it.
type Driver interface {
	On() error
	Off() error
	SetChannel(ch int) error
	Prepare(buf []byte) error
	Transmit() (TxResult, error)
	ReceivingPacket() bool
	PendingPacket() bool
	ChannelClear() (bool, error)
	Read(buf []byte) (int, error)
	ReadAck(buf []byte) (int, error)
	SFDSync(captureStart, captureEnd tick.Tick)
	GetRxEndTime() tick.Tick
	ReadSFDTimer() tick.Tick
	SendAck(buf []byte) error
	SoftAckSubscribe(makeAck MakeAckFunc, resume ResumeFunc)
	PendingIRQ() bool
}

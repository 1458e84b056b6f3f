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

// Package syncie encodes and decodes the Sync Information Element
// carried in TSCH ACKs: a signed 12-bit clock-drift value in
// microseconds plus a NACK flag, in a fixed 4-byte wire layout.
package syncie

import (
	"fmt"

	"github.com/ot-tsch/tsch/wpanframe"
)

// Len is the wire length of an encoded Sync IE: 2-byte IE header plus
// 2-byte status field (EXTRA_ACK_LEN).
const Len = 4

// MaxDriftMicros is the largest magnitude a drift value can carry in
// the 11-bit magnitude field.
const MaxDriftMicros = 2047

const (
	statusMagnitudeMask = 0x07ff // bits 0-10
	statusSignBit       = 0x0800 // bit 11
	statusNackBit       = 0x8000 // bit 15
)

// TicksToMicros converts a tick delta to microseconds using a fixed
// radio-clock ratio (~32.768kHz): micros = ticks * 3051 / 100.
// Arithmetic is done in 32-bit signed precision before any truncation.
func TicksToMicros(ticks int32) int32 {
	return ticks * 3051 / 100
}

// MicrosToTicks is the inverse conversion, rounded rather than
// truncated to the nearest tick: an averaged drift correction in
// microseconds gets applied back onto the tick-counted slot duration.
func MicrosToTicks(micros int32) int32 {
	num := int64(micros) * 100
	den := int64(3051)
	if num >= 0 {
		return int32((num + den/2) / den)
	}
	return int32((num - den/2) / den)
}

// clampMicros saturates a microsecond drift value to the representable
// signed 12-bit range.
func clampMicros(micros int32) int32 {
	if micros > MaxDriftMicros {
		return MaxDriftMicros
	}
	if micros < -MaxDriftMicros {
		return -MaxDriftMicros
	}
	return micros
}

// EncodeMicros builds the 4-byte Sync IE for a drift of driftMicros
// microseconds (clamped to ±MaxDriftMicros) and the given NACK flag.
func EncodeMicros(driftMicros int32, nack bool) [Len]byte {
	driftMicros = clampMicros(driftMicros)

	var status uint16
	if driftMicros < 0 {
		status = uint16(-driftMicros) & statusMagnitudeMask
		status |= statusSignBit
	} else {
		status = uint16(driftMicros) & statusMagnitudeMask
	}
	if nack {
		status |= statusNackBit
	}

	var out [Len]byte
	out[0] = wpanframe.SyncIEHeader[0]
	out[1] = wpanframe.SyncIEHeader[1]
	out[2] = byte(status)
	out[3] = byte(status >> 8)
	return out
}

// Encode builds the 4-byte Sync IE for a drift of driftTicks radio-timer
// ticks, converting to microseconds first with TicksToMicros.
func Encode(driftTicks int32, nack bool) [Len]byte {
	return EncodeMicros(TicksToMicros(driftTicks), nack)
}

// DecodeMicros parses a 4-byte Sync IE and returns the signed drift in
// microseconds and the NACK flag. It returns an error if the 2-byte IE
// header does not match the fixed Sync IE type.
func DecodeMicros(b [Len]byte) (driftMicros int32, nack bool, err error) {
	if b[0] != wpanframe.SyncIEHeader[0] || b[1] != wpanframe.SyncIEHeader[1] {
		return 0, false, fmt.Errorf("syncie: bad IE header %02x%02x", b[0], b[1])
	}
	status := uint16(b[2]) | uint16(b[3])<<8
	nack = status&statusNackBit != 0
	magnitude := int32(status & statusMagnitudeMask)
	if status&statusSignBit != 0 {
		magnitude = -magnitude
	}
	return magnitude, nack, nil
}

// Decode parses a 4-byte Sync IE and returns the signed drift converted
// back to radio-timer ticks, and the NACK flag.
func Decode(b [Len]byte) (driftTicks int32, nack bool, err error) {
	micros, nack, err := DecodeMicros(b)
	if err != nil {
		return 0, false, err
	}
	return MicrosToTicks(micros), nack, nil
}

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

// Package framer implements the narrow 802.15.4 data-frame framer
// contract the MAC core consumes: Create() serializes a PacketBuf into
// a link frame, Parse() does the reverse. A full 802.15.4 framer
// (security headers, IE lists, short addressing) is out of scope; this
// covers exactly what the powercycle and input path need to drive
// TX/RX choreography.
package framer

import (
	"fmt"

	"github.com/ot-tsch/tsch/types"
	"github.com/ot-tsch/tsch/wpanframe"
)

// HeaderLen is the fixed header size Create prepends: 2-byte FCF,
// 1-byte sequence number, 8-byte destination, 8-byte source.
const HeaderLen = 2 + 1 + 8 + 8

// PacketBuf mirrors the single outstanding outgoing/incoming packet
// buffer the upper MAC hands down, stripped to the fields this
// module's framer needs.
type PacketBuf struct {
	Dest         types.Addr
	Source       types.Addr
	Seq          uint8
	AckRequested bool
	Payload      []byte
}

// Framer serializes and deserializes the data frames this MAC sends
// and receives: Create packs a PacketBuf into a link frame; Parse
// unpacks one. Both report failure via error rather than a
// negative-status return code.
type Framer interface {
	Create(pb *PacketBuf) ([]byte, error)
	Parse(frame []byte) (*PacketBuf, error)
}

// Default is the framer this module ships: a flat data-frame layout
// with no security, no IE list, no short addressing, built on
// wpanframe's frame-control bitfields with a header-then-payload
// layout.
type Default struct{}

func (Default) Create(pb *PacketBuf) ([]byte, error) {
	fc := wpanframe.FrameControl(wpanframe.FrameTypeData)
	fc |= 2 << 12 // frame version 2, matching the ACK frames this MAC emits
	if pb.AckRequested {
		fc |= 0x0020
	}

	frame := make([]byte, HeaderLen, HeaderLen+len(pb.Payload))
	frame[0] = byte(fc)
	frame[1] = byte(fc >> 8)
	frame[2] = pb.Seq
	copy(frame[3:11], pb.Dest[:])
	copy(frame[11:19], pb.Source[:])
	frame = append(frame, pb.Payload...)
	return frame, nil
}

func (Default) Parse(frame []byte) (*PacketBuf, error) {
	if len(frame) < HeaderLen {
		return nil, fmt.Errorf("framer: frame too short (%d bytes)", len(frame))
	}
	fc := wpanframe.FrameControl(uint16(frame[0]) | uint16(frame[1])<<8)
	if fc.FrameType() != wpanframe.FrameTypeData {
		return nil, fmt.Errorf("framer: not a data frame (type %d)", fc.FrameType())
	}

	pb := &PacketBuf{
		Seq:          frame[2],
		AckRequested: fc.AckRequest(),
		Payload:      append([]byte(nil), frame[HeaderLen:]...),
	}
	copy(pb.Dest[:], frame[3:11])
	copy(pb.Source[:], frame[11:19])
	return pb, nil
}

var _ Framer = Default{}

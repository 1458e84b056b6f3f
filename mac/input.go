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
	"github.com/ot-tsch/tsch/framer"
	"github.com/ot-tsch/tsch/logger"
)

// UpperMACInput is the contract the upper MAC/network layer exposes
// for delivered frames.
type UpperMACInput func(pb *framer.PacketBuf)

// Input parses a frame handed up from the radio, filters it and, if it
// is new, hands it to the upper MAC. Decryption is delegated and is
// not modeled here.
//
// Steps:
//  1. parse via the framer; drop silently on failure (PARSE_FAIL).
//  2. if address filtering is on, drop unless we are the destination
//     or it is broadcast.
//  3. drop as a duplicate if (sender, seq) is already in the ring.
//  4. otherwise insert into the ring and deliver upward.
func (m *Mac) Input(frame []byte) {
	pb, err := m.framer.Parse(frame)
	if err != nil {
		logger.Debugf("mac: input parse failed, dropping: %v", err)
		return
	}

	if m.addrFilter && !pb.Dest.IsBroadcast() && pb.Dest != m.addr {
		logger.Debugf("mac: input not addressed to us, dropping")
		return
	}

	if m.seqHist.seen(pb.Source, pb.Seq) {
		logger.Debugf("mac: duplicate frame from %s seq=%d, dropping", pb.Source, pb.Seq)
		return
	}
	m.seqHist.insert(pb.Source, pb.Seq)

	if m.upperInput != nil {
		m.upperInput(pb)
	}
}

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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ot-tsch/tsch/types"
)

func TestNextSeqNeverLandsOnZero(t *testing.T) {
	var seq uint8
	for i := 0; i < 512; i++ {
		s := nextSeq(&seq)
		assert.NotZero(t, s)
	}
}

func TestNextSeqSkipsZeroOnWrap(t *testing.T) {
	seq := uint8(254)
	assert.EqualValues(t, 255, nextSeq(&seq))
	assert.EqualValues(t, 1, nextSeq(&seq)) // 255 wraps to 0, bumped to 1
}

func TestSeqnoRingDropsDuplicates(t *testing.T) {
	var r seqnoRing
	a := types.Addr{1}
	b := types.Addr{2}

	assert.False(t, r.seen(a, 5))
	r.insert(a, 5)
	assert.True(t, r.seen(a, 5))
	assert.False(t, r.seen(a, 6))
	assert.False(t, r.seen(b, 5))
}

func TestSeqnoRingEvictsOldestPastHistory(t *testing.T) {
	var r seqnoRing
	a := types.Addr{1}

	for i := 0; i < types.SeqnoHistory; i++ {
		r.insert(a, uint8(i))
	}
	assert.True(t, r.seen(a, 0))

	r.insert(a, 200) // pushes seq 0 out of the fixed-size history
	assert.False(t, r.seen(a, 0))
	assert.True(t, r.seen(a, 200))
}

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

package syncie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeMicrosHeader(t *testing.T) {
	b := EncodeMicros(100, false)
	assert.Equal(t, byte(0x02), b[0])
	assert.Equal(t, byte(0x1e), b[1])
}

func TestRoundtripMicrosPositive(t *testing.T) {
	b := EncodeMicros(305, false)
	micros, nack, err := DecodeMicros(b)
	assert.NoError(t, err)
	assert.False(t, nack)
	assert.Equal(t, int32(305), micros)
}

func TestRoundtripMicrosNegativeWithNack(t *testing.T) {
	b := EncodeMicros(-1200, true)
	micros, nack, err := DecodeMicros(b)
	assert.NoError(t, err)
	assert.True(t, nack)
	assert.Equal(t, int32(-1200), micros)
}

func TestClampToMaxMagnitude(t *testing.T) {
	b := EncodeMicros(5000, false)
	micros, _, err := DecodeMicros(b)
	assert.NoError(t, err)
	assert.Equal(t, int32(MaxDriftMicros), micros)

	b = EncodeMicros(-5000, false)
	micros, _, err = DecodeMicros(b)
	assert.NoError(t, err)
	assert.Equal(t, int32(-MaxDriftMicros), micros)
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	b := EncodeMicros(10, false)
	b[0] = 0xff
	_, _, err := DecodeMicros(b)
	assert.Error(t, err)
}

// TestEncodeMicrosKnownDriftValue pins a reported drift of +305us to
// its known encoding: 305 = 0x131 in the magnitude bits, so
// status_lo=0x31 status_hi=0x01.
func TestEncodeMicrosKnownDriftValue(t *testing.T) {
	b := EncodeMicros(305, false)
	assert.Equal(t, byte(0x31), b[2])
	assert.Equal(t, byte(0x01), b[3])
}

func TestMicrosToTicksRoundsToNearest(t *testing.T) {
	ticks := MicrosToTicks(305)
	assert.Equal(t, int32(10), ticks) // round(305*100/3051) = round(9.997) = 10
}

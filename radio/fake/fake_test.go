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

package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ot-tsch/tsch/radio"
	"github.com/ot-tsch/tsch/tick"
	"github.com/ot-tsch/tsch/types"
)

func TestOnOffAndChannelRange(t *testing.T) {
	d := New()
	assert.Equal(t, types.RadioDisabled, d.State())

	require.NoError(t, d.On())
	assert.Equal(t, types.RadioSleep, d.State())

	assert.Error(t, d.SetChannel(5))
	require.NoError(t, d.SetChannel(20))
	assert.Equal(t, 20, d.Channel())

	require.NoError(t, d.Off())
	assert.Equal(t, types.RadioDisabled, d.State())
}

func TestPrepareRequiresRadioOn(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.Prepare([]byte("x")), ErrNotOn)

	require.NoError(t, d.On())
	require.NoError(t, d.Prepare([]byte("x")))
	assert.Equal(t, types.RadioTx, d.State())
}

func TestTransmitPlaysBackScriptedResults(t *testing.T) {
	d := New()
	require.NoError(t, d.On())
	d.QueueTxResult(radio.TxResultOK)
	d.QueueTxResult(radio.TxResultNoAck)

	r1, err := d.Transmit()
	require.NoError(t, err)
	assert.Equal(t, radio.TxResultOK, r1)

	r2, err := d.Transmit()
	require.NoError(t, err)
	assert.Equal(t, radio.TxResultNoAck, r2)

	_, err = d.Transmit()
	assert.Error(t, err)
}

func TestReadReturnsQueuedFrames(t *testing.T) {
	d := New()
	require.NoError(t, d.On())
	d.QueueRxFrame([]byte{1, 2, 3})

	assert.True(t, d.ReceivingPacket())
	assert.True(t, d.PendingPacket())

	buf := make([]byte, 8)
	n, err := d.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, buf[:n])
	assert.False(t, d.ReceivingPacket())
}

func TestSoftAckSubscribeDrivesMakeAckAndResume(t *testing.T) {
	d := New()
	require.NoError(t, d.On())

	var resumed bool
	d.SoftAckSubscribe(func(frame []byte, start, end tick.Tick) []byte {
		return []byte{0x02, 0x02, frame[0]}
	}, func() {
		resumed = true
	})

	d.DeliverFrameForSoftAck([]byte{7}, 100, 105)
	assert.Equal(t, []byte{0x02, 0x02, 7}, d.LastAckSent())
	assert.True(t, resumed)
}

func TestSFDSyncAndRxEndTime(t *testing.T) {
	d := New()
	d.SFDSync(10, 42)
	assert.EqualValues(t, 42, d.GetRxEndTime())
	assert.EqualValues(t, 10, d.ReadSFDTimer())
}

func TestPendingIRQ(t *testing.T) {
	d := New()
	assert.False(t, d.PendingIRQ())
	d.SetPendingIRQ(true)
	assert.True(t, d.PendingIRQ())
}

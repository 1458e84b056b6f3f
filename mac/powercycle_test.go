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
	"github.com/stretchr/testify/require"

	"github.com/ot-tsch/tsch/framer"
	"github.com/ot-tsch/tsch/prng"
	"github.com/ot-tsch/tsch/queue"
	"github.com/ot-tsch/tsch/radio"
	"github.com/ot-tsch/tsch/radio/fake"
	"github.com/ot-tsch/tsch/schedule"
	"github.com/ot-tsch/tsch/tick"
	"github.com/ot-tsch/tsch/types"
	"github.com/ot-tsch/tsch/wpanframe"
)

// plainAck builds an immediate ACK with no Sync IE, acknowledging seq.
func plainAck(seq uint8) []byte {
	fc := wpanframe.AckFrameControl
	return []byte{byte(fc), byte(fc >> 8), seq}
}

func TestRunSlotUnicastAckSuccess(t *testing.T) {
	dest := testAddr(1)
	driver := fake.New()
	sf := oneCellSlotframe(dest, schedule.OptTX)
	m := newTestMac(t, sf, driver)

	var status types.MacStatus
	var tx uint8
	m.Send(dest, []byte("hello"), func(_ *queue.TxPacket, s types.MacStatus, n uint8) {
		status = s
		tx = n
	}, nil)
	seq := m.Queues().Head(dest).Seq

	driver.QueueTxResult(radio.TxResultOK)
	driver.QueueAckFrame(plainAck(seq))

	m.RunSlot(tick.Tick(0))
	m.Poll()

	assert.Equal(t, types.MacStatusOK, status)
	assert.EqualValues(t, 1, tx)
	assert.Nil(t, m.Queues().Head(dest))
}

func TestRunSlotRetriesThenDropsOnRepeatedNoAck(t *testing.T) {
	dest := testAddr(1)
	driver := fake.New()
	sf := oneCellSlotframe(dest, schedule.OptTX)
	m := newTestMac(t, sf, driver)

	var status types.MacStatus
	var tx uint8
	var calls int
	m.Send(dest, []byte("x"), func(_ *queue.TxPacket, s types.MacStatus, n uint8) {
		status = s
		tx = n
		calls++
	}, nil)

	now := tick.Tick(0)
	for i := 0; i < types.MaxRetries; i++ {
		driver.QueueTxResult(radio.TxResultNoAck)
		m.RunSlot(now)
		now += 1000
	}
	m.Poll()

	assert.Equal(t, 1, calls, "callback should fire exactly once, after the final retry")
	assert.Equal(t, types.MacStatusNoAck, status)
	assert.EqualValues(t, types.MaxRetries, tx)
	assert.Nil(t, m.Queues().Head(dest))
}

func TestRunSlotBroadcastCompletesWithoutAckWait(t *testing.T) {
	driver := fake.New()
	sf := oneCellSlotframe(types.NULL, schedule.OptTX)
	m := newTestMac(t, sf, driver)

	var status types.MacStatus
	m.Send(types.NULL, []byte("beacon-ish"), func(_ *queue.TxPacket, s types.MacStatus, _ uint8) {
		status = s
	}, nil)

	driver.QueueTxResult(radio.TxResultOK)
	m.RunSlot(tick.Tick(0))
	m.Poll()

	assert.Equal(t, types.MacStatusOK, status)
}

func TestRunSlotSharedCellAdvancesBackoffOnFailure(t *testing.T) {
	prng.Init(42)
	dest := testAddr(1)
	driver := fake.New()
	sf := oneCellSlotframe(dest, schedule.OptTX|schedule.OptShared)
	m := newTestMac(t, sf, driver)

	m.Send(dest, []byte("x"), nil, nil)
	nq := m.Queues().Get(dest)
	require.EqualValues(t, types.MinBE, nq.BE)
	require.EqualValues(t, 0, nq.BW)

	driver.QueueTxResult(radio.TxResultNoAck)
	m.RunSlot(tick.Tick(0))

	assert.EqualValues(t, types.MinBE+1, nq.BE)
	assert.Less(t, nq.BW, uint8(1)<<nq.BE)
}

func TestRunSlotOffWhenQueueBusy(t *testing.T) {
	dest := testAddr(1)
	driver := fake.New()
	sf := oneCellSlotframe(dest, schedule.OptTX)
	m := newTestMac(t, sf, driver)

	m.queues.BeginMutation()
	defer m.queues.EndMutation()

	m.RunSlot(tick.Tick(0))
	assert.Equal(t, DecisionOff, m.slot.decision)
}

func TestRunSlotRXFromTimeSourceCreditsDriftAndSendsSoftAck(t *testing.T) {
	src := testAddr(2)
	driver := fake.New()
	sf := oneCellSlotframe(src, schedule.OptRX)
	m := newTestMac(t, sf, driver)
	m.Queues().Add(src).TimeSource = true

	frame, err := m.framer.Create(&framer.PacketBuf{
		Dest:         m.addr,
		Source:       src,
		Seq:          1,
		AckRequested: true,
		Payload:      []byte("hi"),
	})
	require.NoError(t, err)
	driver.QueueRxFrame(frame)

	m.RunSlot(tick.Tick(0))

	ack := driver.LastAckSent()
	require.Len(t, ack, types.AckLen+types.ExtraAckLen)
	assert.Equal(t, wpanframe.SyncIEHeader[0], ack[3])
	assert.Equal(t, wpanframe.SyncIEHeader[1], ack[4])
	// A one-cell slotframe ends every slot at the slotframe boundary, so
	// the credited drift is applied there and the accumulator reset. The
	// drift is start+TsTxOffset-rxEnd = 40 ticks = 1220us, negated on the
	// receive side: round(-1220*100/3051) = -40 ticks off the slot.
	assert.EqualValues(t, m.timing.TsSlotDuration-40, m.pc.start)
}

func TestRunSlotRXAddressFilterDropsForeignFrame(t *testing.T) {
	src := testAddr(2)
	other := testAddr(9)
	driver := fake.New()
	sf := oneCellSlotframe(src, schedule.OptRX)
	m := New(testAddr(0xAA), sf, driver, framer.Default{}, WithAddressFiltering(true))
	require.NoError(t, m.Init(tick.Tick(0)))

	var deliveries int
	m.upperInput = func(_ *framer.PacketBuf) { deliveries++ }

	frame, err := framer.Default{}.Create(&framer.PacketBuf{
		Dest:         other,
		Source:       src,
		Seq:          1,
		AckRequested: false,
		Payload:      []byte("hi"),
	})
	require.NoError(t, err)

	m.Input(frame)
	assert.Equal(t, 0, deliveries)
}

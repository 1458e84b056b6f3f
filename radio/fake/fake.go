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

// Package fake is a deterministic radio.Driver used only by tests. It
// models an ideal, infinite-range, no-interference link, scripted
// through an explicit queue of outcomes instead of a real radio ISR.
package fake

import (
	"github.com/pkg/errors"

	"github.com/ot-tsch/tsch/radio"
	"github.com/ot-tsch/tsch/tick"
	"github.com/ot-tsch/tsch/types"
)

// ErrNotOn is returned by operations that require the radio to be on.
var ErrNotOn = errors.New("fake: radio is off")

// Driver is a scriptable radio.Driver. Tests preload TX outcomes with
// QueueTxResult and RX frames with QueueRxFrame; the driver plays them
// back in order as the MAC core drives it.
type Driver struct {
	state   types.RadioState
	channel int

	prepared []byte

	txResults []radio.TxResult
	rxFrames  [][]byte
	ackFrames [][]byte

	rxEndTime  tick.Tick
	sfdTimer   tick.Tick
	pendingIRQ bool

	makeAck radio.MakeAckFunc
	resume  radio.ResumeFunc

	lastAckSent []byte
}

// New returns a Driver with the radio initially off.
func New() *Driver {
	return &Driver{state: types.RadioDisabled}
}

func (d *Driver) On() error {
	d.state = types.RadioSleep
	return nil
}

func (d *Driver) Off() error {
	d.state = types.RadioDisabled
	return nil
}

func (d *Driver) SetChannel(ch int) error {
	if ch < types.MinChannel || ch > types.MaxChannel {
		return errors.Errorf("fake: channel %d out of range", ch)
	}
	d.channel = ch
	return nil
}

func (d *Driver) Channel() int {
	return d.channel
}

func (d *Driver) Prepare(buf []byte) error {
	if d.state == types.RadioDisabled {
		return ErrNotOn
	}
	d.prepared = append([]byte(nil), buf...)
	d.state = types.RadioTx
	return nil
}

// QueueTxResult schedules the outcome the next Transmit call reports.
func (d *Driver) QueueTxResult(r radio.TxResult) {
	d.txResults = append(d.txResults, r)
}

func (d *Driver) Transmit() (radio.TxResult, error) {
	if len(d.txResults) == 0 {
		return radio.TxResultErr, errors.New("fake: no scripted tx result")
	}
	r := d.txResults[0]
	d.txResults = d.txResults[1:]
	d.state = types.RadioSleep
	return r, nil
}

// QueueRxFrame preloads a frame that ReceivingPacket/PendingPacket/Read
// will surface as having arrived.
func (d *Driver) QueueRxFrame(frame []byte) {
	d.rxFrames = append(d.rxFrames, frame)
}

func (d *Driver) ReceivingPacket() bool {
	return len(d.rxFrames) > 0 && d.state != types.RadioDisabled
}

func (d *Driver) PendingPacket() bool {
	return d.ReceivingPacket()
}

func (d *Driver) ChannelClear() (bool, error) {
	if d.state == types.RadioDisabled {
		return false, ErrNotOn
	}
	// Idealized link: the channel is always clear for this fake. A
	// collision is scripted as a Transmit outcome (QueueTxResult), not here.
	return true, nil
}

func (d *Driver) Read(buf []byte) (int, error) {
	if len(d.rxFrames) == 0 {
		return 0, errors.New("fake: no frame pending")
	}
	frame := d.rxFrames[0]
	d.rxFrames = d.rxFrames[1:]
	n := copy(buf, frame)
	return n, nil
}

// QueueAckFrame preloads the raw bytes ReadAck returns next.
func (d *Driver) QueueAckFrame(frame []byte) {
	d.ackFrames = append(d.ackFrames, frame)
}

func (d *Driver) ReadAck(buf []byte) (int, error) {
	if len(d.ackFrames) == 0 {
		return 0, errors.New("fake: no ack pending")
	}
	frame := d.ackFrames[0]
	d.ackFrames = d.ackFrames[1:]
	n := copy(buf, frame)
	return n, nil
}

func (d *Driver) SFDSync(captureStart, captureEnd tick.Tick) {
	d.rxEndTime = captureEnd
	d.sfdTimer = captureStart
}

func (d *Driver) GetRxEndTime() tick.Tick {
	return d.rxEndTime
}

func (d *Driver) ReadSFDTimer() tick.Tick {
	return d.sfdTimer
}

// LastAckSent returns the bytes most recently given to SendAck, for
// test assertions.
func (d *Driver) LastAckSent() []byte {
	return d.lastAckSent
}

func (d *Driver) SendAck(buf []byte) error {
	if d.state == types.RadioDisabled {
		return ErrNotOn
	}
	d.lastAckSent = append([]byte(nil), buf...)
	return nil
}

func (d *Driver) SoftAckSubscribe(makeAck radio.MakeAckFunc, resume radio.ResumeFunc) {
	d.makeAck = makeAck
	d.resume = resume
}

// DeliverFrameForSoftAck simulates the ISR path: a frame arrives, the
// subscribed MakeAckFunc synthesizes the ACK, SendAck fires, then
// resume runs. Tests use this to exercise SoftAckSubscribe wiring.
func (d *Driver) DeliverFrameForSoftAck(frame []byte, captureStart, captureEnd tick.Tick) {
	if d.makeAck == nil {
		return
	}
	ack := d.makeAck(frame, captureStart, captureEnd)
	_ = d.SendAck(ack)
	if d.resume != nil {
		d.resume()
	}
}

func (d *Driver) SetPendingIRQ(v bool) {
	d.pendingIRQ = v
}

func (d *Driver) PendingIRQ() bool {
	return d.pendingIRQ
}

func (d *Driver) State() types.RadioState {
	return d.state
}

var _ radio.Driver = (*Driver)(nil)

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

// Package mac is the dominant package of this module: it implements
// the slot-driven powercycle state machine, the TX callback dispatcher,
// the packet input path and the MAC driver façade, wiring tick, queue,
// schedule and syncie into one cohesive TSCH MAC. One struct owns every
// piece of process-wide state, driven by scheduled callbacks rather
// than goroutines.
package mac

import (
	"github.com/pkg/errors"

	"github.com/ot-tsch/tsch/energy"
	"github.com/ot-tsch/tsch/framer"
	"github.com/ot-tsch/tsch/logger"
	"github.com/ot-tsch/tsch/queue"
	"github.com/ot-tsch/tsch/radio"
	"github.com/ot-tsch/tsch/schedule"
	"github.com/ot-tsch/tsch/tick"
	"github.com/ot-tsch/tsch/types"
)

// pcState is the powercycle's persistent, cross-slot state: which
// on-slot we're at, the drift accumulator and the anchor tick of the
// current slot.
type pcState struct {
	timeslot   uint16
	driftAcc   int32
	driftCount uint16
	start      tick.Tick
}

// slotTransient is cleared at the top of every serviced slot.
type slotTransient struct {
	decision   SlotDecision
	lastDrift  int32 // microseconds, set by the soft-ack callback
	lastNack   bool
	needAck    bool
	irqWaiting bool
}

// Mac is the MAC driver façade and owns every other component's
// process-wide state: the IEEE154E singleton, the powercycle's
// persistent state, the neighbor queue store, the slotframe, the
// radio and the framer. One Mac instance is one node.
type Mac struct {
	addr   types.Addr
	driver radio.Driver
	framer framer.Framer
	sf     *schedule.Slotframe
	queues *queue.Store
	sched  *tick.Scheduler
	energy energy.RadioAccounting

	e       ieee154e
	pc      pcState
	slot    slotTransient
	seqHist seqnoRing
	cb      callbackDispatcher

	timing      Timing
	addrFilter  bool
	keepRadioOn bool
	upperInput  UpperMACInput
}

// Option configures a Mac at construction time.
type Option func(*Mac)

// WithTiming overrides the default slot-template timing.
func WithTiming(t Timing) Option {
	return func(m *Mac) { m.timing = t }
}

// WithAddressFiltering enables Input's destination-address filter.
func WithAddressFiltering(enabled bool) Option {
	return func(m *Mac) { m.addrFilter = enabled }
}

// WithUpperMACInput registers the delivery callback Input hands
// accepted frames to.
func WithUpperMACInput(cb UpperMACInput) Option {
	return func(m *Mac) { m.upperInput = cb }
}

// New constructs a Mac for addr, driving driver according to sf and
// serializing/parsing frames with fr.
func New(addr types.Addr, sf *schedule.Slotframe, driver radio.Driver, fr framer.Framer, opts ...Option) *Mac {
	m := &Mac{
		addr:   addr,
		driver: driver,
		framer: fr,
		sf:     sf,
		queues: queue.NewStore(),
		sched:  tick.NewScheduler(uint32(sf.Length) * 10000),
		timing: DefaultTiming(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init brings the MAC up already time-synchronized (association/scan
// is stubbed: every Mac starts already synchronized) and arms the
// first slot wake at now. It must be called before the scheduler is
// ever Advance()'d.
func (m *Mac) Init(now tick.Tick) error {
	m.e.state = StateAssociated
	m.e.isSync = true
	m.e.capturedTime = now
	m.pc.timeslot = 0
	m.pc.start = now
	m.energy.SetState(types.RadioDisabled, now)
	m.driver.SoftAckSubscribe(m.makeSyncAck, m.onSoftAckSent)
	return m.arm(now)
}

func (m *Mac) arm(now tick.Tick) error {
	status := m.sched.ScheduleAt(now, TimerSlot, m.pc.start, m.runSlotCallback)
	if status == types.SchedulerHardwareErr {
		return errors.New("mac: scheduler rejected slot wake")
	}
	return nil
}

func (m *Mac) runSlotCallback(now tick.Tick) {
	m.RunSlot(now)
}

// Advance drives the scheduler forward to now, firing whichever timers
// (slot wakes, watchdogs) have come due. It is the caller's job to
// invoke this from whatever drives the radio-timer ISR in the host
// environment; this module never spins its own clock.
func (m *Mac) Advance(now tick.Tick) int {
	return m.sched.Advance(now)
}

// On (re)enables the powercycle: the radio-timer-driven slot machine
// resumes ticking from the current schedule position.
func (m *Mac) On() error {
	if m.e.state == StateAssociated {
		return nil
	}
	m.e.state = StateAssociated
	return m.arm(m.e.capturedTime)
}

// Off disables the powercycle. If keepRadioOn is false the underlying
// radio is also powered down; otherwise it is left on (e.g. because an
// upper layer still wants promiscuous listening) and only the slotted
// choreography stops.
func (m *Mac) Off(keepRadioOn bool) error {
	m.e.state = StateOff
	m.keepRadioOn = keepRadioOn
	m.sched.Cancel(TimerSlot)
	if !keepRadioOn {
		return m.driver.Off()
	}
	return nil
}

// ChannelCheckInterval always reports 0: TSCH is a scheduled, not a
// channel-check, MAC.
func (m *Mac) ChannelCheckInterval() uint32 {
	return 0
}

// Poll drains the TX callback dispatcher. Call this from the main
// task, never from the radio-timer ISR context RunSlot executes in.
func (m *Mac) Poll() {
	m.cb.poll()
}

// Send stamps, serializes and enqueues one outbound frame addressed to
// dest: an ACK is requested unless dest is broadcast, and the sequence
// number is assigned from the never-zero DSN counter.
func (m *Mac) Send(dest types.Addr, payload []byte, cb queue.SentCallback, ctx interface{}) bool {
	seq := nextSeq(&m.e.dsn)
	pb := &framer.PacketBuf{
		Dest:         dest,
		Source:       m.addr,
		Seq:          seq,
		AckRequested: !dest.IsBroadcast(),
		Payload:      payload,
	}
	frame, err := m.framer.Create(pb)
	if err != nil {
		logger.Debugf("mac: send: framer.Create failed: %v", err)
		return false
	}
	if _, err := m.queues.Enqueue(dest, frame, seq, cb, ctx); err != nil {
		logger.Debugf("mac: send: enqueue failed: %v", err)
		return false
	}
	return true
}

// SendList enqueues a burst of payloads addressed to dest, aborting on
// the first failure so the upper layer can retry the whole burst
// rather than produce an out-of-order fragment.
func (m *Mac) SendList(dest types.Addr, payloads [][]byte, cb queue.SentCallback, ctx interface{}) bool {
	for _, payload := range payloads {
		if !m.Send(dest, payload, cb, ctx) {
			return false
		}
	}
	return true
}

// Stats returns the cumulative radio-state duration breakdown.
func (m *Mac) Stats(now tick.Tick) energy.Snapshot {
	return m.energy.Snapshot(now)
}

// Queues exposes the underlying neighbor queue store, mainly for
// tests and for an upper layer wiring in a new neighbor ahead of the
// first Send to it.
func (m *Mac) Queues() *queue.Store {
	return m.queues
}

// ASN returns the current Absolute Slot Number.
func (m *Mac) ASN() uint64 {
	return m.e.asn
}

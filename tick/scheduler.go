// Copyright (c) 2020, The OTNS Authors.
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

package tick

import (
	"container/heap"
	"math"

	"github.com/ot-tsch/tsch/logger"
	"github.com/ot-tsch/tsch/types"
)

// Ever marks a timer as disarmed: it never fires until rearmed.
const Ever Tick = Tick(math.MaxUint32)

// TimerID names one armed deadline; each ID holds at most one deadline
// at a time. The MAC uses a single one, the slot wake (mac.TimerSlot).
type TimerID string

type timerEvent struct {
	ID       TimerID
	Deadline Tick
	cb       func(now Tick)
	armed    bool
	index    int
}

type timerQueue []*timerEvent

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	return Before(q[i].Deadline, q[j].Deadline)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}

func (q *timerQueue) Push(x interface{}) {
	e := x.(*timerEvent)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *timerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Scheduler is the radio-timer deadline scheduler. It is not
// goroutine-safe; the powercycle state machine and its callbacks run
// on a single cooperative task.
type Scheduler struct {
	q                 timerQueue
	events            map[TimerID]*timerEvent
	maxAllowableDelta uint32
}

// NewScheduler constructs a Scheduler. maxAllowableDelta bounds how far
// ahead of now a deadline may legitimately be; anything larger is
// treated as a deadline that has already passed (wrapped arithmetic),
// i.e. a missed wake-up.
func NewScheduler(maxAllowableDelta uint32) *Scheduler {
	s := &Scheduler{
		q:                 timerQueue{},
		events:            map[TimerID]*timerEvent{},
		maxAllowableDelta: maxAllowableDelta,
	}
	heap.Init(&s.q)
	return s
}

// ScheduleAt arms (or re-arms) the named timer to fire at deadline, and
// reports whether the request was itself already missed.
func (s *Scheduler) ScheduleAt(now Tick, id TimerID, deadline Tick, cb func(now Tick)) types.SchedulerStatus {
	if diff := uint32(deadline - now); diff > s.maxAllowableDelta {
		return types.SchedulerMissed
	}

	e, ok := s.events[id]
	if !ok {
		e = &timerEvent{ID: id, Deadline: Ever}
		heap.Push(&s.q, e)
		s.events[id] = e
	}
	e.Deadline = deadline
	e.cb = cb
	e.armed = true
	heap.Fix(&s.q, e.index)
	return types.SchedulerOK
}

// Cancel disarms the named timer, if armed.
func (s *Scheduler) Cancel(id TimerID) {
	e, ok := s.events[id]
	if !ok || !e.armed {
		return
	}
	e.armed = false
	e.cb = nil
	e.Deadline = Ever
	heap.Fix(&s.q, e.index)
}

// NextDeadline returns the soonest armed deadline, if any.
func (s *Scheduler) NextDeadline() (Tick, bool) {
	if len(s.q) == 0 || !s.q[0].armed {
		return 0, false
	}
	return s.q[0].Deadline, true
}

// Advance fires every armed timer whose deadline is at or before now,
// in deadline order, and returns how many fired. Each firing callback
// may itself call ScheduleAt to re-arm its timer for a later deadline;
// those re-arms are not fired again within the same Advance call unless
// their new deadline is also at-or-before now.
func (s *Scheduler) Advance(now Tick) int {
	fired := 0
	for len(s.q) > 0 && s.q[0].armed && AtOrBefore(s.q[0].Deadline, now) {
		e := s.q[0]
		e.armed = false
		cb := e.cb
		e.cb = nil
		e.Deadline = Ever
		heap.Fix(&s.q, e.index)
		if cb == nil {
			logger.Panicf("tick: armed timer %v fired with no callback", e.ID)
		}
		cb(now)
		fired++
	}
	return fired
}

// Copyright (c) 2022-2024, The OTNS Authors.
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

// Package energy accounts for how many radio-timer ticks a node has
// spent in each radio state. It is diagnostic only: no MAC decision
// reads it back, but the powercycle state machine feeds it on every
// state transition it already makes, billing the old state before
// switching to the new one.
package energy

import (
	"github.com/ot-tsch/tsch/logger"
	"github.com/ot-tsch/tsch/tick"
	"github.com/ot-tsch/tsch/types"
)

// RadioAccounting accumulates ticks spent in each types.RadioState for
// one node's radio.
type RadioAccounting struct {
	state     types.RadioState
	since     tick.Tick
	spent     [4]uint64 // indexed by types.RadioState
	initiated bool
}

// Snapshot is a point-in-time read of accumulated tick counts.
type Snapshot struct {
	Disabled uint64
	Sleep    uint64
	Rx       uint64
	Tx       uint64
}

// SetState bills elapsed ticks to the current state then switches to
// state. The first call merely establishes the starting point; it
// bills nothing, since no time has yet elapsed in any state.
func (a *RadioAccounting) SetState(state types.RadioState, now tick.Tick) {
	if !a.initiated {
		a.state = state
		a.since = now
		a.initiated = true
		return
	}
	a.bill(now)
	a.state = state
	a.since = now
}

func (a *RadioAccounting) bill(now tick.Tick) {
	delta := tick.Diff(a.since, now)
	if delta < 0 {
		logger.Panicf("energy: time went backwards (since=%d now=%d)", a.since, now)
	}
	if int(a.state) >= len(a.spent) {
		logger.Panicf("energy: unknown radio state %v", a.state)
	}
	a.spent[a.state] += uint64(delta)
}

// Snapshot bills whatever time has elapsed in the current state up to
// now, without changing state, and returns the accumulated totals.
func (a *RadioAccounting) Snapshot(now tick.Tick) Snapshot {
	if a.initiated {
		a.bill(now)
		a.since = now
	}
	return Snapshot{
		Disabled: a.spent[types.RadioDisabled],
		Sleep:    a.spent[types.RadioSleep],
		Rx:       a.spent[types.RadioRx],
		Tx:       a.spent[types.RadioTx],
	}
}

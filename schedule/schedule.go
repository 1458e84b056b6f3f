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

// Package schedule holds the TSCH slotframe model: cells, the
// slotframe they belong to, and the channel-hopping function that
// turns a cell's channel offset into a physical channel.
package schedule

import (
	"github.com/ot-tsch/tsch/types"
)

// CellOption is a bitset of the roles a cell plays in a slot.
type CellOption uint8

const (
	OptTX          CellOption = 1 << 0
	OptRX          CellOption = 1 << 1
	OptShared      CellOption = 1 << 2
	OptTimeKeeping CellOption = 1 << 3
)

func (o CellOption) Has(bit CellOption) bool {
	return o&bit != 0
}

// CellType distinguishes ordinary data cells from the advertising cell
// reserved for EB transmission (EB encoding itself is out of scope).
type CellType uint8

const (
	CellNormal      CellType = 0
	CellAdvertising CellType = 1
)

// Cell is one entry of a Slotframe.
type Cell struct {
	SlotOffset    uint16     `yaml:"slotOffset"`
	ChannelOffset uint16     `yaml:"channelOffset"`
	Options       CellOption `yaml:"options"`
	Type          CellType   `yaml:"type"`
	Peer          types.Addr `yaml:"peer"`
}

// IsSharedBroadcast reports whether c is a shared broadcast cell: its
// peer is the broadcast address and it carries the SHARED option, so it
// may be used opportunistically for unicast traffic.
func (c *Cell) IsSharedBroadcast() bool {
	return c.Peer.IsBroadcast() && c.Options.Has(OptShared)
}

// Slotframe is a repeating cycle of timeslots, only some of which are
// "on" (populated with a Cell); the rest sleep.
type Slotframe struct {
	Handle  uint16  `yaml:"handle"`
	Length  uint16  `yaml:"length"` // total timeslots in one period
	Cells   []*Cell `yaml:"cells"`  // the on-slots, indexed 0..len(Cells)
}

// OnSize is the number of populated cells.
func (sf *Slotframe) OnSize() uint16 {
	return uint16(len(sf.Cells))
}

// GetCell returns the cell at on-slot index slotIdx, or nil if
// slotIdx is out of range.
func (sf *Slotframe) GetCell(slotIdx uint16) *Cell {
	if slotIdx >= sf.OnSize() {
		return nil
	}
	return sf.Cells[slotIdx]
}

// NextOnSlot returns the on-slot index following slotIdx, wrapping to 0
// after the last on-slot.
func (sf *Slotframe) NextOnSlot(slotIdx uint16) uint16 {
	n := slotIdx + 1
	if n >= sf.OnSize() {
		return 0
	}
	return n
}

// HopChannel computes the physical channel (11-26) a cell uses at the
// given Absolute Slot Number: the classic TSCH channel-hopping
// function over the 16-channel 2.4GHz table.
func HopChannel(cell *Cell, asn uint64) int {
	return types.MinChannel + int((uint64(cell.ChannelOffset)+asn)%uint64(types.NumChannels))
}

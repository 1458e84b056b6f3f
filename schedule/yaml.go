// Copyright (c) 2024, The OTNS Authors.
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

package schedule

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ot-tsch/tsch/types"
)

// Load parses a Slotframe from YAML, e.g.:
//
//	handle: 0
//	length: 101
//	cells:
//	  - slotOffset: 0
//	    channelOffset: 0
//	    options: [tx, rx, shared]
//	    peer: broadcast
//	  - slotOffset: 5
//	    channelOffset: 3
//	    options: [tx]
//	    peer: "0102030405060708"
func Load(data []byte) (*Slotframe, error) {
	var raw rawSlotframe
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "schedule: parse yaml")
	}
	return raw.toSlotframe()
}

// LoadFile reads and parses a Slotframe from a YAML file on disk.
func LoadFile(path string) (*Slotframe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "schedule: read file")
	}
	return Load(data)
}

// rawSlotframe mirrors Slotframe/Cell but with a human-friendly string
// list for options, so config files spell out symbolic cell options
// rather than raw bitmasks.
type rawSlotframe struct {
	Handle uint16    `yaml:"handle"`
	Length uint16    `yaml:"length"`
	Cells  []rawCell `yaml:"cells"`
}

type rawCell struct {
	SlotOffset    uint16     `yaml:"slotOffset"`
	ChannelOffset uint16     `yaml:"channelOffset"`
	Options       []string   `yaml:"options"`
	Type          string     `yaml:"type"`
	Peer          types.Addr `yaml:"peer"`
}

func (raw *rawSlotframe) toSlotframe() (*Slotframe, error) {
	sf := &Slotframe{
		Handle: raw.Handle,
		Length: raw.Length,
	}
	for i, rc := range raw.Cells {
		c, err := rc.toCell()
		if err != nil {
			return nil, errors.Wrapf(err, "schedule: cell %d", i)
		}
		sf.Cells = append(sf.Cells, c)
	}
	return sf, nil
}

func (rc *rawCell) toCell() (*Cell, error) {
	var opts CellOption
	for _, o := range rc.Options {
		switch o {
		case "tx":
			opts |= OptTX
		case "rx":
			opts |= OptRX
		case "shared":
			opts |= OptShared
		case "timekeeping":
			opts |= OptTimeKeeping
		default:
			return nil, errors.Errorf("unknown cell option %q", o)
		}
	}

	ctype := CellNormal
	if rc.Type == "advertising" {
		ctype = CellAdvertising
	}

	return &Cell{
		SlotOffset:    rc.SlotOffset,
		ChannelOffset: rc.ChannelOffset,
		Options:       opts,
		Type:          ctype,
		Peer:          rc.Peer,
	}, nil
}

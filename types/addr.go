// Copyright (c) 2020-2023, The OTNS Authors.
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

// Package types holds the small value types shared by every TSCH MAC
// component: link-layer addresses, MAC completion statuses and the
// handful of protocol constants pinned to fixed values.
package types

import (
	"encoding/hex"
	"fmt"
)

// Addr is an opaque 8-byte link-layer (extended) address.
type Addr [8]byte

// NULL is the distinguished broadcast address.
var NULL = Addr{}

// Equal reports whether a and b name the same address.
func (a Addr) Equal(b Addr) bool {
	return a == b
}

// IsBroadcast reports whether a is the broadcast address.
func (a Addr) IsBroadcast() bool {
	return a == NULL
}

func (a Addr) String() string {
	if a.IsBroadcast() {
		return "broadcast"
	}
	return hex.EncodeToString(a[:])
}

// MarshalYAML writes the address as String does: hex, or "broadcast".
func (a Addr) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML parses a hex-encoded 8-byte address, or "broadcast".
func (a *Addr) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" || s == "broadcast" {
		*a = NULL
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("types: invalid address %q: %w", s, err)
	}
	if len(b) != len(Addr{}) {
		return fmt.Errorf("types: address %q must decode to %d bytes", s, len(Addr{}))
	}
	copy(a[:], b)
	return nil
}

// ParseAddr parses a hex-encoded 8-byte address.
func ParseAddr(s string) (Addr, error) {
	var a Addr
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, err
	}
	if len(b) != len(a) {
		return a, fmt.Errorf("types: address %q must decode to %d bytes", s, len(a))
	}
	copy(a[:], b)
	return a, nil
}

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

// Package tick implements the radio-timer clock abstraction: a
// monotonic, wrapping tick counter and a deadline scheduler the
// powercycle state machine yields against.
package tick

// Tick is a radio-timer tick count. It wraps at 2^32 and every deadline
// comparison must therefore be done modularly, never with a plain '<'.
type Tick uint32

// Before reports whether a happens strictly before b, using the
// standard modular-arithmetic comparison: a < b iff the signed
// difference (a-b) is negative. This is correct across a single
// wraparound of the counter, which is the only case that matters for
// timer deadlines that are always close to "now".
func Before(a, b Tick) bool {
	return int32(a-b) < 0
}

// AtOrBefore reports whether a happens at or before b.
func AtOrBefore(a, b Tick) bool {
	return int32(a-b) <= 0
}

// Diff returns b-a as a signed tick delta, correct modulo 2^32.
func Diff(a, b Tick) int32 {
	return int32(b - a)
}

// Add returns a+d, wrapping as Tick arithmetic always does.
func Add(a Tick, d int32) Tick {
	return a + Tick(d)
}

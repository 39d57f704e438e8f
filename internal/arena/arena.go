// Copyright 2020-2024 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package arena defines an Arena type with compressed pointers.
//
// cxxtok's tokenizer never frees a single token in isolation: every token
// in a translation unit lives exactly as long as its owning TokenList, and
// is addressed by a small integer handle rather than a pointer. That is
// exactly what this type provides, and is the mechanism by which a token's
// link, astParent, astOperand1/2, and scope fields all become non-owning,
// use-after-erase-proof handles into one backing store.
package arena

import (
	"fmt"
	"math/bits"
	"strings"
)

// pointersMinLenShift is the log2 of the size of the smallest slice in
// a pointers[T].
const (
	pointersMinLenShift = 4
	pointersMinLen      = 1 << pointersMinLenShift
)

// Untyped is an untyped arena pointer.
//
// The pointer value of a particular pointer in an arena is equal to one
// plus the number of elements allocated before it.
type Untyped uint32

// Nil returns a nil arena pointer.
func Nil() Untyped {
	return 0
}

// Nil returns whether this pointer is nil.
func (p Untyped) Nil() bool {
	return p == 0
}

// Pointer is a compressed arena pointer.
//
// Cannot be dereferenced directly; see [Pointer.In].
//
// The zero value is nil. A nil Pointer is what a freshly-appended token
// uses for a not-yet-computed link, astParent, or astOperand field.
type Pointer[T any] Untyped

// Nil returns whether this pointer is nil.
func (p Pointer[T]) Nil() bool {
	return Untyped(p).Nil()
}

// In looks up this pointer in the given arena.
//
// a must be the arena that allocated this pointer, otherwise this will
// either return an arbitrary element or panic. If p is nil, this panics.
func (p Pointer[T]) In(a *Arena[T]) *T {
	return a.At(Untyped(p))
}

// Arena is an arena that offers compressed pointers. Internally, it is a
// slice of T that guarantees the Ts will never be moved.
//
// It does this by maintaining a table of logarithmically-growing slices that
// mimic the resizing behavior of an ordinary slice. This trades off the
// linear 8-byte overhead of []*T for a logarithmic 24-byte overhead. Lookup
// time remains O(1), at the cost of two pointer loads instead of one.
//
// A zero Arena[T] is empty and ready to use. A TokenList owns exactly one
// Arena of token records; every handle into it is valid for the lifetime of
// that TokenList and becomes meaningless (or panics) against any other one.
type Arena[T any] struct {
	// Invariants:
	// 1. cap(table[0]) == 1<<pointersMinLenShift.
	// 2. cap(table[n]) == 2*cap(table[n-1]).
	// 3. cap(table[n]) == len(table[n]) for n < len(table)-1.
	//
	// These invariants are needed for lookup to be O(1).
	table [][]T
}

// New allocates a new value on the arena.
func (a *Arena[T]) New(value T) Pointer[T] {
	if a.table == nil {
		a.table = [][]T{make([]T, 0, pointersMinLen)}
	}

	last := &a.table[len(a.table)-1]
	if len(*last) == cap(*last) {
		// If the last slice is full, grow by doubling the size
		// of the next slice.
		a.table = append(a.table, make([]T, 0, 2*cap(*last)))
		last = &a.table[len(a.table)-1]
	}

	*last = append(*last, value)
	return Pointer[T](Untyped(a.Len())) // a.Len() is the 1-based index of value, just appended.
}

// At dereferences an untyped arena pointer, as if by [Pointer.In].
func (a *Arena[T]) At(ptr Untyped) *T {
	if ptr.Nil() {
		a = nil // Trigger an ordinary nil dereference on purpose.
	}
	slice, idx := a.coordinates(int(ptr) - 1)
	return &a.table[slice][idx]
}

// Len returns the number of elements allocated in this arena so far.
func (a *Arena[T]) Len() int {
	if len(a.table) == 0 {
		return 0
	}

	// Only the last slice will be not-fully-filled.
	return a.lenOfFirstNSlices(len(a.table)-1) + len(a.table[len(a.table)-1])
}

// String implements [fmt.Stringer], rendering each backing subarray
// between `|` separators so the log-growth shape of table is visible in
// test failure output.
func (a Arena[T]) String() string {
	var b strings.Builder
	b.WriteRune('[')
	for i, slice := range a.table {
		if i != 0 {
			b.WriteRune('|')
		}
		for i, v := range slice {
			if i != 0 {
				b.WriteRune(' ')
			}
			fmt.Fprint(&b, v)
		}
	}
	b.WriteRune(']')
	return b.String()
}

// lenOfNthSlice returns the capacity table[n] would have once allocated,
// whether or not it has been allocated yet.
func (*Arena[T]) lenOfNthSlice(n int) int {
	return pointersMinLen << n
}

// lenOfFirstNSlices returns the combined capacity of table[0:n], using
// the closed form of the geometric sum 2^m + 2^(m+1) + ... + 2^n =
// 2^(n+1) - 2^m instead of actually summing lenOfNthSlice over a loop.
func (a *Arena[T]) lenOfFirstNSlices(n int) int {
	return max(0, a.lenOfNthSlice(n)-a.lenOfNthSlice(0))
}

// coordinates maps a 0-based element index to its (slice, offset) pair
// within table, bounds-checking idx along the way.
func (a *Arena[T]) coordinates(idx int) (int, int) {
	if idx >= a.Len() || idx < 0 {
		panic(fmt.Sprintf("arena: pointer out of range: %#x", idx))
	}

	// table[n]'s cumulative starting index is (2^n - 1) * pointersMinLen,
	// so idx+pointersMinLen has bit length n+pointersMinLenShift+1, and
	// subtracting pointersMinLenShift+1 from that bit length recovers n
	// without a division or a search loop.
	slice := bits.UintSize - bits.LeadingZeros(uint(idx)+pointersMinLen)
	slice -= pointersMinLenShift + 1

	idx -= a.lenOfFirstNSlices(slice)
	return slice, idx
}

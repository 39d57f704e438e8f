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

// Package rangemap implements an interval map keyed by token index, backed
// by a B-tree.
//
// Its one caller is internal/varid's Pass2, which asks "is this token
// inside class body S" once per candidate member-name token instead of
// re-walking the body each time. The intervals are closed integer ranges
// over token sequence numbers.
package rangemap

import (
	"fmt"
	"iter"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints"
)

// Map is an interval map, associating closed intervals [start, end] of K
// with a value of type V. Intervals nest or are disjoint; none share an
// end key.
//
// A zero Map is empty and ready to use.
type Map[K constraints.Ordered, V any] struct {
	// Keyed by each interval's end; this lets Get binary-search for the
	// first interval whose end is >= the query point in O(log n).
	byEnd btree.Map[K, *entry[K, V]]
}

type entry[K constraints.Ordered, V any] struct {
	start K
	value V
}

// Range is a single interval/value pair, as returned by [Map.Get] and
// [Map.All].
type Range[K constraints.Ordered, V any] struct {
	Start, End K
	Value      *V
}

// Get returns the innermost interval containing key, if one exists: it
// seeks to the first interval whose end is >= key and walks forward in
// End order until it reaches one that starts at or before key.
//
// If no interval contains key, the returned Range's Value is nil.
func (m *Map[K, V]) Get(key K) Range[K, V] {
	it := m.byEnd.Iter()
	for ok := it.Seek(key); ok; ok = it.Next() {
		if it.Value().start <= key {
			return Range[K, V]{Start: it.Value().start, End: it.Key(), Value: &it.Value().value}
		}
	}
	return Range[K, V]{}
}

// Contains reports whether key falls within any interval in the map.
func (m *Map[K, V]) Contains(key K) bool {
	return m.Get(key).Value != nil
}

// Insert adds the interval [start, end] (inclusive) with the given value.
//
// Insert panics if start > end. Overlapping a prior interval is a caller
// bug (scopes nest or are disjoint, never partially overlapping); Insert
// does not attempt to merge or split existing entries, it simply
// overwrites whichever entry previously owned the same end key.
func (m *Map[K, V]) Insert(start, end K, value V) {
	if start > end {
		panic(fmt.Sprintf("rangemap: start (%v) > end (%v)", start, end))
	}
	m.byEnd.Set(end, &entry[K, V]{start: start, value: value})
}

// All iterates every interval in the map in ascending order of End.
func (m *Map[K, V]) All() iter.Seq[Range[K, V]] {
	return func(yield func(Range[K, V]) bool) {
		it := m.byEnd.Iter()
		for more := it.First(); more; more = it.Next() {
			if !yield(Range[K, V]{Start: it.Value().start, End: it.Key(), Value: &it.Value().value}) {
				return
			}
		}
	}
}

// Len returns the number of intervals stored in the map.
func (m *Map[K, V]) Len() int {
	return m.byEnd.Len()
}

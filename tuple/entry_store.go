/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package tuple

// EntryStore holds the parallel key and value-vector arrays of a hash table.
// A zero key marks an empty slot. Implementations are not safe for
// concurrent use.
type EntryStore interface {
	// Capacity returns the number of slots.
	Capacity() int
	// NumValues returns the length of every value vector.
	NumValues() int
	// Key returns the key at index, or 0 for an empty slot.
	Key(index int) uint64
	// SetKey writes key at index.
	SetKey(index int, key uint64)
	// ReadValues copies the value vector at index into dst.
	ReadValues(index int, dst []float64)
	// WriteValues copies src into the value vector at index.
	WriteValues(index int, src []float64)
	// Reset discards all entries and resizes the store to capacity empty slots.
	Reset(capacity int) error
}

// preambleWriter is implemented by stores that keep the sketch preamble
// alongside the entries.
type preambleWriter interface {
	writePreamble(p *preamble)
}

type heapStore struct {
	keys      []uint64
	values    []float64
	numValues int
}

func newHeapStore(capacity, numValues int) *heapStore {
	return &heapStore{
		keys:      make([]uint64, capacity),
		values:    make([]float64, capacity*numValues),
		numValues: numValues,
	}
}

func (h *heapStore) Capacity() int {
	return len(h.keys)
}

func (h *heapStore) NumValues() int {
	return h.numValues
}

func (h *heapStore) Key(index int) uint64 {
	return h.keys[index]
}

func (h *heapStore) SetKey(index int, key uint64) {
	h.keys[index] = key
}

func (h *heapStore) ReadValues(index int, dst []float64) {
	offset := index * h.numValues
	copy(dst, h.values[offset:offset+h.numValues])
}

func (h *heapStore) WriteValues(index int, src []float64) {
	offset := index * h.numValues
	copy(h.values[offset:offset+h.numValues], src)
}

func (h *heapStore) Reset(capacity int) error {
	if capacity == len(h.keys) {
		clear(h.keys)
		clear(h.values)
		return nil
	}
	h.keys = make([]uint64, capacity)
	h.values = make([]float64, capacity*h.numValues)
	return nil
}

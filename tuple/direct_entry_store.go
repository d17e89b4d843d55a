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

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrInsufficientMemory = errors.New("insufficient memory")

// directStore keeps the whole sketch image in a caller-owned byte slice:
// the preamble, then capacity keys, then capacity value vectors.
type directStore struct {
	mem          []byte
	capacity     int
	numValues    int
	valuesOffset int
}

// newDirectStore clears the entry region of mem for capacity slots.
func newDirectStore(mem []byte, capacity, numValues int) (*directStore, error) {
	d := &directStore{mem: mem, numValues: numValues}
	if err := d.Reset(capacity); err != nil {
		return nil, err
	}
	return d, nil
}

// wrapDirectStore attaches to entries already present in mem.
func wrapDirectStore(mem []byte, capacity, numValues int) (*directStore, error) {
	if err := checkMemorySize(mem, capacity, numValues); err != nil {
		return nil, err
	}
	return &directStore{
		mem:          mem,
		capacity:     capacity,
		numValues:    numValues,
		valuesOffset: entriesStart + capacity*sizeOfKeyBytes,
	}, nil
}

func checkMemorySize(mem []byte, capacity, numValues int) error {
	required := serializedSizeBytes(capacity, numValues)
	if len(mem) < required {
		return fmt.Errorf("%w: %d slots need %d bytes, have %d", ErrInsufficientMemory, capacity, required, len(mem))
	}
	return nil
}

func (d *directStore) Capacity() int {
	return d.capacity
}

func (d *directStore) NumValues() int {
	return d.numValues
}

func (d *directStore) Key(index int) uint64 {
	return binary.LittleEndian.Uint64(d.mem[entriesStart+index*sizeOfKeyBytes:])
}

func (d *directStore) SetKey(index int, key uint64) {
	binary.LittleEndian.PutUint64(d.mem[entriesStart+index*sizeOfKeyBytes:], key)
}

func (d *directStore) ReadValues(index int, dst []float64) {
	offset := d.valuesOffset + index*d.numValues*sizeOfValueBytes
	for i := 0; i < d.numValues; i++ {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(d.mem[offset:]))
		offset += sizeOfValueBytes
	}
}

func (d *directStore) WriteValues(index int, src []float64) {
	offset := d.valuesOffset + index*d.numValues*sizeOfValueBytes
	for i := 0; i < d.numValues; i++ {
		binary.LittleEndian.PutUint64(d.mem[offset:], math.Float64bits(src[i]))
		offset += sizeOfValueBytes
	}
}

func (d *directStore) Reset(capacity int) error {
	if err := checkMemorySize(d.mem, capacity, d.numValues); err != nil {
		return err
	}
	clear(d.mem[entriesStart:serializedSizeBytes(capacity, d.numValues)])
	d.capacity = capacity
	d.valuesOffset = entriesStart + capacity*sizeOfKeyBytes
	return nil
}

func (d *directStore) writePreamble(p *preamble) {
	p.encode(d.mem)
}

// bytes returns the part of the region that holds the current image.
func (d *directStore) bytes() []byte {
	return d.mem[:serializedSizeBytes(d.capacity, d.numValues)]
}

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
	"errors"
)

const (
	strideHashBits = 7
	strideMask     = (1 << strideHashBits) - 1
)

var (
	ErrKeyNotFoundAndNoEmptySlots = errors.New("key not found and no empty slots")
)

// slot is the outcome of probing for a key: either the index holding the
// key (found) or the empty index where it would be inserted.
type slot struct {
	index int
	found bool
}

type keyReader interface {
	Key(index int) uint64
}

// slotResolver places 64-bit keys in a power-of-two table using open
// addressing with an odd, key-dependent stride.
type slotResolver struct {
	mask       uint64
	lgCapacity uint8
}

func newSlotResolver(lgCapacity uint8) slotResolver {
	return slotResolver{
		mask:       (uint64(1) << lgCapacity) - 1,
		lgCapacity: lgCapacity,
	}
}

// locate probes for key. It fails only if a full cycle of probes sees
// neither the key nor an empty slot.
func (r slotResolver) locate(keys keyReader, key uint64) (slot, error) {
	stride := computeStride(key, r.lgCapacity)
	index := key & r.mask

	loopIndex := index
	for {
		probe := keys.Key(int(index))
		if probe == 0 {
			return slot{index: int(index)}, nil
		} else if probe == key {
			return slot{index: int(index), found: true}, nil
		}

		index = (index + stride) & r.mask
		if index == loopIndex {
			return slot{}, ErrKeyNotFoundAndNoEmptySlots
		}
	}
}

// insertKey writes a key known to be absent into the first empty slot of
// its probe sequence and returns that slot.
func (r slotResolver) insertKey(store EntryStore, key uint64) (int, error) {
	s, err := r.locate(store, key)
	if err != nil {
		return 0, err
	}
	store.SetKey(s.index, key)
	return s.index, nil
}

// computeStride computes the stride for probing
func computeStride(key uint64, lgSize uint8) uint64 {
	// odd and independent of the index assuming lg_size lowest bits of the key were used for the index
	return (2 * ((key >> lgSize) & strideMask)) + 1
}

// startingThetaFromP returns the starting theta value from probability p
// Avoids multiplication if p == 1 since it might not yield MaxTheta exactly
func startingThetaFromP(p float32) uint64 {
	if p < 1 {
		return uint64(float64(MaxTheta) * float64(p))
	}
	return MaxTheta
}

// startingSubMultiple returns the starting lg capacity such that growing by
// lgRf at a time lands exactly on lgTgt.
func startingSubMultiple(lgTgt, lgMin, lgRf uint8) uint8 {
	if lgTgt <= lgMin {
		return lgMin
	}
	if lgRf == 0 {
		return lgTgt
	}
	return ((lgTgt - lgMin) % lgRf) + lgMin
}

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

	"github.com/apache/datasketches-tuple-go/internal"
)

const (
	ArrayOfDoublesSketchSerialVersion   = uint8(1)
	ArrayOfDoublesQuickSelectSketchType = uint8(2)
	arrayOfDoublesSketchPreambleLongs   = uint8(1)
)

// Byte offsets of the update sketch image.
const (
	preambleLongsByte  = 0
	serialVersionByte  = 1
	familyIDByte       = 2
	sketchTypeByte     = 3
	flagsByte          = 4
	numValuesByte      = 5
	seedHashShort      = 6
	thetaLong          = 8
	lgNomEntriesByte   = 16
	lgCurCapacityByte  = 17
	lgResizeFactorByte = 18
	// 1 byte of padding
	samplingPFloat     = 20
	retainedEntriesInt = 24
	// 4 bytes of padding
	entriesStart = 32
)

const (
	flagIsBigEndian = iota
	flagIsInSamplingMode
	flagIsEmpty
	flagHasEntries
)

var (
	ErrSeedHashMismatch = errors.New("seed hash mismatch")
	ErrBigEndianImage   = errors.New("big-endian images are not supported")
)

// preamble is the fixed-size header in front of the entries.
type preamble struct {
	theta           uint64
	retainedEntries uint32
	p               float32
	seedHash        uint16
	numValues       uint8
	lgNomEntries    uint8
	lgCurCapacity   uint8
	lgResizeFactor  uint8
	isEmpty         bool
}

func (p *preamble) encode(dst []byte) {
	dst[preambleLongsByte] = arrayOfDoublesSketchPreambleLongs
	dst[serialVersionByte] = ArrayOfDoublesSketchSerialVersion
	dst[familyIDByte] = uint8(internal.FamilyEnum.Tuple.Id)
	dst[sketchTypeByte] = ArrayOfDoublesQuickSelectSketchType

	var flags uint8
	if p.p < 1 {
		flags |= 1 << flagIsInSamplingMode
	}
	if p.isEmpty {
		flags |= 1 << flagIsEmpty
	}
	if p.retainedEntries > 0 {
		flags |= 1 << flagHasEntries
	}
	dst[flagsByte] = flags

	dst[numValuesByte] = p.numValues
	binary.LittleEndian.PutUint16(dst[seedHashShort:], p.seedHash)
	binary.LittleEndian.PutUint64(dst[thetaLong:], p.theta)
	dst[lgNomEntriesByte] = p.lgNomEntries
	dst[lgCurCapacityByte] = p.lgCurCapacity
	dst[lgResizeFactorByte] = p.lgResizeFactor
	dst[lgResizeFactorByte+1] = 0
	binary.LittleEndian.PutUint32(dst[samplingPFloat:], math.Float32bits(p.p))
	binary.LittleEndian.PutUint32(dst[retainedEntriesInt:], p.retainedEntries)
	binary.LittleEndian.PutUint32(dst[retainedEntriesInt+4:], 0)
}

// decodePreamble parses and validates the header. expectedSeedHash is checked
// against the stored seed hash.
func decodePreamble(src []byte, expectedSeedHash uint16) (preamble, error) {
	if len(src) < entriesStart {
		return preamble{}, fmt.Errorf("%w: preamble needs %d bytes, have %d", ErrInsufficientMemory, entriesStart, len(src))
	}

	if err := checkEqual(src[preambleLongsByte], uint8(internal.FamilyEnum.Tuple.MaxPreLongs), "preamble longs"); err != nil {
		return preamble{}, err
	}
	if err := checkEqual(src[serialVersionByte], ArrayOfDoublesSketchSerialVersion, "serial version"); err != nil {
		return preamble{}, err
	}
	if err := checkEqual(src[familyIDByte], uint8(internal.FamilyEnum.Tuple.Id), "sketch family"); err != nil {
		return preamble{}, err
	}
	if err := checkEqual(src[sketchTypeByte], ArrayOfDoublesQuickSelectSketchType, "sketch type"); err != nil {
		return preamble{}, err
	}

	flags := src[flagsByte]
	if flags&(1<<flagIsBigEndian) != 0 {
		return preamble{}, ErrBigEndianImage
	}

	p := preamble{
		theta:           binary.LittleEndian.Uint64(src[thetaLong:]),
		retainedEntries: binary.LittleEndian.Uint32(src[retainedEntriesInt:]),
		p:               math.Float32frombits(binary.LittleEndian.Uint32(src[samplingPFloat:])),
		seedHash:        binary.LittleEndian.Uint16(src[seedHashShort:]),
		numValues:       src[numValuesByte],
		lgNomEntries:    src[lgNomEntriesByte],
		lgCurCapacity:   src[lgCurCapacityByte],
		lgResizeFactor:  src[lgResizeFactorByte],
		isEmpty:         flags&(1<<flagIsEmpty) != 0,
	}

	if p.seedHash != expectedSeedHash {
		return preamble{}, fmt.Errorf("%w: expected %d, actual %d", ErrSeedHashMismatch, expectedSeedHash, p.seedHash)
	}
	if p.numValues == 0 || p.numValues > MaxNumValues {
		return preamble{}, fmt.Errorf("number of values must be between 1 and %d: %d", MaxNumValues, p.numValues)
	}
	if p.lgNomEntries < MinLgK || p.lgNomEntries > MaxLgK {
		return preamble{}, fmt.Errorf("lg nominal entries out of range [%d, %d]: %d", MinLgK, MaxLgK, p.lgNomEntries)
	}
	if p.lgCurCapacity < minLgCapacity || p.lgCurCapacity > p.lgNomEntries+1 {
		return preamble{}, fmt.Errorf("lg current capacity out of range [%d, %d]: %d", minLgCapacity, p.lgNomEntries+1, p.lgCurCapacity)
	}
	if p.lgResizeFactor > uint8(ResizeX8) {
		return preamble{}, fmt.Errorf("lg resize factor out of range: %d", p.lgResizeFactor)
	}
	if p.p <= 0 || p.p > 1 {
		return preamble{}, fmt.Errorf("sampling probability must be between 0 and 1: %f", p.p)
	}
	if p.retainedEntries > uint32(1)<<p.lgCurCapacity {
		return preamble{}, fmt.Errorf("retained entries exceed capacity %d: %d", uint32(1)<<p.lgCurCapacity, p.retainedEntries)
	}
	return p, nil
}

// GetMaxBytes returns the largest image an update sketch with nomEntries
// nominal entries and numValues values per key can grow to. nomEntries is
// rounded up to a power of 2.
func GetMaxBytes(nomEntries, numValues int) int {
	return entriesStart + (sizeOfKeyBytes+sizeOfValueBytes*numValues)*internal.CeilPowerOf2(nomEntries)*2
}

func serializedSizeBytes(capacity, numValues int) int {
	return entriesStart + (sizeOfKeyBytes+sizeOfValueBytes*numValues)*capacity
}

func checkEqual[T comparable](actual, expected T, description string) error {
	if actual != expected {
		return fmt.Errorf("%s mismatch: expected %v, actual %v", description, expected, actual)
	}
	return nil
}

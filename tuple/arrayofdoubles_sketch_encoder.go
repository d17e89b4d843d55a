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
	"io"
)

// ArrayOfDoublesSketchEncoder encodes an ArrayOfDoublesUpdateSketch to bytes.
// The image is the preamble followed by every table slot: first all keys,
// then all value vectors, so empty slots are written as zeros.
type ArrayOfDoublesSketchEncoder struct {
	w io.Writer
}

// NewArrayOfDoublesSketchEncoder creates a new ArrayOfDoublesSketchEncoder.
func NewArrayOfDoublesSketchEncoder(w io.Writer) ArrayOfDoublesSketchEncoder {
	return ArrayOfDoublesSketchEncoder{w: w}
}

// Encode writes the image of sketch.
func (enc *ArrayOfDoublesSketchEncoder) Encode(sketch *ArrayOfDoublesUpdateSketch) error {
	if sketch.direct != nil {
		_, err := enc.w.Write(sketch.direct.bytes())
		return err
	}

	var header [entriesStart]byte
	p := sketch.sketch.preamble()
	p.encode(header[:])
	if _, err := enc.w.Write(header[:]); err != nil {
		return err
	}

	store := sketch.sketch.store
	capacity := store.Capacity()
	numValues := store.NumValues()

	keys := make([]uint64, capacity)
	for i := range keys {
		keys[i] = store.Key(i)
	}
	if err := binary.Write(enc.w, binary.LittleEndian, keys); err != nil {
		return err
	}

	values := make([]float64, capacity*numValues)
	for i := 0; i < capacity; i++ {
		store.ReadValues(i, values[i*numValues:(i+1)*numValues])
	}
	return binary.Write(enc.w, binary.LittleEndian, values)
}

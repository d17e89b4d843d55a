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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/apache/datasketches-tuple-go/internal"
)

// ArrayOfDoublesSketchDecoder decodes an ArrayOfDoublesUpdateSketch image
// into a heap-backed sketch.
type ArrayOfDoublesSketchDecoder struct {
	seed uint64
	opts []UpdateSketchOptionFunc
}

// NewArrayOfDoublesSketchDecoder creates a new decoder. Only the hash
// algorithm, combiner and logger options apply; everything else comes from
// the image.
func NewArrayOfDoublesSketchDecoder(seed uint64, opts ...UpdateSketchOptionFunc) ArrayOfDoublesSketchDecoder {
	return ArrayOfDoublesSketchDecoder{
		seed: seed,
		opts: opts,
	}
}

// Decode decodes a sketch from the given reader.
func (dec *ArrayOfDoublesSketchDecoder) Decode(r io.Reader) (*ArrayOfDoublesUpdateSketch, error) {
	var header [entriesStart]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read preamble: %w", err)
	}

	expectedSeedHash, err := internal.ComputeSeedHash(int64(dec.seed))
	if err != nil {
		return nil, err
	}
	p, err := decodePreamble(header[:], expectedSeedHash)
	if err != nil {
		return nil, err
	}

	store := newHeapStore(1<<p.lgCurCapacity, int(p.numValues))
	if err := binary.Read(r, binary.LittleEndian, store.keys); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, store.values); err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	if err := checkImageEntries(store, p); err != nil {
		return nil, err
	}

	return newArrayOfDoublesUpdateSketch(store, p, dec.seed, newUpdateSketchOptions(dec.opts))
}

// DecodeArrayOfDoublesUpdateSketch reconstructs a heap-backed sketch from a byte slice using a specified seed.
func DecodeArrayOfDoublesUpdateSketch(b []byte, seed uint64, opts ...UpdateSketchOptionFunc) (*ArrayOfDoublesUpdateSketch, error) {
	decoder := NewArrayOfDoublesSketchDecoder(seed, opts...)
	return decoder.Decode(bytes.NewReader(b))
}

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


package internal

import (
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
)

var ErrZeroSeedHash = errors.New("seed hash must not be zero, choose a different seed")

// Hasher maps raw item bytes to a 64-bit hash.
type Hasher interface {
	Hash(data []byte) uint64
}

// Murmur3Hasher returns the first half of MurmurHash3_x64_128 with both
// lanes seeded by the same value, matching the Java and C++ libraries.
type Murmur3Hasher struct {
	seed uint64
}

func NewMurmur3Hasher(seed uint64) Murmur3Hasher {
	return Murmur3Hasher{seed: seed}
}

func (h Murmur3Hasher) Hash(data []byte) uint64 {
	h1, _ := murmur3.SeedSum128(h.seed, h.seed, data)
	return h1
}

// XXHasher hashes with seeded XXH64. Sketches built with it are not
// compatible with murmur3-based sketches from other languages.
type XXHasher struct {
	seed uint64
}

func NewXXHasher(seed uint64) XXHasher {
	return XXHasher{seed: seed}
}

func (h XXHasher) Hash(data []byte) uint64 {
	d := xxhash.NewWithSeed(h.seed)
	_, _ = d.Write(data)
	return d.Sum64()
}

// ComputeSeedHash returns the 16-bit fingerprint of seed stored in serialized
// sketches. It fails for the rare seeds whose fingerprint is zero.
func ComputeSeedHash(seed int64) (uint16, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h1, _ := murmur3.SeedSum128(0, 0, buf[:])
	seedHash := uint16(h1 & 0xFFFF)
	if seedHash == 0 {
		return 0, ErrZeroSeedHash
	}
	return seedHash, nil
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/murmur3"
)

func TestMurmur3Hasher(t *testing.T) {
	key := []byte("The quick brown fox jumps over the lazy dog")

	assert.Equal(t, uint64(0xe34bbc7bbc071b6c), NewMurmur3Hasher(0).Hash(key))

	h1, _ := murmur3.SeedSum128(DEFAULT_UPDATE_SEED, DEFAULT_UPDATE_SEED, key)
	assert.Equal(t, h1, NewMurmur3Hasher(DEFAULT_UPDATE_SEED).Hash(key))
	assert.NotEqual(t, NewMurmur3Hasher(1).Hash(key), NewMurmur3Hasher(2).Hash(key))
}

func TestXXHasher(t *testing.T) {
	key := []byte("The quick brown fox jumps over the lazy dog")

	h := NewXXHasher(DEFAULT_UPDATE_SEED)
	assert.Equal(t, h.Hash(key), h.Hash(key))
	assert.NotEqual(t, NewXXHasher(1).Hash(key), NewXXHasher(2).Hash(key))
	assert.NotEqual(t, NewMurmur3Hasher(DEFAULT_UPDATE_SEED).Hash(key), h.Hash(key))
}

func TestComputeSeedHash(t *testing.T) {
	seedHash, err := ComputeSeedHash(int64(DEFAULT_UPDATE_SEED))
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x93cc), seedHash)

	other, err := ComputeSeedHash(12345)
	assert.NoError(t, err)
	assert.NotEqual(t, seedHash, other)
}

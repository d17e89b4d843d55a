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
)

func TestCeilPowerOf2(t *testing.T) {
	testCases := []struct {
		input    int
		expected int
	}{
		{input: -1, expected: 1},
		{input: 0, expected: 1},
		{input: 1, expected: 1},
		{input: 2, expected: 2},
		{input: 3, expected: 4},
		{input: 15, expected: 16},
		{input: 16, expected: 16},
		{input: 17, expected: 32},
		{input: 4095, expected: 4096},
		{input: 1<<30 - 1, expected: 1 << 30},
		{input: 1 << 30, expected: 1 << 30},
		{input: 1<<30 + 1, expected: 1 << 30},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CeilPowerOf2(tc.input), "input %d", tc.input)
	}

	assert.Equal(t, uint32(64), CeilPowerOf2(uint32(33)))
	assert.Equal(t, uint8(1), CeilPowerOf2(uint8(0)))
}

func TestExactLog2(t *testing.T) {
	lg, err := ExactLog2(1)
	assert.NoError(t, err)
	assert.Equal(t, 0, lg)

	lg, err = ExactLog2(uint64(1) << 40)
	assert.NoError(t, err)
	assert.Equal(t, 40, lg)

	_, err = ExactLog2(0)
	assert.Error(t, err)
	_, err = ExactLog2(12)
	assert.Error(t, err)
	_, err = ExactLog2(-8)
	assert.Error(t, err)
}

func TestIsPowerOf2(t *testing.T) {
	assert.True(t, IsPowerOf2(1))
	assert.True(t, IsPowerOf2(uint16(1024)))
	assert.False(t, IsPowerOf2(0))
	assert.False(t, IsPowerOf2(-4))
	assert.False(t, IsPowerOf2(6))
}

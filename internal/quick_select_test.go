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
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuickSelect(t *testing.T) {
	testCases := []struct {
		name     string
		arr      []int
		lo       int
		hi       int
		pivot    int
		expected int
	}{
		{
			name:     "find median in odd length array",
			arr:      []int{3, 1, 4, 1, 5, 9, 2, 6},
			lo:       0,
			hi:       7,
			pivot:    4,
			expected: 4,
		},
		{
			name:     "find minimum",
			arr:      []int{3, 1, 4, 1, 5, 9, 2, 6},
			lo:       0,
			hi:       7,
			pivot:    0,
			expected: 1,
		},
		{
			name:     "find maximum",
			arr:      []int{3, 1, 4, 1, 5, 9, 2, 6},
			lo:       0,
			hi:       7,
			pivot:    7,
			expected: 9,
		},
		{
			name:     "single element array",
			arr:      []int{42},
			lo:       0,
			hi:       0,
			pivot:    0,
			expected: 42,
		},
		{
			name:     "two element array - first",
			arr:      []int{5, 3},
			lo:       0,
			hi:       1,
			pivot:    0,
			expected: 3,
		},
		{
			name:     "two element array - second",
			arr:      []int{5, 3},
			lo:       0,
			hi:       1,
			pivot:    1,
			expected: 5,
		},
		{
			name:     "already sorted array",
			arr:      []int{1, 2, 3, 4, 5},
			lo:       0,
			hi:       4,
			pivot:    2,
			expected: 3,
		},
		{
			name:     "reverse sorted array",
			arr:      []int{5, 4, 3, 2, 1},
			lo:       0,
			hi:       4,
			pivot:    2,
			expected: 3,
		},
		{
			name:     "array with duplicates",
			arr:      []int{3, 3, 3, 3, 3},
			lo:       0,
			hi:       4,
			pivot:    2,
			expected: 3,
		},
		{
			name:     "partial range - middle elements",
			arr:      []int{9, 8, 7, 6, 5, 4, 3, 2, 1},
			lo:       2,
			hi:       6,
			pivot:    4,
			expected: 5,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Make a copy to avoid modifying the test case
			arrCopy := make([]int, len(tc.arr))
			copy(arrCopy, tc.arr)

			result := QuickSelect(arrCopy, tc.lo, tc.hi, tc.pivot)

			assert.Equal(t, tc.expected, result, "want: %v\ngot: %v", tc.expected, result)
		})
	}
}

func TestQuickSelectFloat64(t *testing.T) {
	arr := []float64{3.14, 1.41, 2.71, 0.57, 1.61}
	result := QuickSelect(arr, 0, 4, 2)
	expected := 1.61

	assert.Equal(t, expected, result, "want: %v\ngot: %v", expected, result)
}

func TestQuickSelectString(t *testing.T) {
	arr := []string{"dog", "cat", "elephant", "ant", "bear"}
	result := QuickSelect(arr, 0, 4, 2)
	expected := "cat"

	assert.Equal(t, expected, result, "want: %v\ngot: %v", expected, result)
}

func TestQuickSelectMatchesSort(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, n := range []int{1, 2, 100, 10000} {
		keys := make([]uint64, n)
		for i := range keys {
			keys[i] = rnd.Uint64() >> 1
		}
		sorted := slices.Clone(keys)
		slices.Sort(sorted)

		for _, k := range []int{0, n / 2, n - 1} {
			arr := slices.Clone(keys)
			result := QuickSelect(arr, 0, n-1, k)
			assert.Equal(t, sorted[k], result, "n=%d k=%d", n, k)

			less := 0
			for _, key := range keys {
				if key < result {
					less++
				}
			}
			assert.Equal(t, k, less, "n=%d k=%d", n, k)
		}
	}
}

func TestQuickSelectOrderedInput(t *testing.T) {
	const n = 100000

	ascending := make([]int64, n)
	descending := make([]int64, n)
	for i := 0; i < n; i++ {
		ascending[i] = int64(i + 1)
		descending[i] = int64(n - i)
	}

	assert.Equal(t, int64(4097), QuickSelect(ascending, 0, n-1, 4096))
	assert.Equal(t, int64(4097), QuickSelect(descending, 0, n-1, 4096))
}

func TestQuickSelectLeavesRangePartitioned(t *testing.T) {
	arr := []int{15, 3, 9, 1, 12, 7, 20, 5, 11, 2}
	const k = 4
	v := QuickSelect(arr, 0, len(arr)-1, k)

	assert.Equal(t, 7, v)
	for i := 0; i < k; i++ {
		assert.Less(t, arr[i], v)
	}
	for i := k; i < len(arr); i++ {
		assert.GreaterOrEqual(t, arr[i], v)
	}
}

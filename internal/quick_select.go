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

import "cmp"

// QuickSelect returns the element that would sit at index pivot if arr[lo..hi]
// were sorted, so that exactly pivot-lo elements of the range are smaller when
// values are distinct. The range is partially reordered in place.
// The caller must ensure lo <= pivot <= hi.
func QuickSelect[T cmp.Ordered](arr []T, lo int, hi int, pivot int) T {
	for hi > lo {
		j := partition(arr, lo, hi)
		if j == pivot {
			return arr[pivot]
		}
		if j > pivot {
			hi = j - 1
		} else {
			lo = j + 1
		}
	}
	return arr[pivot]
}

// partition moves the median of arr[lo], arr[mid] and arr[hi] to lo and
// splits the range around it, returning its final position.
func partition[T cmp.Ordered](arr []T, lo int, hi int) int {
	medianOfThreeToFront(arr, lo, hi)

	i := lo
	j := hi + 1
	v := arr[lo]
	for {
		for i++; arr[i] < v; i++ {
			if i == hi {
				break
			}
		}
		for j--; v < arr[j]; j-- {
			if j == lo {
				break
			}
		}
		if i >= j {
			break
		}
		arr[i], arr[j] = arr[j], arr[i]
	}
	arr[lo], arr[j] = arr[j], arr[lo]
	return j
}

func medianOfThreeToFront[T cmp.Ordered](arr []T, lo int, hi int) {
	if hi-lo < 2 {
		return
	}
	mid := lo + (hi-lo)/2
	if arr[mid] < arr[lo] {
		arr[lo], arr[mid] = arr[mid], arr[lo]
	}
	if arr[hi] < arr[lo] {
		arr[lo], arr[hi] = arr[hi], arr[lo]
	}
	if arr[hi] < arr[mid] {
		arr[mid], arr[hi] = arr[hi], arr[mid]
	}
	// arr[lo] <= arr[mid] <= arr[hi]
	arr[lo], arr[mid] = arr[mid], arr[lo]
}

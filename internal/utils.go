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
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

const (
	DEFAULT_UPDATE_SEED = uint64(9001)
)

const (
	DSketchTestGenerateGo = "DSKETCH_TEST_GENERATE_GO"
)

const (
	GoPath = "../serialization_test_data/go_generated_files"
)

// CeilPowerOf2 returns the smallest power of 2 greater than or equal to n.
// Values of n below 2 yield 1. The result saturates at 1<<30.
func CeilPowerOf2[T constraints.Integer](n T) T {
	if n <= 1 {
		return 1
	}
	topIntPwrOf2 := uint64(1) << 30
	if uint64(n) >= topIntPwrOf2 {
		return T(topIntPwrOf2)
	}
	return T(1) << bits.Len64(uint64(n)-1)
}

// ExactLog2 returns log2 of powerOf2, which must be a positive power of 2.
func ExactLog2[T constraints.Integer](powerOf2 T) (int, error) {
	if !IsPowerOf2(powerOf2) {
		return 0, fmt.Errorf("argument 'powerOf2' must be a positive power of 2: %d", powerOf2)
	}
	return bits.TrailingZeros64(uint64(powerOf2)), nil
}

// IsPowerOf2 returns true if the given number is a power of 2.
func IsPowerOf2[T constraints.Integer](powerOf2 T) bool {
	return powerOf2 > 0 && (powerOf2&(powerOf2-1)) == 0
}

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

// Combiner folds src into dst when a key that is already retained is seen
// again. Both slices have the sketch's number of values.
type Combiner func(dst, src []float64)

// SumCombiner adds values elementwise.
func SumCombiner(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// MinCombiner keeps the elementwise minimum.
func MinCombiner(dst, src []float64) {
	for i := range dst {
		dst[i] = min(dst[i], src[i])
	}
}

// MaxCombiner keeps the elementwise maximum.
func MaxCombiner(dst, src []float64) {
	for i := range dst {
		dst[i] = max(dst[i], src[i])
	}
}

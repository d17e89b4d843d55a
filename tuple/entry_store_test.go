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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryStores(t *testing.T) {
	direct, err := newDirectStore(make([]byte, serializedSizeBytes(64, 3)), 32, 3)
	require.NoError(t, err)

	stores := map[string]EntryStore{
		"heap":   newHeapStore(32, 3),
		"direct": direct,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 32, store.Capacity())
			assert.Equal(t, 3, store.NumValues())
			for i := 0; i < store.Capacity(); i++ {
				assert.Zero(t, store.Key(i))
			}

			store.SetKey(7, 42)
			store.WriteValues(7, []float64{1.5, -2, 3})
			store.SetKey(8, MaxTheta)
			store.WriteValues(8, []float64{4, 5, 6})

			dst := make([]float64, 3)
			store.ReadValues(7, dst)
			assert.Equal(t, uint64(42), store.Key(7))
			assert.Equal(t, []float64{1.5, -2, 3}, dst)
			store.ReadValues(8, dst)
			assert.Equal(t, MaxTheta, store.Key(8))
			assert.Equal(t, []float64{4, 5, 6}, dst)

			require.NoError(t, store.Reset(64))
			assert.Equal(t, 64, store.Capacity())
			for i := 0; i < store.Capacity(); i++ {
				assert.Zero(t, store.Key(i))
				store.ReadValues(i, dst)
				assert.Equal(t, []float64{0, 0, 0}, dst)
			}

			require.NoError(t, store.Reset(32))
			assert.Equal(t, 32, store.Capacity())
		})
	}
}

func TestDirectStore(t *testing.T) {
	t.Run("Insufficient Memory", func(t *testing.T) {
		_, err := newDirectStore(make([]byte, serializedSizeBytes(32, 1)-1), 32, 1)
		assert.ErrorIs(t, err, ErrInsufficientMemory)

		_, err = wrapDirectStore(make([]byte, 16), 32, 1)
		assert.ErrorIs(t, err, ErrInsufficientMemory)
	})

	t.Run("Failed Reset Keeps Entries", func(t *testing.T) {
		mem := make([]byte, serializedSizeBytes(32, 1))
		store, err := newDirectStore(mem, 32, 1)
		require.NoError(t, err)
		store.SetKey(1, 99)

		err = store.Reset(64)
		assert.ErrorIs(t, err, ErrInsufficientMemory)
		assert.Equal(t, 32, store.Capacity())
		assert.Equal(t, uint64(99), store.Key(1))
	})

	t.Run("Layout", func(t *testing.T) {
		mem := make([]byte, serializedSizeBytes(32, 2))
		store, err := newDirectStore(mem, 32, 2)
		require.NoError(t, err)

		store.SetKey(0, 0x0102030405060708)
		store.WriteValues(1, []float64{1, 2})

		assert.Equal(t, byte(0x08), mem[entriesStart])
		assert.Equal(t, byte(0x01), mem[entriesStart+7])

		wrapped, err := wrapDirectStore(mem, 32, 2)
		require.NoError(t, err)
		dst := make([]float64, 2)
		wrapped.ReadValues(1, dst)
		assert.Equal(t, []float64{1, 2}, dst)
		assert.Equal(t, uint64(0x0102030405060708), wrapped.Key(0))
		assert.Len(t, wrapped.bytes(), len(mem))
	})
}

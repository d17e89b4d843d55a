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
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"strings"

	"github.com/apache/datasketches-tuple-go/internal"
)

var (
	ErrUpdateEmptyString = errors.New("cannot update empty string")
	ErrUpdateEmptyBytes  = errors.New("cannot update empty byte slice")
)

// HashAlgorithm selects how update methods turn items into keys.
type HashAlgorithm uint8

const (
	// HashMurmur3 is MurmurHash3_x64_128, compatible with the Java and C++ libraries.
	HashMurmur3 HashAlgorithm = iota
	// HashXXHash is XXH64. Images built with it only interoperate with
	// sketches that also use it.
	HashXXHash
)

type updateSketchOptions struct {
	logger        *slog.Logger
	combiner      Combiner
	seed          uint64
	p             float32
	lgK           uint8
	rf            ResizeFactor
	hashAlgorithm HashAlgorithm
}

type UpdateSketchOptionFunc func(*updateSketchOptions)

// WithUpdateSketchLgK sets log2(k), where k is a nominal number of entries in the sketch
func WithUpdateSketchLgK(lgK uint8) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		opts.lgK = lgK
	}
}

// WithUpdateSketchNominalEntries sets the nominal number of entries,
// rounded up to the nearest power of 2.
func WithUpdateSketchNominalEntries(nomEntries int) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		lgK, _ := internal.ExactLog2(internal.CeilPowerOf2(nomEntries))
		opts.lgK = uint8(lgK)
	}
}

// WithUpdateSketchResizeFactor sets a resize factor for the internal hash table (defaults to 8)
func WithUpdateSketchResizeFactor(rf ResizeFactor) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		opts.rf = rf
	}
}

// WithUpdateSketchP sets sampling probability (initial theta). The default is 1, so the sketch retains
// all entries until it reaches the limit, at which point it goes into the estimation mode
// and reduces the effective sampling probability (theta) as necessary
func WithUpdateSketchP(p float32) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		opts.p = p
	}
}

// WithUpdateSketchSeed sets the seed for the hash function. Should be used carefully if needed.
// Sketches produced with different seed are not compatible
// and cannot be mixed in set operations.
func WithUpdateSketchSeed(seed uint64) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		opts.seed = seed
	}
}

// WithUpdateSketchHashAlgorithm sets the item hash function (defaults to HashMurmur3).
func WithUpdateSketchHashAlgorithm(algorithm HashAlgorithm) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		opts.hashAlgorithm = algorithm
	}
}

// WithUpdateSketchCombiner sets the rule applied when a retained key is updated again
// (defaults to SumCombiner).
func WithUpdateSketchCombiner(combiner Combiner) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		opts.combiner = combiner
	}
}

// WithUpdateSketchLogger sets the logger used for table resize and rebuild events.
// By default nothing is logged.
func WithUpdateSketchLogger(logger *slog.Logger) UpdateSketchOptionFunc {
	return func(opts *updateSketchOptions) {
		opts.logger = logger
	}
}

func newUpdateSketchOptions(opts []UpdateSketchOptionFunc) *updateSketchOptions {
	options := &updateSketchOptions{
		lgK:      DefaultLgK,
		rf:       DefaultResizeFactor,
		p:        1.0,
		seed:     DefaultSeed,
		combiner: SumCombiner,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.combiner == nil {
		options.combiner = SumCombiner
	}
	if options.logger == nil {
		options.logger = slog.New(slog.DiscardHandler)
	}
	return options
}

func (o *updateSketchOptions) newHasher(seed uint64) (internal.Hasher, error) {
	switch o.hashAlgorithm {
	case HashMurmur3:
		return internal.NewMurmur3Hasher(seed), nil
	case HashXXHash:
		return internal.NewXXHasher(seed), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm: %d", o.hashAlgorithm)
	}
}

// startingPreamble validates the construction options and returns the
// state of a fresh sketch.
func (o *updateSketchOptions) startingPreamble(numValues uint8) (preamble, error) {
	if numValues == 0 || numValues > MaxNumValues {
		return preamble{}, fmt.Errorf("number of values must be between 1 and %d: %d", MaxNumValues, numValues)
	}
	if o.lgK < MinLgK {
		return preamble{}, fmt.Errorf("lg_k must not be less than %d: %d", MinLgK, o.lgK)
	}
	if o.lgK > MaxLgK {
		return preamble{}, fmt.Errorf("lg_k must not be greater than %d: %d", MaxLgK, o.lgK)
	}
	if o.rf > ResizeX8 {
		return preamble{}, fmt.Errorf("resize factor must not be greater than %d: %d", ResizeX8, o.rf)
	}
	if o.p <= 0 || o.p > 1 {
		return preamble{}, errors.New("sampling probability must be between 0 and 1")
	}

	seedHash, err := internal.ComputeSeedHash(int64(o.seed))
	if err != nil {
		return preamble{}, err
	}

	return preamble{
		theta:          startingThetaFromP(o.p),
		p:              o.p,
		seedHash:       seedHash,
		numValues:      numValues,
		lgNomEntries:   o.lgK,
		lgCurCapacity:  startingSubMultiple(o.lgK+1, minLgCapacity, uint8(o.rf)),
		lgResizeFactor: uint8(o.rf),
		isEmpty:        true,
	}, nil
}

// ArrayOfDoublesUpdateSketch builds a tuple sketch whose summary is a fixed
// number of float64 values per distinct key. It matches the functionality
// and serialization format of ArrayOfDoublesQuickSelectSketch in Java.
//
// The sketch is not safe for concurrent use.
type ArrayOfDoublesUpdateSketch struct {
	sketch *quickSelectSketch
	hasher internal.Hasher
	direct *directStore
	seed   uint64
	buf    [8]byte
}

// NewArrayOfDoublesUpdateSketch initializes and returns a new heap-backed sketch.
func NewArrayOfDoublesUpdateSketch(numValues uint8, opts ...UpdateSketchOptionFunc) (*ArrayOfDoublesUpdateSketch, error) {
	options := newUpdateSketchOptions(opts)
	p, err := options.startingPreamble(numValues)
	if err != nil {
		return nil, err
	}
	store := newHeapStore(1<<p.lgCurCapacity, int(numValues))
	return newArrayOfDoublesUpdateSketch(store, p, options.seed, options)
}

// NewDirectArrayOfDoublesUpdateSketch initializes a new sketch that lives
// entirely in mem. mem must hold at least the starting table; GetMaxBytes
// gives the size needed to never run out of room.
func NewDirectArrayOfDoublesUpdateSketch(mem []byte, numValues uint8, opts ...UpdateSketchOptionFunc) (*ArrayOfDoublesUpdateSketch, error) {
	options := newUpdateSketchOptions(opts)
	p, err := options.startingPreamble(numValues)
	if err != nil {
		return nil, err
	}
	store, err := newDirectStore(mem, 1<<p.lgCurCapacity, int(numValues))
	if err != nil {
		return nil, err
	}
	return newArrayOfDoublesUpdateSketch(store, p, options.seed, options)
}

// WrapArrayOfDoublesUpdateSketch attaches to a sketch image in mem without
// copying it. Updates are written back to mem. Only the hash algorithm,
// combiner and logger options apply.
func WrapArrayOfDoublesUpdateSketch(mem []byte, seed uint64, opts ...UpdateSketchOptionFunc) (*ArrayOfDoublesUpdateSketch, error) {
	expectedSeedHash, err := internal.ComputeSeedHash(int64(seed))
	if err != nil {
		return nil, err
	}
	p, err := decodePreamble(mem, expectedSeedHash)
	if err != nil {
		return nil, err
	}
	store, err := wrapDirectStore(mem, 1<<p.lgCurCapacity, int(p.numValues))
	if err != nil {
		return nil, err
	}
	if err := checkImageEntries(store, p); err != nil {
		return nil, err
	}
	return newArrayOfDoublesUpdateSketch(store, p, seed, newUpdateSketchOptions(opts))
}

func newArrayOfDoublesUpdateSketch(store EntryStore, p preamble, seed uint64, options *updateSketchOptions) (*ArrayOfDoublesUpdateSketch, error) {
	hasher, err := options.newHasher(seed)
	if err != nil {
		return nil, err
	}
	s := &ArrayOfDoublesUpdateSketch{
		sketch: newQuickSelectSketch(store, p, options.combiner, options.logger),
		hasher: hasher,
		seed:   seed,
	}
	s.direct, _ = store.(*directStore)
	return s, nil
}

// checkImageEntries verifies that the entries of an image agree with its preamble.
func checkImageEntries(store EntryStore, p preamble) error {
	numKeys := uint32(0)
	for i := 0; i < store.Capacity(); i++ {
		key := store.Key(i)
		if key == 0 {
			continue
		}
		if key >= p.theta {
			return fmt.Errorf("key %d at slot %d is not below theta %d", key, i, p.theta)
		}
		numKeys++
	}
	return checkEqual(numKeys, p.retainedEntries, "retained entries")
}

// IsEstimationMode reports whether the sketch is in estimation mode,
// as opposed to exact mode.
func (s *ArrayOfDoublesUpdateSketch) IsEstimationMode() bool {
	return s.Theta64() < MaxTheta && !s.IsEmpty()
}

// Theta returns theta as a fraction from 0 to 1, representing the
// effective sampling rate.
func (s *ArrayOfDoublesUpdateSketch) Theta() float64 {
	return float64(s.Theta64()) / float64(MaxTheta)
}

// Theta64 returns theta as a positive integer between 0 and MaxTheta.
func (s *ArrayOfDoublesUpdateSketch) Theta64() uint64 {
	if s.IsEmpty() {
		return MaxTheta
	}
	return s.sketch.theta
}

// IsEmpty reports whether this sketch represents an empty set.
// Note: this is not the same as having no retained hashes.
func (s *ArrayOfDoublesUpdateSketch) IsEmpty() bool {
	return s.sketch.isEmpty
}

// IsDirect reports whether the sketch lives in caller-provided memory.
func (s *ArrayOfDoublesUpdateSketch) IsDirect() bool {
	return s.direct != nil
}

// NumRetained returns the number of hashes retained in the sketch.
func (s *ArrayOfDoublesUpdateSketch) NumRetained() uint32 {
	return uint32(s.sketch.retainedEntries)
}

// NominalEntries returns the configured nominal number of entries.
func (s *ArrayOfDoublesUpdateSketch) NominalEntries() int {
	return s.sketch.nominalEntries()
}

// NumValues returns the number of values kept for each key.
func (s *ArrayOfDoublesUpdateSketch) NumValues() uint8 {
	return s.sketch.numValues
}

// LgK returns log2 of the nominal number of entries.
func (s *ArrayOfDoublesUpdateSketch) LgK() uint8 {
	return s.sketch.lgNomEntries
}

// LgCurrentCapacity returns log2 of the number of slots in the hash table.
func (s *ArrayOfDoublesUpdateSketch) LgCurrentCapacity() uint8 {
	return s.sketch.lgCurCapacity
}

// ResizeFactor returns a configured resize factor of the sketch
func (s *ArrayOfDoublesUpdateSketch) ResizeFactor() ResizeFactor {
	return s.sketch.rf
}

// SamplingProbability returns the configured initial sampling probability.
func (s *ArrayOfDoublesUpdateSketch) SamplingProbability() float32 {
	return s.sketch.p
}

// SeedHash returns the hash of the seed used to hash the input.
func (s *ArrayOfDoublesUpdateSketch) SeedHash() (uint16, error) {
	return s.sketch.seedHash, nil
}

// All returns an iterator over all retained keys and copies of their values,
// in table order.
func (s *ArrayOfDoublesUpdateSketch) All() iter.Seq2[uint64, []float64] {
	return func(yield func(uint64, []float64) bool) {
		store := s.sketch.store
		for i := 0; i < store.Capacity(); i++ {
			key := store.Key(i)
			if key == 0 {
				continue
			}
			values := make([]float64, s.sketch.numValues)
			store.ReadValues(i, values)
			if !yield(key, values) {
				return
			}
		}
	}
}

// UpdateUint64 updates this sketch with a given unsigned 64-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateUint64(key uint64, values []float64) error {
	return s.UpdateInt64(int64(key), values)
}

// UpdateInt64 updates this sketch with a given signed 64-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateInt64(key int64, values []float64) error {
	binary.LittleEndian.PutUint64(s.buf[:], uint64(key))
	return s.update(s.buf[:], values)
}

// UpdateUint32 updates this sketch with a given unsigned 32-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateUint32(key uint32, values []float64) error {
	return s.UpdateInt64(int64(key), values)
}

// UpdateInt32 updates this sketch with a given signed 32-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateInt32(key int32, values []float64) error {
	return s.UpdateInt64(int64(key), values)
}

// UpdateUint16 updates this sketch with a given unsigned 16-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateUint16(key uint16, values []float64) error {
	return s.UpdateInt64(int64(key), values)
}

// UpdateInt16 updates this sketch with a given signed 16-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateInt16(key int16, values []float64) error {
	return s.UpdateInt64(int64(key), values)
}

// UpdateUint8 updates this sketch with a given unsigned 8-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateUint8(key uint8, values []float64) error {
	return s.UpdateInt64(int64(key), values)
}

// UpdateInt8 updates this sketch with a given signed 8-bit integer
func (s *ArrayOfDoublesUpdateSketch) UpdateInt8(key int8, values []float64) error {
	return s.UpdateInt64(int64(key), values)
}

// UpdateFloat64 updates this sketch with a given double-precision floating point value
func (s *ArrayOfDoublesUpdateSketch) UpdateFloat64(key float64, values []float64) error {
	return s.UpdateInt64(canonicalDouble(key), values)
}

// UpdateFloat32 updates this sketch with a given floating point value
func (s *ArrayOfDoublesUpdateSketch) UpdateFloat32(key float32, values []float64) error {
	return s.UpdateFloat64(float64(key), values)
}

// UpdateString updates this sketch with a given string
func (s *ArrayOfDoublesUpdateSketch) UpdateString(key string, values []float64) error {
	if key == "" {
		return ErrUpdateEmptyString
	}
	return s.update([]byte(key), values)
}

// UpdateBytes updates this sketch with given data
func (s *ArrayOfDoublesUpdateSketch) UpdateBytes(data []byte, values []float64) error {
	if len(data) == 0 {
		return ErrUpdateEmptyBytes
	}
	return s.update(data, values)
}

func (s *ArrayOfDoublesUpdateSketch) update(data []byte, values []float64) error {
	return s.sketch.insertOrIgnore(s.hasher.Hash(data)>>1, values)
}

// InsertHash offers an already hashed key to the sketch. Hashes of zero or
// at or above theta are ignored.
func (s *ArrayOfDoublesUpdateSketch) InsertHash(hash uint64, values []float64) error {
	return s.sketch.insertOrIgnore(hash, values)
}

// MergeHash absorbs an entry taken from another sketch built with the same
// seed, combining values if the hash is already retained. It is the entry
// point for set operations; callers are responsible for their own theta.
func (s *ArrayOfDoublesUpdateSketch) MergeHash(hash uint64, values []float64) error {
	if len(values) != int(s.sketch.numValues) {
		return fmt.Errorf("%w: expected %d, actual %d", ErrInvalidNumValues, s.sketch.numValues, len(values))
	}
	return s.sketch.merge(hash, values)
}

// Trim removes retained entries in excess of the nominal size k (if any)
func (s *ArrayOfDoublesUpdateSketch) Trim() error {
	return s.sketch.trim()
}

// Reset resets the sketch to the initial empty state
func (s *ArrayOfDoublesUpdateSketch) Reset() error {
	return s.sketch.reset()
}

// SerializedSizeBytes returns the size of the image produced by Encode.
func (s *ArrayOfDoublesUpdateSketch) SerializedSizeBytes() int {
	return serializedSizeBytes(s.sketch.currentCapacity(), int(s.sketch.numValues))
}

// MarshalBinary returns the serialized image of the sketch.
func (s *ArrayOfDoublesUpdateSketch) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(s.SerializedSizeBytes())
	encoder := NewArrayOfDoublesSketchEncoder(&buf)
	if err := encoder.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns a human-readable summary of this sketch.
// If printItems is true, the output includes all retained hashes.
func (s *ArrayOfDoublesUpdateSketch) String(shouldPrintItems bool) string {
	var result strings.Builder
	result.WriteString("### Array of doubles update sketch summary:")
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   num retained hashes : %d", s.NumRetained()))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   num values           : %d", s.NumValues()))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   seed hash            : %d", s.sketch.seedHash))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   empty?               : %t", s.IsEmpty()))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   direct?              : %t", s.IsDirect()))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   estimation mode?     : %t", s.IsEstimationMode()))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   theta (fraction)     : %f", s.Theta()))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   theta (raw 64-bit)   : %d", s.Theta64()))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   lg nominal size      : %d", s.sketch.lgNomEntries))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   lg current size      : %d", s.sketch.lgCurCapacity))
	result.WriteString("\n")
	result.WriteString(fmt.Sprintf("   resize factor        : %d", 1<<s.sketch.rf))
	result.WriteString("\n")
	result.WriteString("### End sketch summary")
	result.WriteString("\n")

	if shouldPrintItems {
		result.WriteString("### Retained entries")
		result.WriteString("\n")

		for hash, values := range s.All() {
			result.WriteString(fmt.Sprintf("%d: %v", hash, values))
			result.WriteString("\n")
		}

		result.WriteString("### End retained entries")
		result.WriteString("\n")
	}

	return result.String()
}

// canonicalDouble canonicalizes double values for Java compatibility
func canonicalDouble(value float64) int64 {
	if value == 0.0 {
		return 0 // canonicalize -0.0 to 0.0
	} else if math.IsNaN(value) {
		return 0x7ff8000000000000 // canonicalize NaN using value from Java's Double.doubleToLongBits()
	}
	return int64(math.Float64bits(value))
}

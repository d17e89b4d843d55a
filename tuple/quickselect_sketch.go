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
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/apache/datasketches-tuple-go/internal"
)

var ErrInvalidNumValues = errors.New("invalid number of values")

// quickSelectSketch is the hash table engine shared by all array-of-doubles
// update sketches. It keeps at least nominalEntries keys below theta and,
// once the table is full at twice the nominal size, lowers theta to the
// (nominalEntries+1)-th smallest key and drops everything at or above it.
type quickSelectSketch struct {
	store            EntryStore
	preambleSink     preambleWriter
	combine          Combiner
	logger           *slog.Logger
	scratch          []float64
	resolver         slotResolver
	theta            uint64
	retainedEntries  int
	rebuildThreshold int
	p                float32
	seedHash         uint16
	numValues        uint8
	lgNomEntries     uint8
	lgCurCapacity    uint8
	rf               ResizeFactor
	isEmpty          bool
}

func newQuickSelectSketch(store EntryStore, p preamble, combine Combiner, logger *slog.Logger) *quickSelectSketch {
	if combine == nil {
		combine = SumCombiner
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &quickSelectSketch{
		store:           store,
		combine:         combine,
		logger:          logger,
		scratch:         make([]float64, p.numValues),
		theta:           p.theta,
		retainedEntries: int(p.retainedEntries),
		p:               p.p,
		seedHash:        p.seedHash,
		numValues:       p.numValues,
		lgNomEntries:    p.lgNomEntries,
		lgCurCapacity:   p.lgCurCapacity,
		rf:              ResizeFactor(p.lgResizeFactor),
		isEmpty:         p.isEmpty,
	}
	s.preambleSink, _ = store.(preambleWriter)
	s.resolver = newSlotResolver(s.lgCurCapacity)
	s.setRebuildThreshold()
	s.syncPreamble()
	return s
}

func (s *quickSelectSketch) nominalEntries() int {
	return 1 << s.lgNomEntries
}

func (s *quickSelectSketch) currentCapacity() int {
	return 1 << s.lgCurCapacity
}

func (s *quickSelectSketch) preamble() preamble {
	return preamble{
		theta:           s.theta,
		retainedEntries: uint32(s.retainedEntries),
		p:               s.p,
		seedHash:        s.seedHash,
		numValues:       s.numValues,
		lgNomEntries:    s.lgNomEntries,
		lgCurCapacity:   s.lgCurCapacity,
		lgResizeFactor:  uint8(s.rf),
		isEmpty:         s.isEmpty,
	}
}

func (s *quickSelectSketch) syncPreamble() {
	if s.preambleSink == nil {
		return
	}
	p := s.preamble()
	s.preambleSink.writePreamble(&p)
}

func (s *quickSelectSketch) setNotEmpty() {
	if s.isEmpty {
		s.isEmpty = false
		s.syncPreamble()
	}
}

// insertOrIgnore admits key if it is non-zero and below theta. Any call with
// a well-formed value vector marks the sketch as non-empty.
func (s *quickSelectSketch) insertOrIgnore(key uint64, values []float64) error {
	if len(values) != int(s.numValues) {
		return fmt.Errorf("%w: expected %d, actual %d", ErrInvalidNumValues, s.numValues, len(values))
	}
	s.setNotEmpty()
	if key == 0 || key >= s.theta {
		return nil
	}
	return s.admit(key, values)
}

// merge is insertOrIgnore for entries coming from another sketch. The caller
// guarantees the shape of values.
func (s *quickSelectSketch) merge(key uint64, values []float64) error {
	s.setNotEmpty()
	if key == 0 || key >= s.theta {
		return nil
	}
	return s.admit(key, values)
}

func (s *quickSelectSketch) admit(key uint64, values []float64) error {
	found, err := s.resolver.locate(s.store, key)
	if err != nil {
		return err
	}

	if found.found {
		s.store.ReadValues(found.index, s.scratch)
		s.combine(s.scratch, values)
		s.store.WriteValues(found.index, s.scratch)
		return nil
	}

	s.store.SetKey(found.index, key)
	s.store.WriteValues(found.index, values)
	s.retainedEntries++

	err = s.rebuildIfNeeded()
	s.syncPreamble()
	return err
}

func (s *quickSelectSketch) rebuildIfNeeded() error {
	if s.retainedEntries < s.rebuildThreshold {
		return nil
	}
	if s.currentCapacity() > s.nominalEntries() {
		s.updateTheta()
		return s.rebuild(s.lgCurCapacity)
	}
	lgNewCapacity := min(s.lgCurCapacity+max(uint8(s.rf), 1), s.lgNomEntries+1)
	return s.rebuild(lgNewCapacity)
}

// rebuild moves every entry below theta into a fresh table of
// 1<<lgNewCapacity slots. If the store cannot provide the new table the
// sketch is left untouched.
func (s *quickSelectSketch) rebuild(lgNewCapacity uint8) error {
	oldCapacity := s.store.Capacity()
	numValues := int(s.numValues)

	keys := make([]uint64, 0, s.retainedEntries)
	values := make([]float64, 0, s.retainedEntries*numValues)
	for i := 0; i < oldCapacity; i++ {
		key := s.store.Key(i)
		if key != 0 && key < s.theta {
			s.store.ReadValues(i, s.scratch)
			keys = append(keys, key)
			values = append(values, s.scratch...)
		}
	}

	if err := s.store.Reset(1 << lgNewCapacity); err != nil {
		return fmt.Errorf("rebuild to lg capacity %d: %w", lgNewCapacity, err)
	}

	lgOldCapacity := s.lgCurCapacity
	s.lgCurCapacity = lgNewCapacity
	s.resolver = newSlotResolver(lgNewCapacity)
	s.setRebuildThreshold()
	s.retainedEntries = 0

	for i, key := range keys {
		index, err := s.resolver.insertKey(s.store, key)
		if err != nil {
			return err
		}
		s.store.WriteValues(index, values[i*numValues:(i+1)*numValues])
		s.retainedEntries++
	}

	if lgNewCapacity != lgOldCapacity {
		s.logger.Debug("tuple sketch resized",
			"lg_capacity_from", lgOldCapacity,
			"lg_capacity_to", lgNewCapacity,
			"retained", s.retainedEntries)
	} else {
		s.logger.Debug("tuple sketch rebuilt",
			"theta", s.theta,
			"retained", s.retainedEntries)
	}
	return nil
}

// updateTheta lowers theta so that exactly nominalEntries retained keys stay
// below it.
func (s *quickSelectSketch) updateTheta() {
	nominal := s.nominalEntries()
	if s.retainedEntries <= nominal {
		return
	}

	keys := make([]uint64, 0, s.retainedEntries)
	for i := 0; i < s.store.Capacity(); i++ {
		if key := s.store.Key(i); key != 0 {
			keys = append(keys, key)
		}
	}
	s.theta = internal.QuickSelect(keys, 0, len(keys)-1, nominal)
}

// trim drops entries in excess of the nominal count.
func (s *quickSelectSketch) trim() error {
	if s.retainedEntries <= s.nominalEntries() {
		return nil
	}
	s.updateTheta()
	err := s.rebuild(s.lgCurCapacity)
	s.syncPreamble()
	return err
}

func (s *quickSelectSketch) setRebuildThreshold() {
	fraction := resizeThreshold
	if s.currentCapacity() > s.nominalEntries() {
		fraction = rebuildThreshold
	}
	s.rebuildThreshold = int(math.Floor(fraction * float64(s.currentCapacity())))
}

// reset restores the freshly constructed state.
func (s *quickSelectSketch) reset() error {
	lgStart := startingSubMultiple(s.lgNomEntries+1, minLgCapacity, uint8(s.rf))
	if err := s.store.Reset(1 << lgStart); err != nil {
		return err
	}
	s.lgCurCapacity = lgStart
	s.resolver = newSlotResolver(lgStart)
	s.setRebuildThreshold()
	s.retainedEntries = 0
	s.theta = startingThetaFromP(s.p)
	s.isEmpty = true
	s.syncPreamble()
	return nil
}

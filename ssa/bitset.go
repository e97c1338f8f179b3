/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ssa

import (
    `github.com/bits-and-blooms/bitset`
)

func newset() *bitset.BitSet {
    return bitset.New(0)
}

func setequal(a *bitset.BitSet, b *bitset.BitSet) bool {
    return a.SymmetricDifferenceCardinality(b) == 0
}

func setunion(a *bitset.BitSet, b *bitset.BitSet) *bitset.BitSet {
    a.InPlaceUnion(b)
    return a
}

func setvalues(s *bitset.BitSet) []Value {
    ret := make([]Value, 0, s.Count())
    for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
        ret = append(ret, Value(i))
    }
    return ret
}

func setinstrs(s *bitset.BitSet) []InstrID {
    ret := make([]InstrID, 0, s.Count())
    for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
        ret = append(ret, InstrID(i))
    }
    return ret
}

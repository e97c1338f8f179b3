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

type AnalysisKind uint8

const (
    AnalysisDominators AnalysisKind = iota
    AnalysisLiveness
    AnalysisReachingDefs
    _AnalysisCount
)

var _AnalysisNames = [_AnalysisCount]string {
    AnalysisDominators   : "dominators",
    AnalysisLiveness     : "liveness",
    AnalysisReachingDefs : "reaching-defs",
}

// the kind of changes each analysis depends on
var _AnalysisDeps = [_AnalysisCount]Invalidation {
    AnalysisDominators   : { CFGChanged: true },
    AnalysisLiveness     : { CFGChanged: true, DefsChanged: true },
    AnalysisReachingDefs : { CFGChanged: true, DefsChanged: true },
}

var _AnalysisBuilders = [_AnalysisCount]func(Program) interface{} {
    AnalysisDominators   : func(p Program) interface{} { return BuildDominatorTree(p) },
    AnalysisLiveness     : func(p Program) interface{} { return ComputeLiveness(p) },
    AnalysisReachingDefs : func(p Program) interface{} { return ComputeReachingDefs(p) },
}

func (self AnalysisKind) String() string {
    if self < _AnalysisCount {
        return _AnalysisNames[self]
    } else {
        return "???"
    }
}

type _AnalysisCache struct {
    prog   Program
    result [_AnalysisCount]interface{}
    builds [_AnalysisCount]int
}

func newAnalysisCache(p Program) *_AnalysisCache {
    return &_AnalysisCache { prog: p }
}

func (self *_AnalysisCache) get(kind AnalysisKind) interface{} {
    if self.result[kind] == nil {
        self.builds[kind]++
        self.result[kind] = _AnalysisBuilders[kind](self.prog)
    }
    return self.result[kind]
}

func (self *_AnalysisCache) valid(kind AnalysisKind) bool {
    return self.result[kind] != nil
}

// invalidate purges every cached analysis the changes make stale, and
// returns the purged kinds.
func (self *_AnalysisCache) invalidate(inv Invalidation) (ret []AnalysisKind) {
    for k := AnalysisKind(0); k < _AnalysisCount; k++ {
        if self.result[k] != nil && inv.Invalidates(k) {
            self.result[k] = nil
            ret = append(ret, k)
        }
    }
    return
}

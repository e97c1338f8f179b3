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
    `strings`
    `time`
)

// Invalidation is what a pass reports back about the changes it made.
type Invalidation struct {
    CFGChanged  bool
    DefsChanged bool
}

func (self Invalidation) Any() bool {
    return self.CFGChanged || self.DefsChanged
}

func (self Invalidation) Merge(other Invalidation) Invalidation {
    return Invalidation {
        CFGChanged  : self.CFGChanged || other.CFGChanged,
        DefsChanged : self.DefsChanged || other.DefsChanged,
    }
}

// Invalidates reports whether an analysis of the given kind is stale after
// these changes.
func (self Invalidation) Invalidates(kind AnalysisKind) bool {
    dep := _AnalysisDeps[kind]
    return (dep.CFGChanged && self.CFGChanged) || (dep.DefsChanged && self.DefsChanged)
}

func (self Invalidation) String() string {
    var ret []string
    if self.CFGChanged  { ret = append(ret, "cfg") }
    if self.DefsChanged { ret = append(ret, "defs") }
    if len(ret) == 0    { return "-" }
    return strings.Join(ret, ",")
}

// Pass is a transformation over a Program. Passes never fail: a pass that
// finds nothing to do leaves the program untouched.
type Pass interface {
    Name() string
    Apply(ctx *PassContext) Invalidation
}

// PassStats records what a single pass did.
type PassStats struct {
    Name        string
    Visited     int
    Modified    int
    Removed     int
    Elapsed     time.Duration
    Invalidated Invalidation
}

// PassContext is handed to a pass for the duration of one run.
type PassContext struct {
    Prog  Program
    Stats *PassStats
    cache *_AnalysisCache
}

// NewPassContext creates a context with an empty analysis cache, for running
// a pass outside of a PassManager.
func NewPassContext(p Program) *PassContext {
    return &PassContext {
        Prog  : p,
        Stats : new(PassStats),
        cache : newAnalysisCache(p),
    }
}

func (self *PassContext) Dominators() *DominatorTree {
    return self.cache.get(AnalysisDominators).(*DominatorTree)
}

func (self *PassContext) Liveness() *Liveness {
    return self.cache.get(AnalysisLiveness).(*Liveness)
}

func (self *PassContext) ReachingDefs() *ReachingDefs {
    return self.cache.get(AnalysisReachingDefs).(*ReachingDefs)
}

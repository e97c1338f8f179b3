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
    `fmt`
    `sync/atomic`
    `time`

    `github.com/vitlang/vitc/internal/opts`
    `go.uber.org/zap`
)

var (
    PipelineCount  uint64
    PassCount      uint64
    VerifyFailures uint64
)

type State uint8

const (
    StateIdle State = iota
    StateRunning
    StateAnalysisStale
    StateAnalysisValid
    StateDone
    StateFailed
)

var _StateNames = [...]string {
    StateIdle          : "idle",
    StateRunning       : "running",
    StateAnalysisStale : "analysis-stale",
    StateAnalysisValid : "analysis-valid",
    StateDone          : "done",
    StateFailed        : "failed",
}

func (self State) String() string {
    if int(self) < len(_StateNames) {
        return _StateNames[self]
    } else {
        return "???"
    }
}

// PassError is returned by RunModule when the program fails the consistency
// check, either on entry (Pass is empty) or right after a pass.
type PassError struct {
    Pass string
    Err  error
}

func (self PassError) Error() string {
    if self.Pass == "" {
        return fmt.Sprintf("ssa: invalid input program: %v", self.Err)
    } else {
        return fmt.Sprintf("ssa: pass %s left an invalid program: %v", self.Pass, self.Err)
    }
}

func (self PassError) Unwrap() error {
    return self.Err
}

type ManagerOption func(*PassManager)

// WithVerify enables or disables the consistency check around every pass.
func WithVerify(v bool) ManagerOption {
    return func(pm *PassManager) { pm.verify = v }
}

// PassManager runs an ordered pipeline of passes over a Program, keeping
// analysis results cached for as long as the passes leave them valid.
type PassManager struct {
    passes  []Pass
    verify  bool
    state   State
    current int
    cache   *_AnalysisCache
}

func NewPassManager(options ...ManagerOption) *PassManager {
    ret := &PassManager {
        verify  : opts.VerifyPasses,
        current : -1,
    }

    /* apply all the options */
    for _, fn := range options {
        fn(ret)
    }

    /* all done */
    return ret
}

// Add appends a pass to the pipeline.
func (self *PassManager) Add(p Pass) *PassManager {
    self.passes = append(self.passes, p)
    return self
}

func (self *PassManager) Passes() []Pass {
    return self.passes
}

func (self *PassManager) State() State {
    return self.state
}

// Current returns the index of the most recently started pass, or -1 if no
// pass has been started yet.
func (self *PassManager) Current() int {
    return self.current
}

// Cached reports whether the result of an analysis is currently cached.
func (self *PassManager) Cached(kind AnalysisKind) bool {
    return self.cache != nil && self.cache.valid(kind)
}

// RunModule runs every pass in order. When the consistency check fails, the
// returned report holds the statistics of every pass that ran so far.
func (self *PassManager) RunModule(p Program) (*PassReport, error) {
    t0 := time.Now()
    ret := new(PassReport)
    atomic.AddUint64(&PipelineCount, 1)

    /* reset the pipeline */
    self.current = -1
    self.state = StateIdle
    self.cache = newAnalysisCache(p)

    /* check the input program */
    if err := self.check(p, ""); err != nil {
        return ret, err
    }

    /* run every pass */
    for i, pass := range self.passes {
        ctx := &PassContext {
            Prog  : p,
            Stats : &PassStats { Name: pass.Name() },
            cache : self.cache,
        }

        /* run the pass */
        t1 := time.Now()
        self.current = i
        self.state = StateRunning
        inv := pass.Apply(ctx)

        /* update the statistics */
        ctx.Stats.Elapsed = time.Since(t1)
        ctx.Stats.Invalidated = inv
        ret.Passes = append(ret.Passes, *ctx.Stats)
        atomic.AddUint64(&PassCount, 1)

        /* purge the stale analyses */
        if purged := self.cache.invalidate(inv); !inv.Any() {
            self.state = StateAnalysisValid
        } else {
            self.state = StateAnalysisStale
            Logger().Debug("analyses purged", zap.String("pass", pass.Name()), zap.Stringers("kinds", purged))
        }

        /* log the pass result */
        Logger().Debug("pass finished",
            zap.String("pass", pass.Name()),
            zap.Int("visited", ctx.Stats.Visited),
            zap.Int("modified", ctx.Stats.Modified),
            zap.Int("removed", ctx.Stats.Removed),
            zap.Duration("elapsed", ctx.Stats.Elapsed),
            zap.Stringer("invalidated", inv),
        )

        /* check the output program */
        if err := self.check(p, pass.Name()); err != nil {
            ret.Elapsed = time.Since(t0)
            return ret, err
        }
    }

    /* all done */
    self.state = StateDone
    ret.Elapsed = time.Since(t0)
    return ret, nil
}

func (self *PassManager) check(p Program, pass string) error {
    if !self.verify {
        return nil
    }

    /* run the consistency check */
    err := Verify(p)
    if err == nil {
        return nil
    }

    /* the pipeline cannot continue */
    self.state = StateFailed
    atomic.AddUint64(&VerifyFailures, 1)
    Logger().Error("inconsistent control flow graph", zap.String("pass", pass), zap.Error(err))
    return PassError { Pass: pass, Err: err }
}

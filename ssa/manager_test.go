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

package ssa_test

import (
    `errors`
    `strings`
    `testing`

    `github.com/hashicorp/go-multierror`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `github.com/vitlang/vitc/ir`
    `github.com/vitlang/vitc/ssa`
)

type probePass struct {
    name string
    inv  ssa.Invalidation
    fn   func(ctx *ssa.PassContext)
}

func (self probePass) Name() string {
    return self.name
}

func (self probePass) Apply(ctx *ssa.PassContext) ssa.Invalidation {
    if self.fn != nil {
        self.fn(ctx)
    }
    return self.inv
}

func TestManager_Pipeline(t *testing.T) {
    fn := diamond()
    pm := ssa.NewPassManager()
    require.Equal(t, ssa.StateIdle, pm.State())
    require.Equal(t, -1, pm.Current())
    pm.Add(ssa.SimplifyCfg{}).Add(ssa.ConstProp{}).Add(ssa.DeadCodeElim{})
    rep, err := pm.RunModule(fn)
    require.NoError(t, err)
    require.NoError(t, ir.Verify(fn))
    require.Equal(t, ssa.StateDone, pm.State())
    require.Equal(t, 2, pm.Current())
    require.Len(t, rep.Passes, 3)
    assert.Equal(t, "simplify-cfg", rep.Passes[0].Name)
    assert.Equal(t, "constprop", rep.Passes[1].Name)
    assert.Equal(t, "dce", rep.Passes[2].Name)
    assert.Equal(t, 1, rep.Passes[0].Removed)
    assert.True(t, rep.Passes[0].Invalidated.CFGChanged)
    st, ok := rep.Find("dce")
    require.True(t, ok)
    assert.Zero(t, st.Removed)
    _, ok = rep.Find("inline")
    assert.False(t, ok)
}

func TestManager_AnalysisCache(t *testing.T) {
    var dom *ssa.DominatorTree
    var live *ssa.Liveness
    var pm *ssa.PassManager
    fn := sumLoop()

    /* the first pass warms up the cache and changes nothing */
    warm := probePass { name: "warm", fn: func(ctx *ssa.PassContext) {
        dom = ctx.Dominators()
        live = ctx.Liveness()
        assert.Equal(t, ssa.StateRunning, pm.State())
    }}

    /* the second pass sees the same results, and changes the definitions */
    defs := probePass { name: "defs", inv: ssa.Invalidation { DefsChanged: true }, fn: func(ctx *ssa.PassContext) {
        assert.Same(t, dom, ctx.Dominators())
        assert.Same(t, live, ctx.Liveness())
        assert.True(t, pm.Cached(ssa.AnalysisLiveness))
    }}

    /* the third pass gets the same dominators but a fresh liveness */
    check := probePass { name: "check", fn: func(ctx *ssa.PassContext) {
        assert.True(t, pm.Cached(ssa.AnalysisDominators))
        assert.False(t, pm.Cached(ssa.AnalysisLiveness))
        assert.Same(t, dom, ctx.Dominators())
        assert.NotSame(t, live, ctx.Liveness())
    }}

    /* the last pass changes the CFG */
    cfg := probePass { name: "cfg", inv: ssa.Invalidation { CFGChanged: true } }
    pm = ssa.NewPassManager().Add(warm).Add(defs).Add(check).Add(cfg)
    _, err := pm.RunModule(fn)
    require.NoError(t, err)
    assert.False(t, pm.Cached(ssa.AnalysisDominators))
    assert.False(t, pm.Cached(ssa.AnalysisLiveness))
    assert.False(t, pm.Cached(ssa.AnalysisReachingDefs))
}

func TestManager_ConstPropPurgesLiveness(t *testing.T) {
    var pm *ssa.PassManager
    fn := foldAcrossBlocks()

    /* bb_1 reads %0 before folding */
    warm := probePass { name: "warm", fn: func(ctx *ssa.PassContext) {
        assert.Equal(t, []ssa.Value { 0 }, ctx.Liveness().LiveIn(1))
    }}

    /* after folding the cached liveness must be gone */
    check := probePass { name: "check", fn: func(ctx *ssa.PassContext) {
        assert.False(t, pm.Cached(ssa.AnalysisLiveness))
        assert.False(t, pm.Cached(ssa.AnalysisReachingDefs))
        assert.Empty(t, ctx.Liveness().LiveIn(1))
        assert.Equal(t, ssa.ComputeLiveness(fn).LiveIn(1), ctx.Liveness().LiveIn(1))
    }}

    pm = ssa.NewPassManager().Add(warm).Add(ssa.ConstProp{}).Add(check)
    rep, err := pm.RunModule(fn)
    require.NoError(t, err)
    st, ok := rep.Find("constprop")
    require.True(t, ok)
    assert.True(t, st.Invalidated.DefsChanged)
}

func TestManager_StateAfterPass(t *testing.T) {
    var seen []ssa.State
    var pm *ssa.PassManager
    pm = ssa.NewPassManager()
    pm.Add(probePass { name: "a", inv: ssa.Invalidation { DefsChanged: true } })
    pm.Add(probePass { name: "b", fn: func(*ssa.PassContext) { seen = append(seen, pm.State()) } })
    rep, err := pm.RunModule(sumLoop())
    require.NoError(t, err)
    require.Equal(t, []ssa.State { ssa.StateRunning }, seen)
    require.Equal(t, "-", rep.Passes[1].Invalidated.String())
    require.Equal(t, "defs", rep.Passes[0].Invalidated.String())
}

func TestManager_VerifyAfterPass(t *testing.T) {
    fn := diamond()
    pm := ssa.NewPassManager(ssa.WithVerify(true))
    pm.Add(probePass { name: "breaker", fn: func(*ssa.PassContext) { fn.Block(3).Preds = nil } })
    pm.Add(ssa.DeadCodeElim{})
    rep, err := pm.RunModule(fn)
    require.Error(t, err)
    require.Equal(t, ssa.StateFailed, pm.State())
    require.Len(t, rep.Passes, 1)
    var pe ssa.PassError
    require.True(t, errors.As(err, &pe))
    require.Equal(t, "breaker", pe.Pass)
    var ce ssa.CFGError
    require.True(t, errors.As(err, &ce))
    require.Equal(t, ssa.BlockID(1), ce.Block)
    require.Contains(t, err.Error(), "breaker")
}

func TestManager_VerifyInput(t *testing.T) {
    fn := diamond()
    fn.Block(1).Preds = append(fn.Block(1).Preds, 2)
    _, err := ssa.NewPassManager(ssa.WithVerify(true)).Add(ssa.DeadCodeElim{}).RunModule(fn)
    var pe ssa.PassError
    require.True(t, errors.As(err, &pe))
    require.Empty(t, pe.Pass)
    var me *multierror.Error
    require.True(t, errors.As(err, &me))
    require.Len(t, me.Errors, 1)
}

func TestManager_VerifyDisabled(t *testing.T) {
    fn := diamond()
    fn.Block(1).Preds = nil
    _, err := ssa.NewPassManager(ssa.WithVerify(false)).Add(ssa.DeadCodeElim{}).RunModule(fn)
    require.NoError(t, err)
}

func TestVerify_Consistent(t *testing.T) {
    require.NoError(t, ssa.Verify(diamond()))
    require.NoError(t, ssa.Verify(sumLoop()))
}

func TestReport_String(t *testing.T) {
    pm := ssa.NewPassManager().Add(ssa.ConstProp{}).Add(ssa.DeadCodeElim{})
    rep, err := pm.RunModule(callChain())
    require.NoError(t, err)
    tot := rep.Total()
    require.Equal(t, "total", tot.Name)
    require.Equal(t, rep.Passes[0].Removed + rep.Passes[1].Removed, tot.Removed)
    lines := strings.Split(strings.TrimSuffix(rep.String(), "\n"), "\n")
    require.Len(t, lines, 5)
    require.Contains(t, lines[0], "pass")
    require.Contains(t, lines[0], "invalidated")
    require.Contains(t, lines[2], "constprop")
    require.Contains(t, lines[3], "dce")
    require.Contains(t, lines[4], "total")
}

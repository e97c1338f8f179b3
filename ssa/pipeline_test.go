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

    `github.com/stretchr/testify/require`
    `github.com/vitlang/vitc/ir`
    `github.com/vitlang/vitc/ssa`
)

func TestLoadPipeline(t *testing.T) {
    pm, err := ssa.LoadPipeline([]byte(`
verify: false
passes:
  - name: simplify-cfg
    max_rounds: 4
  - name: constprop
    fold_through_calls: false
  - name: constprop
  - name: dce
`))
    require.NoError(t, err)
    require.Equal(t, []ssa.Pass {
        ssa.SimplifyCfg { MaxRounds: 4 },
        ssa.ConstProp { FoldThroughCalls: false },
        ssa.ConstProp { FoldThroughCalls: true },
        ssa.DeadCodeElim{},
    }, pm.Passes())
    fn := diamond()
    fn.Block(1).Preds = nil
    _, err = pm.RunModule(fn)
    require.NoError(t, err)
}

func TestLoadPipeline_OptionsOverride(t *testing.T) {
    pm, err := ssa.LoadPipeline([]byte("verify: false\npasses: [{name: dce}]\n"), ssa.WithVerify(true))
    require.NoError(t, err)
    fn := diamond()
    fn.Block(1).Preds = nil
    _, err = pm.RunModule(fn)
    require.Error(t, err)
}

func TestLoadPipeline_Errors(t *testing.T) {
    for _, tc := range []struct {
        name  string
        src   string
        index int
        msg   string
    } {
        { "unknown pass"   , "passes: [{name: dce}, {name: inline}]"                   , 1 , `unknown pass "inline"` },
        { "unknown key"    , "passes: [{name: dce, level: 3}]"                         , -1, "level" },
        { "wrong option"   , "passes: [{name: constprop, max_rounds: 2}]"              , 0 , "max_rounds" },
        { "negative rounds", "passes: [{name: simplify-cfg, max_rounds: -1}]"          , 0 , "negative" },
        { "dce options"    , "passes: [{name: dce, fold_through_calls: true}]"         , 0 , "no options" },
        { "bad document"   , "passes: {name: dce}"                                     , -1, "" },
    } {
        t.Run(tc.name, func(t *testing.T) {
            _, err := ssa.LoadPipeline([]byte(tc.src))
            var pe ssa.PipelineError
            require.True(t, errors.As(err, &pe), "%v", err)
            require.Equal(t, tc.index, pe.Index)
            require.Contains(t, pe.Reason, tc.msg)
        })
    }
}

func TestDumpDot(t *testing.T) {
    out, err := ssa.DumpDot(diamond(), "abs")
    require.NoError(t, err)
    src := string(out)
    require.True(t, strings.HasPrefix(src, "digraph abs {"), src)
    for _, edge := range []string { "bb_0 -> bb_1", "bb_0 -> bb_2", "bb_1 -> bb_3", "bb_2 -> bb_3" } {
        require.Contains(t, src, edge)
    }
    require.Contains(t, src, `%1 = lt %0, 0`)
    require.Contains(t, src, `penwidth=2`)
}

func TestDumpDot_SelfLoop(t *testing.T) {
    fn := ir.NewFunc("spin", 1)
    b := ir.NewBuilder(fn)
    loop, exit := b.NewBlock(), b.NewBlock()
    b.Jump(loop)
    b.At(loop).Branch(ir.V(0), loop, exit)
    b.At(exit).Return()
    out, err := ssa.DumpDot(fn, "")
    require.NoError(t, err)
    require.Contains(t, string(out), "bb_1 -> bb_1")
    require.Contains(t, string(out), "label=0")
    require.Contains(t, string(out), "label=1")
}

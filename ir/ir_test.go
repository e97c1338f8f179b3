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

package ir

import (
    `errors`
    `math`
    `testing`

    `github.com/hashicorp/go-multierror`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
    `github.com/vitlang/vitc/ssa`
)

func abs() *Func {
    fn := NewFunc("abs", 1)
    b := NewBuilder(fn)
    neg, pos, join := b.NewBlock(), b.NewBlock(), b.NewBlock()
    c := b.Binary(OpLt, V(0), I(0))
    b.Branch(V(c), neg, pos)
    b.At(neg)
    n := b.Unary(OpNeg, V(0))
    b.Jump(join)
    b.At(pos).Jump(join)
    b.At(join)
    r := b.Phi(Incoming { neg, V(n) }, Incoming { pos, V(0) })
    b.Return(V(r))
    return fn
}

func TestBuilder_String(t *testing.T) {
    fn := abs()
    require.NoError(t, Verify(fn))
    require.Equal(t, "" +
        "func abs(1) {\n" +
        "bb_0:\n" +
        "    %0 = param 0\n" +
        "    %1 = lt %0, 0\n" +
        "    branch %1, bb_1, bb_2\n" +
        "bb_1:\n" +
        "    %2 = neg %0\n" +
        "    jump bb_3\n" +
        "bb_2:\n" +
        "    jump bb_3\n" +
        "bb_3:\n" +
        "    %3 = phi [bb_1: %2], [bb_2: %0]\n" +
        "    return %3\n" +
        "}\n",
        fn.String(),
    )
    require.Equal(t, []ssa.BlockID { 1, 2 }, fn.Preds(3))
    require.Equal(t, []ssa.BlockID { 1, 2 }, fn.Succs(0))
    require.Nil(t, fn.Succs(3))
}

func TestBuilder_Panics(t *testing.T) {
    fn := abs()
    b := NewBuilder(fn)
    require.PanicsWithValue(t, "ir: appending to the terminated block bb_0", func() { b.Int(1) })
    require.Panics(t, func() { b.Unary(OpAdd, I(1)) })
    require.Panics(t, func() { b.Binary(OpNeg, I(1), I(2)) })
    require.Panics(t, func() { b.At(3).Phi() })
    require.Panics(t, func() { b.AddIncoming(0, 1, I(1)) })
    require.Panics(t, func() { fn.Block(42) })
}

func TestPrinter_Constants(t *testing.T) {
    fn := NewFunc("k", 0)
    b := NewBuilder(fn)
    b.Float(2)
    b.Float(0.5)
    b.Float(math.Inf(-1))
    b.Str("a\"b")
    r := b.Call("f", I(-3), K(ssa.FloatConst(1e21)))
    b.Print(V(r))
    b.Return()
    require.Equal(t, "" +
        "func k(0) {\n" +
        "bb_0:\n" +
        "    %0 = const 2.0\n" +
        "    %1 = const 0.5\n" +
        "    %2 = const -Inf\n" +
        "    %3 = const \"a\\\"b\"\n" +
        "    %4 = call f(-3, 1e+21)\n" +
        "    print %4\n" +
        "    return\n" +
        "}\n",
        fn.String(),
    )
}

func TestFold(t *testing.T) {
    i, f, s := ssa.IntConst, ssa.FloatConst, ssa.StringConst
    for _, tc := range []struct {
        op   Op
        args []ssa.Const
        want ssa.Const
        ok   bool
    } {
        { OpAdd, []ssa.Const { i(math.MaxInt64), i(1) }, i(math.MinInt64), true },
        { OpSub, []ssa.Const { i(3), i(5) }, i(-2), true },
        { OpDiv, []ssa.Const { i(-7), i(2) }, i(-3), true },
        { OpRem, []ssa.Const { i(-7), i(2) }, i(-1), true },
        { OpDiv, []ssa.Const { i(1), i(0) }, ssa.Const{}, false },
        { OpRem, []ssa.Const { i(1), i(0) }, ssa.Const{}, false },
        { OpShl, []ssa.Const { i(1), i(63) }, i(math.MinInt64), true },
        { OpShl, []ssa.Const { i(1), i(64) }, ssa.Const{}, false },
        { OpShr, []ssa.Const { i(-8), i(1) }, i(-4), true },
        { OpShr, []ssa.Const { i(1), i(-1) }, ssa.Const{}, false },
        { OpLe, []ssa.Const { i(2), i(2) }, i(1), true },
        { OpNe, []ssa.Const { i(2), i(2) }, i(0), true },
        { OpMul, []ssa.Const { f(1.5), f(2) }, f(3), true },
        { OpDiv, []ssa.Const { f(1), f(0) }, f(math.Inf(1)), true },
        { OpAnd, []ssa.Const { f(1), f(0) }, ssa.Const{}, false },
        { OpAdd, []ssa.Const { s("ab"), s("cd") }, s("abcd"), true },
        { OpLt, []ssa.Const { s("ab"), s("b") }, i(1), true },
        { OpSub, []ssa.Const { s("ab"), s("b") }, ssa.Const{}, false },
        { OpAdd, []ssa.Const { i(1), f(1) }, ssa.Const{}, false },
        { OpNeg, []ssa.Const { i(5) }, i(-5), true },
        { OpNeg, []ssa.Const { f(0) }, f(math.Copysign(0, -1)), true },
        { OpNot, []ssa.Const { i(0) }, i(-1), true },
        { OpNot, []ssa.Const { s("x") }, ssa.Const{}, false },
        { OpPhi, []ssa.Const { i(4), i(4) }, i(4), true },
        { OpPhi, []ssa.Const { f(0), f(math.Copysign(0, -1)) }, ssa.Const{}, false },
        { OpCopy, []ssa.Const { s("x") }, s("x"), true },
    } {
        fn := NewFunc("fold", 0)
        p := fn.alloc(tc.op, fn.newValue())
        for _, c := range tc.args {
            p.Args = append(p.Args, K(c))
        }
        got, ok := fn.Fold(p.ID, func(ssa.Value) (ssa.Const, bool) { return ssa.Const{}, false })
        require.Equal(t, tc.ok, ok, "%s %v", tc.op, tc.args)
        if ok {
            assert.True(t, constIdentical(tc.want, got), "%s %v: got %v", tc.op, tc.args, got)
        }
    }
}

func TestFold_Lookup(t *testing.T) {
    fn := NewFunc("fold", 1)
    b := NewBuilder(fn)
    x := b.Binary(OpMul, V(0), I(3))
    y := b.Call("f")
    b.Return(V(y))
    known := func(v ssa.Value) (ssa.Const, bool) { return ssa.IntConst(4), v == 0 }
    c, ok := fn.Fold(fn.instrs[1].ID, known)
    require.True(t, ok)
    require.Equal(t, ssa.IntConst(12), c)
    _, ok = fn.Fold(fn.instrs[2].ID, known)
    require.False(t, ok, "calls never fold")
    _, ok = fn.Fold(fn.instrs[1].ID, func(ssa.Value) (ssa.Const, bool) { return ssa.Const{}, false })
    require.False(t, ok)
    require.Equal(t, ssa.Value(1), x)
}

func TestVerify_Errors(t *testing.T) {
    for _, tc := range []struct {
        name  string
        build func() *Func
        msg   string
    } {
        { "empty block", func() *Func {
            fn := abs()
            fn.NewBlock()
            return fn
        }, "empty block" },
        { "missing phi operand", func() *Func {
            fn := abs()
            phi := fn.instrs[fn.Block(3).Instrs[0]]
            phi.From, phi.Args = phi.From[:1], phi.Args[:1]
            return fn
        }, "phi has no operand for bb_2" },
        { "not dominated", func() *Func {
            fn := abs()
            fn.instrs[fn.Block(3).Instrs[1]].Args[0] = V(2)
            return fn
        }, "%2 does not dominate its use" },
        { "used before defined", func() *Func {
            fn := abs()
            fn.instrs[fn.Block(0).Instrs[1]].Args[1] = V(1)
            return fn
        }, "%1 is used before its definition" },
        { "undefined", func() *Func {
            fn := abs()
            fn.instrs[fn.Block(1).Instrs[0]].Args[0] = V(99)
            return fn
        }, "%99 is not defined" },
        { "not terminated", func() *Func {
            fn := NewFunc("f", 0)
            NewBuilder(fn).Int(1)
            return fn
        }, "block is not terminated" },
    } {
        t.Run(tc.name, func(t *testing.T) {
            err := Verify(tc.build())
            require.Error(t, err)
            var e Error
            require.True(t, errors.As(err, &e), "%v", err)
            require.Contains(t, err.Error(), tc.msg)
        })
    }
}

func TestVerify_BrokenCFG(t *testing.T) {
    fn := abs()
    fn.Block(2).Preds = nil
    err := Verify(fn)
    var ce ssa.CFGError
    require.True(t, errors.As(err, &ce))
    var me *multierror.Error
    require.True(t, errors.As(err, &me))
}

func TestProgram_ReplacePhi(t *testing.T) {
    fn := NewFunc("phis", 0)
    b := NewBuilder(fn)
    next := b.NewBlock()
    b.Jump(next)
    b.At(next)
    x := b.Phi(Incoming { 0, I(1) })
    b.Phi(Incoming { 0, I(2) })
    b.Return(V(x))
    old := fn.Block(next).Instrs[0]
    fn.ReplaceInstr(old, fn.NewLiteral(x, ssa.IntConst(1)))
    require.NoError(t, Verify(fn))
    require.Equal(t, "" +
        "func phis(0) {\n" +
        "bb_0:\n" +
        "    jump bb_1\n" +
        "bb_1:\n" +
        "    %1 = phi [bb_0: 2]\n" +
        "    %0 = const 1\n" +
        "    return %0\n" +
        "}\n",
        fn.String(),
    )
    require.Panics(t, func() { fn.ReplaceInstr(old, old) })
    require.Panics(t, func() { fn.RemoveInstr(fn.Block(next).Instrs[2]) })
}

func TestProgram_RedirectEdge(t *testing.T) {
    fn := abs()
    fn.RedirectEdge(0, 2, 3)
    require.Equal(t, "%3 = phi [bb_1: %2], [bb_2: %0], [bb_0: %0]", fn.FormatInstr(fn.Block(3).Instrs[0]))
    require.Equal(t, []ssa.BlockID { 1, 2, 0 }, fn.Preds(3))
    require.Empty(t, fn.Preds(2))
    fn.RemoveBlock(2)
    require.Equal(t, "%3 = phi [bb_1: %2], [bb_0: %0]", fn.FormatInstr(fn.Block(3).Instrs[0]))
    require.NoError(t, Verify(fn))
    b := NewBuilder(fn)
    nb, nb2 := b.NewBlock(), b.NewBlock()
    b.At(nb).Jump(nb2)
    b.At(nb2).Return()
    require.PanicsWithValue(t, "ir: %3 has no value for the edge from bb_4", func() { fn.RedirectEdge(nb, nb2, 3) })
}

func TestProgram_SubstituteUse(t *testing.T) {
    fn := abs()
    require.True(t, fn.SubstituteUse(fn.Block(0).Instrs[1], 0, ssa.IntConst(5)))
    require.False(t, fn.SubstituteUse(fn.Block(0).Instrs[1], 0, ssa.IntConst(5)))
    require.Equal(t, "%1 = lt 5, 0", fn.FormatInstr(fn.Block(0).Instrs[1]))
    uses, ok := fn.PhiUses(fn.Block(3).Instrs[0], 2)
    require.True(t, ok)
    require.Equal(t, []ssa.Value { 0 }, uses)
    _, ok = fn.PhiUses(fn.Block(3).Instrs[1], 2)
    require.False(t, ok)
}

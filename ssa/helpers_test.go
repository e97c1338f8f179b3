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
    `github.com/brianvoe/gofakeit/v6`
    `github.com/vitlang/vitc/ir`
    `github.com/vitlang/vitc/ssa`
)

// diamond builds
//
//     bb_0 -> bb_1, bb_2
//     bb_1 -> bb_3
//     bb_2 -> bb_3
//
// computing the absolute value of its only parameter.
func diamond() *ir.Func {
    fn := ir.NewFunc("abs", 1)
    b := ir.NewBuilder(fn)
    neg, pos, join := b.NewBlock(), b.NewBlock(), b.NewBlock()
    c := b.Binary(ir.OpLt, ir.V(0), ir.I(0))
    b.Branch(ir.V(c), neg, pos)
    b.At(neg)
    n := b.Unary(ir.OpNeg, ir.V(0))
    b.Jump(join)
    b.At(pos)
    b.Jump(join)
    b.At(join)
    r := b.Phi(ir.Incoming { From: neg, Arg: ir.V(n) }, ir.Incoming { From: pos, Arg: ir.V(0) })
    b.Return(ir.V(r))
    return fn
}

// sumLoop builds the sum of 0 .. n-1
//
//     bb_0 -> bb_1
//     bb_1 -> bb_2, bb_3
//     bb_2 -> bb_1
//
// with %1 the counter, %2 the sum, %4 and %5 their next values.
func sumLoop() *ir.Func {
    fn := ir.NewFunc("sum", 1)
    b := ir.NewBuilder(fn)
    head, body, exit := b.NewBlock(), b.NewBlock(), b.NewBlock()
    b.Jump(head)
    b.At(head)
    i := b.Phi(ir.Incoming { From: fn.Entry(), Arg: ir.I(0) })
    s := b.Phi(ir.Incoming { From: fn.Entry(), Arg: ir.I(0) })
    c := b.Binary(ir.OpLt, ir.V(i), ir.V(0))
    b.Branch(ir.V(c), body, exit)
    b.At(body)
    ni := b.Binary(ir.OpAdd, ir.V(i), ir.I(1))
    ns := b.Binary(ir.OpAdd, ir.V(s), ir.V(i))
    b.Jump(head)
    b.AddIncoming(i, body, ir.V(ni))
    b.AddIncoming(s, body, ir.V(ns))
    b.At(exit)
    b.Return(ir.V(s))
    return fn
}

// randomCFG builds a function of n blocks with random terminators. Some of
// the blocks may be unreachable.
func randomCFG(f *gofakeit.Faker, n int) *ir.Func {
    fn := ir.NewFunc("random", 0)
    b := ir.NewBuilder(fn)
    bbs := []ssa.BlockID { fn.Entry() }
    for len(bbs) < n {
        bbs = append(bbs, b.NewBlock())
    }
    pick := func() ssa.BlockID { return bbs[f.Number(0, n - 1)] }
    for _, bb := range bbs {
        b.At(bb)
        switch f.Number(0, 4) {
            case 0  : b.Return()
            case 1  : b.Jump(pick())
            default : b.Branch(ir.I(1), pick(), pick())
        }
    }
    return fn
}

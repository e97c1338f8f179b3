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
    `math`

    `github.com/vitlang/vitc/ssa`
)

// Fold evaluates a side-effect free instruction. Integer arithmetic wraps
// around, integer division by zero and shifts by more than 63 bits are never
// folded, and operands of different kinds never fold.
func (self *Func) Fold(ins ssa.InstrID, lookup func(ssa.Value) (ssa.Const, bool)) (ssa.Const, bool) {
    p := self.Instr(ins)
    args := make([]ssa.Const, len(p.Args))

    /* only pure value-producing instructions */
    if !p.Op.Defines() || p.Op.HasSideEffects() {
        return ssa.Const{}, false
    }

    /* resolve every operand */
    for i, a := range p.Args {
        if a.IsImm() {
            args[i] = a.Imm
        } else if c, ok := lookup(a.Value); ok {
            args[i] = c
        } else {
            return ssa.Const{}, false
        }
    }

    /* evaluate the instruction */
    switch op := p.Op; {
        case op == OpConst : return p.Const, true
        case op == OpCopy  : return args[0], true
        case op == OpPhi   : return foldPhi(args)
        case op.IsUnary()  : return foldUnary(op, args[0])
        case op.IsBinary() : return foldBinary(op, args[0], args[1])
        default            : return ssa.Const{}, false
    }
}

func foldPhi(args []ssa.Const) (ssa.Const, bool) {
    if len(args) == 0 {
        return ssa.Const{}, false
    }

    /* all the incoming values must be identical */
    for _, c := range args[1:] {
        if !constIdentical(c, args[0]) {
            return ssa.Const{}, false
        }
    }

    /* all done */
    return args[0], true
}

func foldUnary(op Op, x ssa.Const) (ssa.Const, bool) {
    switch {
        case op == OpNeg && x.Kind == ssa.ConstInt   : return ssa.IntConst(-x.Int), true
        case op == OpNeg && x.Kind == ssa.ConstFloat : return ssa.FloatConst(-x.Float), true
        case op == OpNot && x.Kind == ssa.ConstInt   : return ssa.IntConst(^x.Int), true
        default                                      : return ssa.Const{}, false
    }
}

func foldBinary(op Op, x ssa.Const, y ssa.Const) (ssa.Const, bool) {
    if x.Kind != y.Kind {
        return ssa.Const{}, false
    }

    /* evaluate by kind */
    switch x.Kind {
        case ssa.ConstInt    : return foldInt(op, x.Int, y.Int)
        case ssa.ConstFloat  : return foldFloat(op, x.Float, y.Float)
        case ssa.ConstString : return foldString(op, x.Str, y.Str)
        default              : return ssa.Const{}, false
    }
}

func foldInt(op Op, x int64, y int64) (ssa.Const, bool) {
    switch op {
        case OpAdd : return ssa.IntConst(x + y), true
        case OpSub : return ssa.IntConst(x - y), true
        case OpMul : return ssa.IntConst(x * y), true
        case OpAnd : return ssa.IntConst(x & y), true
        case OpOr  : return ssa.IntConst(x | y), true
        case OpXor : return ssa.IntConst(x ^ y), true
        case OpEq  : return boolConst(x == y), true
        case OpNe  : return boolConst(x != y), true
        case OpLt  : return boolConst(x < y), true
        case OpLe  : return boolConst(x <= y), true
    }

    /* operations with undefined operands */
    switch {
        case y == 0 && (op == OpDiv || op == OpRem) : return ssa.Const{}, false
        case (y < 0 || y > 63) && (op == OpShl || op == OpShr) : return ssa.Const{}, false
    }

    /* the rest of the operations */
    switch op {
        case OpDiv : return ssa.IntConst(x / y), true
        case OpRem : return ssa.IntConst(x % y), true
        case OpShl : return ssa.IntConst(x << uint(y)), true
        case OpShr : return ssa.IntConst(x >> uint(y)), true
        default    : return ssa.Const{}, false
    }
}

func foldFloat(op Op, x float64, y float64) (ssa.Const, bool) {
    switch op {
        case OpAdd : return ssa.FloatConst(x + y), true
        case OpSub : return ssa.FloatConst(x - y), true
        case OpMul : return ssa.FloatConst(x * y), true
        case OpDiv : return ssa.FloatConst(x / y), true
        case OpEq  : return boolConst(x == y), true
        case OpNe  : return boolConst(x != y), true
        case OpLt  : return boolConst(x < y), true
        case OpLe  : return boolConst(x <= y), true
        default    : return ssa.Const{}, false
    }
}

func foldString(op Op, x string, y string) (ssa.Const, bool) {
    switch op {
        case OpAdd : return ssa.StringConst(x + y), true
        case OpEq  : return boolConst(x == y), true
        case OpNe  : return boolConst(x != y), true
        case OpLt  : return boolConst(x < y), true
        case OpLe  : return boolConst(x <= y), true
        default    : return ssa.Const{}, false
    }
}

func boolConst(v bool) ssa.Const {
    if v {
        return ssa.IntConst(1)
    } else {
        return ssa.IntConst(0)
    }
}

// constIdentical compares floats bitwise, so NaN is identical to itself and
// 0.0 is not identical to -0.0.
func constIdentical(a ssa.Const, b ssa.Const) bool {
    switch {
        case a.Kind != b.Kind         : return false
        case a.Kind == ssa.ConstInt   : return a.Int == b.Int
        case a.Kind == ssa.ConstFloat : return math.Float64bits(a.Float) == math.Float64bits(b.Float)
        default                       : return a.Str == b.Str
    }
}

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
    `fmt`
)

type Op uint8

const (
    OpParam Op = iota
    OpConst
    OpCopy
    OpNeg
    OpNot
    OpAdd
    OpSub
    OpMul
    OpDiv
    OpRem
    OpAnd
    OpOr
    OpXor
    OpShl
    OpShr
    OpEq
    OpNe
    OpLt
    OpLe
    OpPhi
    OpCall
    OpPrint
    OpJump
    OpBranch
    OpReturn
    _OpCount
)

type _OpFlags uint8

const (
    _F_def _OpFlags = 1 << iota     // defines a value
    _F_eff                          // has side effects
    _F_term                         // terminates a block
    _F_unary                        // exactly one operand
    _F_binary                       // exactly two operands
)

var _OpNames = [_OpCount]string {
    OpParam  : "param",
    OpConst  : "const",
    OpCopy   : "copy",
    OpNeg    : "neg",
    OpNot    : "not",
    OpAdd    : "add",
    OpSub    : "sub",
    OpMul    : "mul",
    OpDiv    : "div",
    OpRem    : "rem",
    OpAnd    : "and",
    OpOr     : "or",
    OpXor    : "xor",
    OpShl    : "shl",
    OpShr    : "shr",
    OpEq     : "eq",
    OpNe     : "ne",
    OpLt     : "lt",
    OpLe     : "le",
    OpPhi    : "phi",
    OpCall   : "call",
    OpPrint  : "print",
    OpJump   : "jump",
    OpBranch : "branch",
    OpReturn : "return",
}

var _OpFlagTab = [_OpCount]_OpFlags {
    OpParam  : _F_def | _F_eff,
    OpConst  : _F_def,
    OpCopy   : _F_def | _F_unary,
    OpNeg    : _F_def | _F_unary,
    OpNot    : _F_def | _F_unary,
    OpAdd    : _F_def | _F_binary,
    OpSub    : _F_def | _F_binary,
    OpMul    : _F_def | _F_binary,
    OpDiv    : _F_def | _F_binary,
    OpRem    : _F_def | _F_binary,
    OpAnd    : _F_def | _F_binary,
    OpOr     : _F_def | _F_binary,
    OpXor    : _F_def | _F_binary,
    OpShl    : _F_def | _F_binary,
    OpShr    : _F_def | _F_binary,
    OpEq     : _F_def | _F_binary,
    OpNe     : _F_def | _F_binary,
    OpLt     : _F_def | _F_binary,
    OpLe     : _F_def | _F_binary,
    OpPhi    : _F_def,
    OpCall   : _F_def | _F_eff,
    OpPrint  : _F_eff | _F_unary,
    OpJump   : _F_eff | _F_term,
    OpBranch : _F_eff | _F_term | _F_unary,
    OpReturn : _F_eff | _F_term,
}

func (self Op) String() string {
    if self < _OpCount {
        return _OpNames[self]
    } else {
        return fmt.Sprintf("op(%d)", uint8(self))
    }
}

func (self Op) flags() _OpFlags {
    if self < _OpCount {
        return _OpFlagTab[self]
    } else {
        panic("ir: invalid op: " + self.String())
    }
}

// Defines reports whether instructions of this op define a value.
func (self Op) Defines() bool {
    return self.flags() & _F_def != 0
}

// HasSideEffects reports whether instructions of this op must be kept even
// if their results are never used.
func (self Op) HasSideEffects() bool {
    return self.flags() & _F_eff != 0
}

// IsTerminator reports whether this op ends a block.
func (self Op) IsTerminator() bool {
    return self.flags() & _F_term != 0
}

func (self Op) IsUnary() bool {
    return self.flags() & _F_unary != 0 && !self.IsTerminator() && self != OpPrint
}

func (self Op) IsBinary() bool {
    return self.flags() & _F_binary != 0
}

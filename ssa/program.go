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
    `strconv`
)

type (
    BlockID int
    InstrID int
    Value   int
)

const (
    NoBlock BlockID = -1
    NoInstr InstrID = -1
    NoValue Value   = -1
)

func (self BlockID) String() string {
    return "bb_" + strconv.Itoa(int(self))
}

func (self Value) String() string {
    return "%" + strconv.Itoa(int(self))
}

type ConstKind uint8

const (
    ConstInt ConstKind = iota
    ConstFloat
    ConstString
)

// Const is a compile-time known value.
type Const struct {
    Kind  ConstKind
    Int   int64
    Float float64
    Str   string
}

func IntConst(v int64) Const {
    return Const { Kind: ConstInt, Int: v }
}

func FloatConst(v float64) Const {
    return Const { Kind: ConstFloat, Float: v }
}

func StringConst(v string) Const {
    return Const { Kind: ConstString, Str: v }
}

func (self Const) String() string {
    switch self.Kind {
        case ConstInt    : return fmt.Sprintf("(i64) %d", self.Int)
        case ConstFloat  : return fmt.Sprintf("(f64) %g", self.Float)
        case ConstString : return fmt.Sprintf("(str) %q", self.Str)
        default          : return fmt.Sprintf("(invalid const kind %d)", self.Kind)
    }
}

// Program is what an IR has to provide for the analyses and passes in this
// package to work on it. Blocks, instructions and values are opaque handles
// owned by the implementation.
//
// The terminator of a block is the last instruction returned by Instrs, and
// it must report side effects so that no pass ever removes it.
type Program interface {
    Entry() BlockID
    Blocks() []BlockID
    Instrs(bb BlockID) []InstrID
    Succs(bb BlockID) []BlockID
    Preds(bb BlockID) []BlockID

    Defs(ins InstrID) []Value
    Uses(ins InstrID) []Value
    HasSideEffects(ins InstrID) bool

    // Literal returns the constant an instruction defines, if it is a literal.
    Literal(ins InstrID) (Const, bool)

    // Fold evaluates a side-effect free instruction with the constants known
    // so far. It returns false if the result is not a compile-time constant.
    Fold(ins InstrID, lookup func(Value) (Const, bool)) (Const, bool)

    // NewLiteral creates a detached literal instruction that defines def.
    NewLiteral(def Value, c Const) InstrID

    // ReplaceInstr puts a detached instruction in the place of an attached one.
    ReplaceInstr(old InstrID, with InstrID)

    // RemoveInstr detaches an instruction from its block.
    RemoveInstr(ins InstrID)

    // SubstituteUse replaces every use of v in ins with the literal c, it
    // returns false if ins cannot take a literal operand.
    SubstituteUse(ins InstrID, v Value, c Const) bool

    // RemoveBlock deletes a block together with its outgoing edges. Edges
    // into the block must be redirected first, unless their source blocks
    // are removed as well.
    RemoveBlock(bb BlockID)

    // RedirectEdge retargets the edge from -> oldTo to from -> newTo. Values
    // newTo receives along oldTo are received along the new edge instead.
    RedirectEdge(from BlockID, oldTo BlockID, newTo BlockID)

    // MergeBlocks appends succ to pred. pred must have succ as its only
    // successor and succ must have pred as its only predecessor.
    MergeBlocks(pred BlockID, succ BlockID)
}

// PhiProgram is implemented by programs with phi instructions, which read
// each of their operands along one incoming edge only.
type PhiProgram interface {
    Program

    // PhiUses returns the values ins reads along the edge from pred, or false
    // if ins is not a phi instruction.
    PhiUses(ins InstrID, pred BlockID) ([]Value, bool)
}

// InstrFormatter is implemented by programs that can print instructions.
type InstrFormatter interface {
    FormatInstr(ins InstrID) string
}

func formatInstr(p Program, ins InstrID) string {
    if f, ok := p.(InstrFormatter); ok {
        return f.FormatInstr(ins)
    } else {
        return fmt.Sprintf("ins_%d", ins)
    }
}

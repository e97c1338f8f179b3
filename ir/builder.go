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
    `github.com/vitlang/vitc/ssa`
)

// Incoming is one phi operand.
type Incoming struct {
    From ssa.BlockID
    Arg  Operand
}

// Builder appends instructions to the current block of a function.
type Builder struct {
    fn *Func
    bb ssa.BlockID
}

// NewBuilder creates a builder positioned at the entry block.
func NewBuilder(fn *Func) *Builder {
    return &Builder { fn: fn, bb: fn.entry }
}

func (self *Builder) Func() *Func {
    return self.fn
}

// Current returns the block instructions are appended to.
func (self *Builder) Current() ssa.BlockID {
    return self.bb
}

// At moves the builder to another block.
func (self *Builder) At(bb ssa.BlockID) *Builder {
    self.fn.Block(bb)
    self.bb = bb
    return self
}

// NewBlock allocates a new block without moving the builder.
func (self *Builder) NewBlock() ssa.BlockID {
    return self.fn.NewBlock()
}

func (self *Builder) emit(op Op, args ...Operand) *Instr {
    def := ssa.NoValue
    if self.fn.terminator(self.bb) != nil {
        panic("ir: appending to the terminated block " + self.bb.String())
    }

    /* allocate the result value */
    if op.Defines() {
        def = self.fn.newValue()
    }

    /* create the instruction */
    p := self.fn.alloc(op, def)
    p.Args = args
    self.fn.append(self.bb, p)
    return p
}

func (self *Builder) Const(c ssa.Const) ssa.Value {
    p := self.emit(OpConst)
    p.Const = c
    return p.Def
}

func (self *Builder) Int(v int64) ssa.Value {
    return self.Const(ssa.IntConst(v))
}

func (self *Builder) Float(v float64) ssa.Value {
    return self.Const(ssa.FloatConst(v))
}

func (self *Builder) Str(v string) ssa.Value {
    return self.Const(ssa.StringConst(v))
}

func (self *Builder) Copy(a Operand) ssa.Value {
    return self.emit(OpCopy, a).Def
}

// Unary emits OpNeg or OpNot.
func (self *Builder) Unary(op Op, a Operand) ssa.Value {
    if op != OpNeg && op != OpNot {
        panic("ir: not a unary operator: " + op.String())
    }
    return self.emit(op, a).Def
}

// Binary emits an arithmetic, bitwise or comparison instruction.
func (self *Builder) Binary(op Op, x Operand, y Operand) ssa.Value {
    if !op.IsBinary() {
        panic("ir: not a binary operator: " + op.String())
    }
    return self.emit(op, x, y).Def
}

// Phi emits a phi node. Phi nodes must come before any other instruction of
// the block, more operands can be added later with AddIncoming.
func (self *Builder) Phi(in ...Incoming) ssa.Value {
    for _, id := range self.fn.Block(self.bb).Instrs {
        if self.fn.instrs[id].Op != OpPhi {
            panic("ir: phi after a non-phi instruction in " + self.bb.String())
        }
    }

    /* create the phi node */
    p := self.emit(OpPhi)
    for _, v := range in {
        p.From = append(p.From, v.From)
        p.Args = append(p.Args, v.Arg)
    }

    /* all done */
    return p.Def
}

// AddIncoming appends an operand to the phi node that defines v.
func (self *Builder) AddIncoming(v ssa.Value, from ssa.BlockID, arg Operand) {
    for _, p := range self.fn.instrs {
        if p.Op == OpPhi && p.Def == v && p.attached() {
            p.From = append(p.From, from)
            p.Args = append(p.Args, arg)
            return
        }
    }
    panic("ir: " + v.String() + " is not defined by a phi node")
}

// Call emits a call, which always defines a value even if the callee
// returns nothing.
func (self *Builder) Call(name string, args ...Operand) ssa.Value {
    p := self.emit(OpCall, args...)
    p.Name = name
    return p.Def
}

func (self *Builder) Print(a Operand) {
    self.emit(OpPrint, a)
}

func (self *Builder) Jump(to ssa.BlockID) {
    self.terminate(self.emit(OpJump), to)
}

func (self *Builder) Branch(cond Operand, ifTrue ssa.BlockID, ifFalse ssa.BlockID) {
    self.terminate(self.emit(OpBranch, cond), ifTrue, ifFalse)
}

// Return emits a return, with or without a value.
func (self *Builder) Return(a ...Operand) {
    if len(a) > 1 {
        panic("ir: returning more than one value")
    }
    self.emit(OpReturn, a...)
}

func (self *Builder) terminate(p *Instr, targets ...ssa.BlockID) {
    p.Targets = targets
    for _, bb := range targets {
        self.fn.Block(bb).Preds = append(self.fn.Block(bb).Preds, self.bb)
    }
}

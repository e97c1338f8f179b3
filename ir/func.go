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
    `strconv`

    `github.com/vitlang/vitc/ssa`
)

// Operand is an instruction input: either a value or an immediate constant.
type Operand struct {
    Value ssa.Value
    Imm   ssa.Const
}

// V makes a value operand.
func V(v ssa.Value) Operand {
    return Operand { Value: v }
}

// K makes an immediate operand.
func K(c ssa.Const) Operand {
    return Operand { Value: ssa.NoValue, Imm: c }
}

// I makes an immediate integer operand.
func I(v int64) Operand {
    return K(ssa.IntConst(v))
}

func (self Operand) IsImm() bool {
    return self.Value == ssa.NoValue
}

func (self Operand) String() string {
    if !self.IsImm() {
        return self.Value.String()
    } else {
        return constString(self.Imm)
    }
}

// Instr is an instruction in the arena of a Func.
//
// For OpPhi, From[i] is the predecessor Args[i] flows in from. For OpJump
// and OpBranch, Targets holds the successor blocks, the true target first.
type Instr struct {
    ID      ssa.InstrID
    Op      Op
    Def     ssa.Value
    Args    []Operand
    From    []ssa.BlockID
    Targets []ssa.BlockID
    Const   ssa.Const
    Name    string
    Block   ssa.BlockID
}

func (self *Instr) attached() bool {
    return self.Block != ssa.NoBlock
}

// Block is a basic block in the arena of a Func.
type Block struct {
    ID     ssa.BlockID
    Instrs []ssa.InstrID
    Preds  []ssa.BlockID
    Dead   bool
}

// Func is a function in SSA form. Blocks, instructions and values are
// allocated from arenas and identified by their index, removed blocks and
// detached instructions keep their slot.
type Func struct {
    Name   string
    Params int
    entry  ssa.BlockID
    blocks []*Block
    instrs []*Instr
    values int
}

// NewFunc creates a function with an entry block holding one OpParam
// instruction per parameter, so that parameter i is value i.
func NewFunc(name string, params int) *Func {
    fn := &Func { Name: name, Params: params }
    fn.entry = fn.NewBlock()

    /* define all the parameters */
    for i := 0; i < params; i++ {
        p := fn.alloc(OpParam, fn.newValue())
        p.Const = ssa.IntConst(int64(i))
        fn.append(fn.entry, p)
    }

    /* all done */
    return fn
}

// NewBlock allocates an empty block.
func (self *Func) NewBlock() ssa.BlockID {
    id := ssa.BlockID(len(self.blocks))
    self.blocks = append(self.blocks, &Block { ID: id })
    return id
}

// Block returns a block by ID, it panics if the block does not exist.
func (self *Func) Block(bb ssa.BlockID) *Block {
    if bb < 0 || int(bb) >= len(self.blocks) || self.blocks[bb].Dead {
        panic("ir: no such block: " + bb.String())
    } else {
        return self.blocks[bb]
    }
}

// Instr returns an instruction by ID, it panics if the instruction does not
// exist.
func (self *Func) Instr(ins ssa.InstrID) *Instr {
    if ins < 0 || int(ins) >= len(self.instrs) {
        panic("ir: no such instruction: " + strconv.Itoa(int(ins)))
    } else {
        return self.instrs[ins]
    }
}

// NumValues returns the number of values ever allocated.
func (self *Func) NumValues() int {
    return self.values
}

func (self *Func) exists(bb ssa.BlockID) bool {
    return bb >= 0 && int(bb) < len(self.blocks) && !self.blocks[bb].Dead
}

func (self *Func) newValue() ssa.Value {
    self.values++
    return ssa.Value(self.values - 1)
}

func (self *Func) alloc(op Op, def ssa.Value) *Instr {
    p := &Instr {
        ID    : ssa.InstrID(len(self.instrs)),
        Op    : op,
        Def   : def,
        Block : ssa.NoBlock,
    }
    self.instrs = append(self.instrs, p)
    return p
}

func (self *Func) append(bb ssa.BlockID, p *Instr) {
    b := self.Block(bb)
    p.Block = bb
    b.Instrs = append(b.Instrs, p.ID)
}

func (self *Func) terminator(bb ssa.BlockID) *Instr {
    if ins := self.Block(bb).Instrs; len(ins) == 0 {
        return nil
    } else if p := self.instrs[ins[len(ins) - 1]]; !p.Op.IsTerminator() {
        return nil
    } else {
        return p
    }
}

func (self *Func) phis(bb ssa.BlockID) (ret []*Instr) {
    for _, id := range self.Block(bb).Instrs {
        if p := self.instrs[id]; p.Op == OpPhi {
            ret = append(ret, p)
        }
    }
    return
}

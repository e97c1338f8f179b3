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
    `encoding/binary`
    `fmt`

    `github.com/vitlang/vitc/ssa`
    `github.com/vitlang/vitc/vitbc`
)

const (
    _MaxRegs = 1 << 16
    _MaxArgs = 255
)

var _OpCodes = [_OpCount]vitbc.OpCode {
    OpCopy : vitbc.OP_mov,
    OpNeg  : vitbc.OP_neg,
    OpNot  : vitbc.OP_not,
    OpAdd  : vitbc.OP_add,
    OpSub  : vitbc.OP_sub,
    OpMul  : vitbc.OP_mul,
    OpDiv  : vitbc.OP_div,
    OpRem  : vitbc.OP_rem,
    OpAnd  : vitbc.OP_and,
    OpOr   : vitbc.OP_or,
    OpXor  : vitbc.OP_xor,
    OpShl  : vitbc.OP_shl,
    OpShr  : vitbc.OP_shr,
    OpEq   : vitbc.OP_eq,
    OpNe   : vitbc.OP_ne,
    OpLt   : vitbc.OP_lt,
    OpLe   : vitbc.OP_le,
}

// LowerError occurs when a function cannot be expressed in VITBC code.
type LowerError struct {
    Func   string
    Reason string
}

func (self LowerError) Error() string {
    return fmt.Sprintf("ir: cannot lower %s: %s", self.Func, self.Reason)
}

type _Fixup struct {
    pos   int
    label int
}

type _Lowerer struct {
    fn     *Func
    mod    *vitbc.Module
    buf    []byte
    temp   uint32
    labels []int
    blocks map[ssa.BlockID]int
    fixups []_Fixup
}

// Lower translates a verified function into a VITBC module.
//
// Value v lives in register v, so parameter i arrives in register i.
// Registers above the last value hold immediates and the temporaries of phi
// copies. Phi nodes are lowered into parallel copies at the end of each
// predecessor, going through a trampoline for edges leaving a branch.
// Unreachable blocks are not emitted.
func Lower(fn *Func) (*vitbc.Module, error) {
    if err := Verify(fn); err != nil {
        return nil, err
    }

    /* create the lowerer */
    self := &_Lowerer {
        fn     : fn,
        mod    : vitbc.NewModule(),
        temp   : uint32(fn.NumValues()),
        blocks : make(map[ssa.BlockID]int),
    }

    /* check for register usage */
    if err := self.checkRegs(); err != nil {
        return nil, err
    }

    /* assign a label to every reachable block */
    order := ssa.ReversePostOrder(fn)
    for _, bb := range order {
        self.blocks[bb] = self.newLabel()
    }

    /* emit every block */
    for _, bb := range order {
        self.bind(self.blocks[bb])
        self.mod.Names = append(self.mod.Names, fmt.Sprintf("%s@%d", bb, len(self.buf)))
        self.block(bb)
    }

    /* resolve the jump targets */
    for _, fx := range self.fixups {
        binary.LittleEndian.PutUint32(self.buf[fx.pos:], uint32(self.labels[fx.label]))
    }

    /* all done */
    self.mod.Code = self.buf
    self.mod.Names = append([]string { fn.Name }, self.mod.Names...)
    return self.mod, nil
}

func (self *_Lowerer) checkRegs() error {
    n := 2
    for _, bb := range self.fn.Blocks() {
        n = maxint(n, len(self.fn.phis(bb)))
        for _, id := range self.fn.Block(bb).Instrs {
            if p := self.fn.instrs[id]; p.Op == OpCall {
                if len(p.Args) > _MaxArgs {
                    return LowerError { self.fn.Name, fmt.Sprintf("%s passes %d arguments", p.Name, len(p.Args)) }
                }
                n = maxint(n, len(p.Args))
            }
        }
    }

    /* all the registers must fit in 16 bits */
    if int(self.temp) + n > _MaxRegs {
        return LowerError { self.fn.Name, fmt.Sprintf("needs %d registers", int(self.temp) + n) }
    } else {
        return nil
    }
}

func (self *_Lowerer) newLabel() int {
    self.labels = append(self.labels, -1)
    return len(self.labels) - 1
}

func (self *_Lowerer) bind(label int) {
    self.labels[label] = len(self.buf)
}

func (self *_Lowerer) emit(op vitbc.OpCode, args ...uint32) {
    self.buf = vitbc.AppendInstr(self.buf, op, args...)
}

// fixup records that the u32 at the given distance from the end of the code
// is the address of a label.
func (self *_Lowerer) fixup(back int, label int) {
    self.fixups = append(self.fixups, _Fixup { len(self.buf) - back, label })
}

func (self *_Lowerer) load(reg uint32, c ssa.Const) {
    switch c.Kind {
        case ssa.ConstInt    : self.emit(vitbc.OP_ldi, reg, uint32(self.mod.AddInt(c.Int)))
        case ssa.ConstFloat  : self.emit(vitbc.OP_ldf, reg, uint32(self.mod.AddFloat(c.Float)))
        case ssa.ConstString : self.emit(vitbc.OP_lds, reg, uint32(self.mod.AddString(c.Str)))
        default              : panic("ir: invalid constant: " + c.String())
    }
}

// operand returns the register holding a, loading immediates into the i-th
// temporary register.
func (self *_Lowerer) operand(a Operand, i int) uint32 {
    if !a.IsImm() {
        return uint32(a.Value)
    } else {
        self.load(self.temp + uint32(i), a.Imm)
        return self.temp + uint32(i)
    }
}

func (self *_Lowerer) block(bb ssa.BlockID) {
    for _, id := range self.fn.Block(bb).Instrs {
        p := self.fn.instrs[id]
        dst := uint32(p.Def)

        /* lower by op */
        switch op := p.Op; {
            case op == OpParam || op == OpPhi: {
                continue
            }

            /* literals and copies of immediates go straight into the destination */
            case op == OpConst: self.load(dst, p.Const)
            case op == OpCopy && p.Args[0].IsImm(): self.load(dst, p.Args[0].Imm)

            /* copies and unary operators */
            case op == OpCopy || op.IsUnary(): {
                self.emit(_OpCodes[op], dst, self.operand(p.Args[0], 0))
            }

            /* binary operators */
            case op.IsBinary(): {
                self.emit(_OpCodes[op], dst, self.operand(p.Args[0], 0), self.operand(p.Args[1], 1))
            }

            /* calls */
            case op == OpCall: {
                args := []uint32 { dst, uint32(self.mod.AddString(p.Name)) }
                for i, a := range p.Args {
                    args = append(args, self.operand(a, i))
                }
                self.emit(vitbc.OP_call, args...)
            }

            /* output and terminators */
            case op == OpPrint  : self.emit(vitbc.OP_print, self.operand(p.Args[0], 0))
            case op == OpJump   : self.jump(bb, p.Targets[0])
            case op == OpBranch : self.branch(bb, p)
            case op == OpReturn : self.ret(p)
        }
    }
}

func (self *_Lowerer) jump(from ssa.BlockID, to ssa.BlockID) {
    self.copies(from, to)
    self.emit(vitbc.OP_jmp, 0)
    self.fixup(4, self.blocks[to])
}

func (self *_Lowerer) branch(from ssa.BlockID, p *Instr) {
    var stubs [2]int
    var cond = self.operand(p.Args[0], 0)

    /* edges into blocks with phi nodes go through a trampoline */
    for i, bb := range p.Targets {
        if len(self.fn.phis(bb)) == 0 {
            stubs[i] = self.blocks[bb]
        } else {
            stubs[i] = self.newLabel()
        }
    }

    /* emit the branch */
    self.emit(vitbc.OP_br, cond, 0, 0)
    self.fixup(8, stubs[0])
    self.fixup(4, stubs[1])

    /* emit the trampolines */
    for i, bb := range p.Targets {
        if stubs[i] != self.blocks[bb] {
            self.bind(stubs[i])
            self.jump(from, bb)
        }
    }
}

func (self *_Lowerer) ret(p *Instr) {
    if len(p.Args) == 0 {
        self.emit(vitbc.OP_retv)
    } else {
        self.emit(vitbc.OP_ret, self.operand(p.Args[0], 0))
    }
}

// copies emits the phi copies of the edge from -> to. All the sources are
// read into temporaries before any destination is written, since a phi node
// may read the result of another phi node in the same block.
func (self *_Lowerer) copies(from ssa.BlockID, to ssa.BlockID) {
    phis := self.fn.phis(to)
    regs := make([]uint32, len(phis))

    /* read every incoming value */
    for i, phi := range phis {
        a := phi.Args[indexOfBlock(phi.From, from)]
        regs[i] = self.temp + uint32(i)

        /* load into the temporary */
        if a.IsImm() {
            self.load(regs[i], a.Imm)
        } else {
            self.emit(vitbc.OP_mov, regs[i], uint32(a.Value))
        }
    }

    /* write every phi node */
    for i, phi := range phis {
        self.emit(vitbc.OP_mov, uint32(phi.Def), regs[i])
    }
}

func maxint(a int, b int) int {
    if a > b {
        return a
    } else {
        return b
    }
}

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

var (
    _ ssa.PhiProgram     = (*Func)(nil)
    _ ssa.InstrFormatter = (*Func)(nil)
)

func (self *Func) Entry() ssa.BlockID {
    return self.entry
}

// Blocks returns every live block, the entry first and then by ID.
func (self *Func) Blocks() []ssa.BlockID {
    ret := make([]ssa.BlockID, 0, len(self.blocks))
    ret = append(ret, self.entry)

    /* add the rest */
    for _, b := range self.blocks {
        if !b.Dead && b.ID != self.entry {
            ret = append(ret, b.ID)
        }
    }

    /* all done */
    return ret
}

func (self *Func) Instrs(bb ssa.BlockID) []ssa.InstrID {
    return append([]ssa.InstrID(nil), self.Block(bb).Instrs...)
}

func (self *Func) Succs(bb ssa.BlockID) []ssa.BlockID {
    if t := self.terminator(bb); t == nil {
        return nil
    } else {
        return append([]ssa.BlockID(nil), t.Targets...)
    }
}

func (self *Func) Preds(bb ssa.BlockID) []ssa.BlockID {
    return append([]ssa.BlockID(nil), self.Block(bb).Preds...)
}

func (self *Func) Defs(ins ssa.InstrID) []ssa.Value {
    if p := self.Instr(ins); p.Def == ssa.NoValue {
        return nil
    } else {
        return []ssa.Value { p.Def }
    }
}

func (self *Func) Uses(ins ssa.InstrID) []ssa.Value {
    var ret []ssa.Value
    for _, a := range self.Instr(ins).Args {
        if !a.IsImm() {
            ret = append(ret, a.Value)
        }
    }
    return ret
}

func (self *Func) PhiUses(ins ssa.InstrID, pred ssa.BlockID) ([]ssa.Value, bool) {
    var ret []ssa.Value
    var p = self.Instr(ins)

    /* check for phi nodes */
    if p.Op != OpPhi {
        return nil, false
    }

    /* find the operand of the edge */
    for i, bb := range p.From {
        if bb == pred && !p.Args[i].IsImm() {
            ret = append(ret, p.Args[i].Value)
        }
    }

    /* all done */
    return ret, true
}

func (self *Func) HasSideEffects(ins ssa.InstrID) bool {
    return self.Instr(ins).Op.HasSideEffects()
}

func (self *Func) Literal(ins ssa.InstrID) (ssa.Const, bool) {
    if p := self.Instr(ins); p.Op != OpConst {
        return ssa.Const{}, false
    } else {
        return p.Const, true
    }
}

func (self *Func) NewLiteral(def ssa.Value, c ssa.Const) ssa.InstrID {
    p := self.alloc(OpConst, def)
    p.Const = c
    return p.ID
}

func (self *Func) ReplaceInstr(old ssa.InstrID, with ssa.InstrID) {
    p := self.Instr(old)
    q := self.Instr(with)

    /* check for instruction states */
    if !p.attached() {
        panic("ir: replacing a detached instruction")
    } else if q.attached() {
        panic("ir: replacing with an attached instruction")
    } else if p.Op.IsTerminator() != q.Op.IsTerminator() {
        panic("ir: terminators can only be replaced with terminators")
    }

    /* phi nodes must stay in front of the block */
    b := self.Block(p.Block)
    pos := indexOf(b.Instrs, old)

    /* replace in place, unless a phi in the middle of the phi group is being replaced with a non-phi */
    if p.Op != OpPhi || q.Op == OpPhi {
        b.Instrs[pos] = with
    } else {
        b.Instrs = append(b.Instrs[:pos], b.Instrs[pos + 1:]...)
        b.Instrs = insertAt(b.Instrs, len(self.phis(b.ID)), with)
    }

    /* update the ownership */
    q.Block = p.Block
    p.Block = ssa.NoBlock
}

func (self *Func) RemoveInstr(ins ssa.InstrID) {
    p := self.Instr(ins)
    if !p.attached() {
        panic("ir: removing a detached instruction")
    }

    /* terminators can only go with their blocks */
    if p.Op.IsTerminator() {
        panic("ir: removing the terminator of " + p.Block.String())
    }

    /* remove from the block */
    b := self.Block(p.Block)
    i := indexOf(b.Instrs, ins)
    b.Instrs = append(b.Instrs[:i], b.Instrs[i + 1:]...)
    p.Block = ssa.NoBlock
}

func (self *Func) SubstituteUse(ins ssa.InstrID, v ssa.Value, c ssa.Const) bool {
    ok := false
    p := self.Instr(ins)

    /* every operand can take an immediate */
    for i, a := range p.Args {
        if !a.IsImm() && a.Value == v {
            p.Args[i] = K(c)
            ok = true
        }
    }

    /* all done */
    return ok
}

func (self *Func) RemoveBlock(bb ssa.BlockID) {
    if bb == self.entry {
        panic("ir: removing the entry block")
    }

    /* remove the outgoing edges */
    b := self.Block(bb)
    for _, s := range dedup(self.Succs(bb)) {
        if s != bb && self.exists(s) {
            self.dropEdges(bb, s)
        }
    }

    /* detach all the instructions */
    for _, id := range b.Instrs {
        self.instrs[id].Block = ssa.NoBlock
    }

    /* mark as removed */
    b.Dead = true
    b.Preds = nil
    b.Instrs = nil
}

func (self *Func) RedirectEdge(from ssa.BlockID, oldTo ssa.BlockID, newTo ssa.BlockID) {
    n := 0
    t := self.terminator(from)

    /* check for terminator */
    if t == nil {
        panic("ir: redirecting an edge of an unterminated block " + from.String())
    }

    /* nothing to do */
    if oldTo == newTo {
        return
    }

    /* retarget the terminator */
    for i, bb := range t.Targets {
        if bb == oldTo {
            t.Targets[i] = newTo
            n++
        }
    }

    /* must have at least one edge */
    if n == 0 {
        panic("ir: no edge from " + from.String() + " to " + oldTo.String())
    }

    /* values flowing along oldTo -> newTo now flow along from -> newTo */
    already := containsBlock(self.Block(newTo).Preds, from)
    for _, phi := range self.phis(newTo) {
        if already {
            continue
        }
        if i := indexOfBlock(phi.From, oldTo); i >= 0 {
            phi.From = append(phi.From, from)
            phi.Args = append(phi.Args, phi.Args[i])
        } else {
            panic("ir: " + phi.Def.String() + " has no value for the edge from " + from.String())
        }
    }

    /* update the predecessor lists */
    self.dropEdges(from, oldTo)
    for i := 0; i < n; i++ {
        self.Block(newTo).Preds = append(self.Block(newTo).Preds, from)
    }
}

func (self *Func) MergeBlocks(pred ssa.BlockID, succ ssa.BlockID) {
    p := self.Block(pred)
    s := self.Block(succ)

    /* check for the edge */
    if pred == succ || succ == self.entry {
        panic("ir: cannot merge " + succ.String() + " into " + pred.String())
    } else if ss := self.Succs(pred); len(ss) != 1 || ss[0] != succ {
        panic("ir: " + succ.String() + " is not the only successor of " + pred.String())
    } else if len(s.Preds) != 1 || s.Preds[0] != pred {
        panic("ir: " + pred.String() + " is not the only predecessor of " + succ.String())
    }

    /* remove the jump */
    t := self.terminator(pred)
    t.Block = ssa.NoBlock
    p.Instrs = p.Instrs[:len(p.Instrs) - 1]

    /* move all the instructions, phi nodes with a single incoming value become copies */
    for _, id := range s.Instrs {
        if q := self.instrs[id]; q.Op == OpPhi {
            q.Op = OpCopy
            q.From = nil
            q.Args = q.Args[:1]
        }
        self.append(pred, self.instrs[id])
    }

    /* the successors of succ are now reached from pred */
    for _, bb := range dedup(self.Succs(pred)) {
        b := self.Block(bb)
        for i, x := range b.Preds {
            if x == succ {
                b.Preds[i] = pred
            }
        }
        for _, phi := range self.phis(bb) {
            for i, x := range phi.From {
                if x == succ {
                    phi.From[i] = pred
                }
            }
        }
    }

    /* mark as removed */
    s.Dead = true
    s.Preds = nil
    s.Instrs = nil
}

// dropEdges removes every edge from -> to from the predecessors of to and
// from the phi nodes in it.
func (self *Func) dropEdges(from ssa.BlockID, to ssa.BlockID) {
    b := self.Block(to)
    b.Preds = removeBlock(b.Preds, from)

    /* remove the phi operands */
    for _, phi := range self.phis(to) {
        for i := len(phi.From) - 1; i >= 0; i-- {
            if phi.From[i] == from {
                phi.From = append(phi.From[:i], phi.From[i + 1:]...)
                phi.Args = append(phi.Args[:i], phi.Args[i + 1:]...)
            }
        }
    }
}

func indexOf(v []ssa.InstrID, x ssa.InstrID) int {
    for i, y := range v {
        if x == y {
            return i
        }
    }
    panic("ir: instruction not found in its block")
}

func insertAt(v []ssa.InstrID, i int, x ssa.InstrID) []ssa.InstrID {
    v = append(v, ssa.NoInstr)
    copy(v[i + 1:], v[i:])
    v[i] = x
    return v
}

func indexOfBlock(v []ssa.BlockID, x ssa.BlockID) int {
    for i, y := range v {
        if x == y {
            return i
        }
    }
    return -1
}

func containsBlock(v []ssa.BlockID, x ssa.BlockID) bool {
    return indexOfBlock(v, x) >= 0
}

func removeBlock(v []ssa.BlockID, x ssa.BlockID) []ssa.BlockID {
    ret := v[:0]
    for _, y := range v {
        if y != x {
            ret = append(ret, y)
        }
    }
    return ret
}

func dedup(v []ssa.BlockID) []ssa.BlockID {
    ret := make([]ssa.BlockID, 0, len(v))
    for _, x := range v {
        if !containsBlock(ret, x) {
            ret = append(ret, x)
        }
    }
    return ret
}

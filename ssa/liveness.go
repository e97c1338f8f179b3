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
    `github.com/bits-and-blooms/bitset`
)

// Liveness holds the live-in and live-out values of every reachable block.
//
// For a PhiProgram, the operands of a phi are live out of the incoming block
// they flow in from, and not live in the block of the phi. For any other
// Program they are treated as uses in their own block, which is
// conservative at join points.
type Liveness struct {
    sol  *Solution[*bitset.BitSet]
    edge map[BlockID]*bitset.BitSet
}

// ComputeLiveness solves the backward liveness problem
//
//     out(B) = ∪ in(S) for every successor S
//     in(B)  = use(B) ∪ ((out(B) ∪ phi(B)) - def(B))
//
// where use(B) are the values read in B before any definition in B, and
// phi(B) are the values phi instructions read along the edges leaving B.
func ComputeLiveness(p Program) *Liveness {
    use := make(map[BlockID]*bitset.BitSet)
    def := make(map[BlockID]*bitset.BitSet)
    edge := make(map[BlockID]*bitset.BitSet)

    /* summarize every block */
    for _, bb := range p.Blocks() {
        u, d := newset(), newset()
        for _, ins := range p.Instrs(bb) {
            if !addPhiUses(p, bb, ins, edge) {
                for _, v := range p.Uses(ins) {
                    if !d.Test(uint(v)) {
                        u.Set(uint(v))
                    }
                }
            }
            for _, v := range p.Defs(ins) {
                d.Set(uint(v))
            }
        }
        use[bb], def[bb] = u, d
    }

    /* the transfer function never modifies the incoming fact */
    transfer := func(bb BlockID, out *bitset.BitSet) *bitset.BitSet {
        if u, ok := use[bb]; !ok {
            return out.Clone()
        } else if e, ok := edge[bb]; !ok {
            return setunion(out.Difference(def[bb]), u)
        } else {
            return setunion(out.Union(e).Difference(def[bb]), u)
        }
    }

    /* solve the problem */
    return &Liveness {
        edge: edge,
        sol: Solve(p, &Problem[*bitset.BitSet] {
            Direction : Backward,
            Bottom    : newset,
            Join      : setunion,
            Transfer  : transfer,
            Equal     : setequal,
        }),
    }
}

// addPhiUses records the operands of a phi instruction as uses at the end of
// its incoming blocks, it returns false if ins is not a phi.
func addPhiUses(p Program, bb BlockID, ins InstrID, edge map[BlockID]*bitset.BitSet) bool {
    pp, ok := p.(PhiProgram)
    if !ok {
        return false
    }

    /* check for phi instruction */
    preds := dedup(p.Preds(bb))
    if _, ok = pp.PhiUses(ins, NoBlock); !ok {
        return false
    }

    /* add the operands to each predecessor */
    for _, pred := range preds {
        vals, _ := pp.PhiUses(ins, pred)
        for _, v := range vals {
            if edge[pred] == nil {
                edge[pred] = newset()
            }
            edge[pred].Set(uint(v))
        }
    }

    /* all done */
    return true
}

// LiveIn returns the values live at the start of bb, in ascending order.
func (self *Liveness) LiveIn(bb BlockID) []Value {
    return setvalues(self.sol.In(bb))
}

// LiveOut returns the values live at the end of bb, in ascending order.
func (self *Liveness) LiveOut(bb BlockID) []Value {
    return setvalues(self.out(bb))
}

func (self *Liveness) out(bb BlockID) *bitset.BitSet {
    if e, ok := self.edge[bb]; !ok {
        return self.sol.Out(bb)
    } else {
        return self.sol.Out(bb).Union(e)
    }
}

func (self *Liveness) IsLiveIn(bb BlockID, v Value) bool {
    return v >= 0 && self.sol.In(bb).Test(uint(v))
}

func (self *Liveness) IsLiveOut(bb BlockID, v Value) bool {
    return v >= 0 && self.out(bb).Test(uint(v))
}

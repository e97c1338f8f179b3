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

// ReachingDefs holds, for every reachable block, the defining instructions
// that may reach its start and its end.
type ReachingDefs struct {
    sol *Solution[*bitset.BitSet]
}

// ComputeReachingDefs solves the forward reaching definitions problem
//
//     in(B)  = ∪ out(P) for every predecessor P
//     out(B) = gen(B) ∪ (in(B) - kill(B))
func ComputeReachingDefs(p Program) *ReachingDefs {
    gen := make(map[BlockID]*bitset.BitSet)
    kill := make(map[BlockID]*bitset.BitSet)
    defs := make(map[Value][]InstrID)

    /* find every definition of every value */
    for _, bb := range p.Blocks() {
        for _, ins := range p.Instrs(bb) {
            for _, v := range p.Defs(ins) {
                defs[v] = append(defs[v], ins)
            }
        }
    }

    /* the last definition of a value in a block kills all the others */
    for _, bb := range p.Blocks() {
        g, k := newset(), newset()
        for _, ins := range p.Instrs(bb) {
            for _, v := range p.Defs(ins) {
                for _, d := range defs[v] {
                    g.Clear(uint(d))
                    k.Set(uint(d))
                }
                g.Set(uint(ins))
                k.Clear(uint(ins))
            }
        }
        gen[bb], kill[bb] = g, k
    }

    /* the transfer function never modifies the incoming fact */
    transfer := func(bb BlockID, in *bitset.BitSet) *bitset.BitSet {
        if g, ok := gen[bb]; !ok {
            return in.Clone()
        } else {
            return setunion(in.Difference(kill[bb]), g)
        }
    }

    /* solve the problem */
    return &ReachingDefs {
        sol: Solve(p, &Problem[*bitset.BitSet] {
            Direction : Forward,
            Bottom    : newset,
            Join      : setunion,
            Transfer  : transfer,
            Equal     : setequal,
        }),
    }
}

// ReachIn returns the definitions reaching the start of bb.
func (self *ReachingDefs) ReachIn(bb BlockID) []InstrID {
    return setinstrs(self.sol.In(bb))
}

// ReachOut returns the definitions reaching the end of bb.
func (self *ReachingDefs) ReachOut(bb BlockID) []InstrID {
    return setinstrs(self.sol.Out(bb))
}

// Reaches reports whether the definition ins may reach the start of bb.
func (self *ReachingDefs) Reaches(ins InstrID, bb BlockID) bool {
    return ins >= 0 && self.sol.In(bb).Test(uint(ins))
}

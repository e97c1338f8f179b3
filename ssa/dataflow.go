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
    `github.com/oleiade/lane`
)

type Direction uint8

const (
    Forward Direction = iota
    Backward
)

func (self Direction) String() string {
    switch self {
        case Forward  : return "forward"
        case Backward : return "backward"
        default       : return "???"
    }
}

// Problem describes a monotone dataflow problem over facts of type F.
//
// For a forward problem the "in" fact of a block is the join of the "out"
// facts of its predecessors (Bottom for the entry block), and its "out" fact
// is Transfer applied to its "in" fact. Backward problems swap the roles.
//
// Join may modify and return its first argument but never its second one,
// Transfer must not modify its argument.
type Problem[F any] struct {
    Direction Direction
    Bottom    func() F
    Join      func(a F, b F) F
    Transfer  func(bb BlockID, in F) F
    Equal     func(a F, b F) bool
}

// Solution holds the fixed point of a Problem for every reachable block.
type Solution[F any] struct {
    in     map[BlockID]F
    out    map[BlockID]F
    bottom func() F
    Visits int
}

// In returns the fact at the start of bb.
func (self *Solution[F]) In(bb BlockID) F {
    if v, ok := self.in[bb]; ok {
        return v
    } else {
        return self.bottom()
    }
}

// Out returns the fact at the end of bb.
func (self *Solution[F]) Out(bb BlockID) F {
    if v, ok := self.out[bb]; ok {
        return v
    } else {
        return self.bottom()
    }
}

// Solve iterates prob over the blocks of p reachable from the entry block
// until no fact changes.
func Solve[F any](p Program, prob *Problem[F]) *Solution[F] {
    var order []BlockID
    var edges func(BlockID) []BlockID
    var users func(BlockID) []BlockID

    /* choose the iteration order and the edge directions */
    if prob.Direction == Forward {
        order = ReversePostOrder(p)
        edges, users = p.Preds, p.Succs
    } else {
        order = PostOrder(p)
        edges, users = p.Succs, p.Preds
    }

    /* the solution, "src" is the side fed by the neighbours, "dst" is the transfer result */
    ret := &Solution[F] {
        in     : make(map[BlockID]F, len(order)),
        out    : make(map[BlockID]F, len(order)),
        bottom : prob.Bottom,
    }

    /* select the sides */
    src, dst := ret.in, ret.out
    if prob.Direction == Backward {
        src, dst = ret.out, ret.in
    }

    /* initialize every transfer result to bottom */
    live := make(map[BlockID]bool, len(order))
    for _, bb := range order {
        live[bb] = true
        dst[bb] = prob.Bottom()
    }

    /* seed the worklist in iteration order */
    wl := lane.NewQueue()
    inq := make(map[BlockID]bool, len(order))
    for _, bb := range order {
        inq[bb] = true
        wl.Enqueue(bb)
    }

    /* iterate until the worklist is empty */
    for !wl.Empty() {
        bb := wl.Dequeue().(BlockID)
        fv := prob.Bottom()
        inq[bb] = false
        ret.Visits++

        /* join the facts flowing in from the neighbours */
        for _, e := range edges(bb) {
            if live[e] {
                fv = prob.Join(fv, dst[e])
            }
        }

        /* apply the transfer function */
        src[bb] = fv
        nv := prob.Transfer(bb, fv)

        /* nothing changed */
        if prob.Equal(nv, dst[bb]) {
            continue
        }

        /* update the fact and revisit every user */
        dst[bb] = nv
        for _, u := range users(bb) {
            if live[u] && !inq[u] {
                inq[u] = true
                wl.Enqueue(u)
            }
        }
    }

    /* all done */
    return ret
}

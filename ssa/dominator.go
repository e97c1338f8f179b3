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

/** This is an implementation of the Lengauer-Tarjan algorithm described in
 *  https://doi.org/10.1145%2F357062.357071
 */

package ssa

import (
    `sort`
)

type _LtNode struct {
    semi     int
    node     BlockID
    dom      *_LtNode
    label    *_LtNode
    parent   *_LtNode
    ancestor *_LtNode
    pred     []*_LtNode
    bucket   map[*_LtNode]struct{}
}

type _LengauerTarjan struct {
    prog   Program
    nodes  []*_LtNode
    vertex map[BlockID]int
}

func newLengauerTarjan(p Program) *_LengauerTarjan {
    return &_LengauerTarjan {
        prog   : p,
        vertex : make(map[BlockID]int),
    }
}

func (self *_LengauerTarjan) dfs(bb BlockID) {
    i := len(self.nodes)
    self.vertex[bb] = i

    /* create a new node */
    p := &_LtNode {
        semi   : i,
        node   : bb,
        bucket : make(map[*_LtNode]struct{}),
    }

    /* add to node list */
    p.label = p
    self.nodes = append(self.nodes, p)

    /* traverse the successors */
    for _, w := range self.prog.Succs(bb) {
        idx, ok := self.vertex[w]

        /* not visited yet */
        if !ok {
            self.dfs(w)
            idx = self.vertex[w]
            self.nodes[idx].parent = p
        }

        /* add predecessors */
        q := self.nodes[idx]
        q.pred = append(q.pred, p)
    }
}

func (self *_LengauerTarjan) eval(p *_LtNode) *_LtNode {
    if p.ancestor == nil {
        return p
    } else {
        self.compress(p)
        return p.label
    }
}

func (self *_LengauerTarjan) link(p *_LtNode, q *_LtNode) {
    q.ancestor = p
}

func (self *_LengauerTarjan) compress(p *_LtNode) {
    if p.ancestor.ancestor != nil {
        self.compress(p.ancestor)
        if p.label.semi > p.ancestor.label.semi { p.label = p.ancestor.label }
        p.ancestor = p.ancestor.ancestor
    }
}

// DominatorTree maps every block reachable from Root to its immediate
// dominator and back.
type DominatorTree struct {
    Root        BlockID
    DominatedBy map[BlockID]BlockID
    DominatorOf map[BlockID][]BlockID
    enter       map[BlockID]int
    leave       map[BlockID]int
}

// BuildDominatorTree computes the dominator tree of the blocks reachable
// from the entry block of p.
func BuildDominatorTree(p Program) *DominatorTree {
    root := p.Entry()
    domby := make(map[BlockID]BlockID)
    domof := make(map[BlockID][]BlockID)

    /* Step 1: Carry out a depth-first search of the problem graph. Number the vertices
     * from 1 to n as they are reached during the search. Initialize the variables used
     * in succeeding steps. */
    lt := newLengauerTarjan(p)
    lt.dfs(root)

    /* perform Step 2 and Step 3 simultaneously */
    for i := len(lt.nodes) - 1; i > 0; i-- {
        p := lt.nodes[i]
        q := (*_LtNode)(nil)

        /* Step 2: Compute the semidominators of all vertices by applying Theorem 4.
         * Carry out the computation vertex by vertex in decreasing order by number. */
        for _, v := range p.pred {
            q = lt.eval(v)
            p.semi = minint(p.semi, q.semi)
        }

        /* link the ancestor */
        lt.link(p.parent, p)
        lt.nodes[p.semi].bucket[p] = struct{}{}

        /* Step 3: Implicitly define the immediate dominator of each vertex by applying Corollary 1 */
        for v := range p.parent.bucket {
            if q = lt.eval(v); q.semi < v.semi {
                v.dom = q
            } else {
                v.dom = p.parent
            }
        }

        /* clear the bucket */
        for v := range p.parent.bucket {
            delete(p.parent.bucket, v)
        }
    }

    /* Step 4: Explicitly define the immediate dominator of each vertex, carrying out the
     * computation vertex by vertex in increasing order by number. */
    for _, p := range lt.nodes[1:] {
        if p.dom.node != lt.nodes[p.semi].node {
            p.dom = p.dom.dom
        }
    }

    /* map the dominator relations, children are kept in DFS order */
    for _, p := range lt.nodes[1:] {
        domby[p.node] = p.dom.node
        domof[p.dom.node] = append(domof[p.dom.node], p.node)
    }

    /* construct the dominator tree */
    ret := &DominatorTree {
        Root        : root,
        DominatorOf : domof,
        DominatedBy : domby,
        enter       : make(map[BlockID]int, len(lt.nodes)),
        leave       : make(map[BlockID]int, len(lt.nodes)),
    }

    /* number the tree for constant time dominance queries */
    ret.number(root, 0)
    return ret
}

func (self *DominatorTree) number(bb BlockID, i int) int {
    self.enter[bb] = i
    i++

    /* number all the children */
    for _, c := range self.DominatorOf[bb] {
        i = self.number(c, i)
    }

    /* all done */
    self.leave[bb] = i
    return i
}

// Idom returns the immediate dominator of bb. The root and unreachable
// blocks have none.
func (self *DominatorTree) Idom(bb BlockID) (BlockID, bool) {
    if d, ok := self.DominatedBy[bb]; ok {
        return d, true
    } else {
        return NoBlock, false
    }
}

// Children returns the blocks bb immediately dominates.
func (self *DominatorTree) Children(bb BlockID) []BlockID {
    return self.DominatorOf[bb]
}

// Contains reports whether bb is reachable from the root.
func (self *DominatorTree) Contains(bb BlockID) bool {
    _, ok := self.enter[bb]
    return ok
}

// Dominates reports whether every path from the root to b passes through a.
// Every block dominates itself.
func (self *DominatorTree) Dominates(a BlockID, b BlockID) bool {
    if !self.Contains(a) || !self.Contains(b) {
        return false
    } else {
        return self.enter[a] <= self.enter[b] && self.leave[b] <= self.leave[a]
    }
}

// Frontier computes the dominance frontier of every reachable block.
func (self *DominatorTree) Frontier(p Program) map[BlockID][]BlockID {
    ret := make(map[BlockID][]BlockID)
    for bb := range self.enter {
        var preds []BlockID
        for _, q := range dedup(p.Preds(bb)) {
            if self.Contains(q) {
                preds = append(preds, q)
            }
        }

        /* only join points have frontiers */
        if len(preds) < 2 {
            continue
        }

        /* walk up from each predecessor until reaching the idom */
        idom, ok := self.DominatedBy[bb]
        if !ok {
            idom = NoBlock
        }

        /* add bb to the frontier of every block on the way */
        for _, q := range preds {
            for r := q; r != idom; r = self.DominatedBy[r] {
                if !containsBlock(ret[r], bb) {
                    ret[r] = append(ret[r], bb)
                }
                if r == self.Root {
                    break
                }
            }
        }
    }

    /* keep the result deterministic */
    for _, v := range ret {
        sort.Slice(v, func(i int, j int) bool { return v[i] < v[j] })
    }
    return ret
}

func minint(a int, b int) int {
    if a < b {
        return a
    } else {
        return b
    }
}

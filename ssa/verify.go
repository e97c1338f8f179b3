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

    `github.com/hashicorp/go-multierror`
)

// CFGError occurs when the control-flow graph of a Program is inconsistent.
type CFGError struct {
    Block  BlockID
    Reason string
}

func (self CFGError) Error() string {
    return fmt.Sprintf("inconsistent CFG at %s: %s", self.Block, self.Reason)
}

func ecfg(bb BlockID, format string, args ...interface{}) CFGError {
    return CFGError {
        Block  : bb,
        Reason : fmt.Sprintf(format, args...),
    }
}

type _Edge struct {
    from BlockID
    to   BlockID
}

// Verify checks that the entry block exists, that every edge ends at an
// existing block, and that successor and predecessor lists mirror each other
// with the same multiplicity.
func Verify(p Program) error {
    var ret *multierror.Error
    var bbs = p.Blocks()

    /* collect all the blocks */
    blocks := make(map[BlockID]bool, len(bbs))
    for _, bb := range bbs {
        if blocks[bb] {
            ret = multierror.Append(ret, ecfg(bb, "block is listed more than once"))
        }
        blocks[bb] = true
    }

    /* must have an entry */
    if !blocks[p.Entry()] {
        ret = multierror.Append(ret, ecfg(p.Entry(), "entry block does not exist"))
    }

    /* count every edge from both sides */
    succ := make(map[_Edge]int)
    pred := make(map[_Edge]int)

    /* check every block */
    for _, bb := range bbs {
        for _, s := range p.Succs(bb) {
            if succ[_Edge { bb, s }]++; !blocks[s] {
                ret = multierror.Append(ret, ecfg(bb, "successor %s does not exist", s))
            }
        }
        for _, q := range p.Preds(bb) {
            if pred[_Edge { q, bb }]++; !blocks[q] {
                ret = multierror.Append(ret, ecfg(bb, "predecessor %s does not exist", q))
            }
        }
    }

    /* every successor edge must be mirrored */
    for _, bb := range bbs {
        for _, s := range dedup(p.Succs(bb)) {
            if e := (_Edge { bb, s }); blocks[s] && succ[e] != pred[e] {
                ret = multierror.Append(ret, ecfg(bb, "edge to %s appears %d time(s) as successor but %d time(s) as predecessor", s, succ[e], pred[e]))
            }
        }
    }

    /* and every predecessor edge */
    for _, bb := range bbs {
        for _, q := range dedup(p.Preds(bb)) {
            if e := (_Edge { q, bb }); blocks[q] && succ[e] == 0 {
                ret = multierror.Append(ret, ecfg(bb, "predecessor %s does not list it as a successor", q))
            }
        }
    }

    /* all done */
    return ret.ErrorOrNil()
}

func dedup(v []BlockID) []BlockID {
    ret := make([]BlockID, 0, len(v))
    for _, x := range v {
        if !containsBlock(ret, x) {
            ret = append(ret, x)
        }
    }
    return ret
}

func containsBlock(v []BlockID, bb BlockID) bool {
    for _, x := range v {
        if x == bb {
            return true
        }
    }
    return false
}

func countBlock(v []BlockID, bb BlockID) int {
    n := 0
    for _, x := range v {
        if x == bb {
            n++
        }
    }
    return n
}

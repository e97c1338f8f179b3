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

// SimplifyCfg removes unreachable blocks, merges a block into its only
// successor when it is also that successor's only predecessor, and bypasses
// empty blocks that only jump somewhere else.
type SimplifyCfg struct {
    MaxRounds int // zero means until nothing changes
}

func (SimplifyCfg) Name() string {
    return "simplify-cfg"
}

func (self SimplifyCfg) Apply(ctx *PassContext) (inv Invalidation) {
    for i := 0; self.MaxRounds <= 0 || i < self.MaxRounds; i++ {
        n := self.unreachable(ctx)
        n += self.merge(ctx)
        n += self.bypass(ctx)

        /* no more modifications */
        if n == 0 {
            break
        }

        /* removing blocks also removes their definitions */
        inv.CFGChanged = true
        inv.DefsChanged = true
    }
    return
}

func (SimplifyCfg) unreachable(ctx *PassContext) int {
    n := 0
    p := ctx.Prog
    r := Reachable(p)

    /* remove every block that cannot be reached from the entry */
    for _, bb := range p.Blocks() {
        if ctx.Stats.Visited++; !r[bb] {
            p.RemoveBlock(bb)
            n++
        }
    }

    /* update the statistics */
    ctx.Stats.Removed += n
    return n
}

func (SimplifyCfg) merge(ctx *PassContext) int {
    n := 0
    p := ctx.Prog
    entry := p.Entry()
    gone := make(map[BlockID]bool)

    /* scan in reverse post-order, so chains are merged into their head */
    for _, bb := range ReversePostOrder(p) {
        if gone[bb] {
            continue
        }

        /* keep merging until bb has no mergeable successor */
        for {
            succ := p.Succs(bb)
            if len(succ) != 1 {
                break
            }

            /* the successor must be a plain fall-through target */
            next := succ[0]
            pred := p.Preds(next)

            /* never merge loops into themselves, and never remove the entry */
            if next == bb || next == entry || len(pred) != 1 || pred[0] != bb {
                break
            }

            /* merge the blocks */
            p.MergeBlocks(bb, next)
            gone[next] = true
            n++
        }
    }

    /* update the statistics */
    ctx.Stats.Modified += n
    ctx.Stats.Removed += n
    return n
}

func (SimplifyCfg) bypass(ctx *PassContext) int {
    n := 0
    p := ctx.Prog
    entry := p.Entry()

    /* check every block */
    for _, bb := range p.Blocks() {
        if bb == entry || !isEmptyBlock(p, bb) {
            continue
        }

        /* must have exactly one way in and one way out */
        succ := p.Succs(bb)
        pred := p.Preds(bb)

        /* check for single successor and predecessor */
        if len(succ) != 1 || len(pred) != 1 || succ[0] == bb || pred[0] == bb {
            continue
        }

        /* the predecessor must not already branch to the successor */
        if containsBlock(p.Preds(succ[0]), pred[0]) {
            continue
        }

        /* redirect the edge and remove the block */
        p.RedirectEdge(pred[0], bb, succ[0])
        p.RemoveBlock(bb)
        n++
    }

    /* update the statistics */
    ctx.Stats.Modified += n
    ctx.Stats.Removed += n
    return n
}

func isEmptyBlock(p Program, bb BlockID) bool {
    if ins := p.Instrs(bb); len(ins) != 1 {
        return false
    } else {
        return len(p.Defs(ins[0])) == 0 && len(p.Uses(ins[0])) == 0
    }
}

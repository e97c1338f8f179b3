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

// DeadCodeElim removes instructions without side effects whose results are
// never used, until no such instruction is left.
type DeadCodeElim struct{}

func (DeadCodeElim) Name() string {
    return "dce"
}

func (DeadCodeElim) Apply(ctx *PassContext) Invalidation {
    nr := 0
    prog := ctx.Prog

    /* removing an instruction may make its operands dead */
    for {
        n := 0
        uses := countUses(prog)

        /* scan every instruction */
        for _, bb := range prog.Blocks() {
            for _, p := range prog.Instrs(bb) {
                ctx.Stats.Visited++

                /* keep anything with side effects or a live result */
                if prog.HasSideEffects(p) || !unused(prog.Defs(p), uses) {
                    continue
                }

                /* the operands lose one reader */
                for _, v := range prog.Uses(p) {
                    uses[v]--
                }

                /* remove the instruction */
                prog.RemoveInstr(p)
                n++
            }
        }

        /* no more modifications */
        if n == 0 {
            break
        }

        /* try again */
        nr += n
    }

    /* update the statistics */
    ctx.Stats.Removed += nr
    return Invalidation { DefsChanged: nr != 0 }
}

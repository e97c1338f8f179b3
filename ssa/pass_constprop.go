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

// ConstProp propagates constants through the def-use chains.
//
// Side-effect free instructions whose operands are all constants are
// replaced with literals, literal operands are substituted into the
// instructions reading them, and literals nobody reads anymore are removed.
// Instructions with side effects are never folded or removed.
type ConstProp struct {
    // FoldThroughCalls allows substituting literals into the operands of
    // non-terminator instructions with side effects, such as calls.
    FoldThroughCalls bool
}

func (ConstProp) Name() string {
    return "constprop"
}

func (self ConstProp) Apply(ctx *PassContext) Invalidation {
    consts, folded := self.fold(ctx)
    subst := self.substitute(ctx, consts)
    dead := self.sweep(ctx)
    return Invalidation { DefsChanged: folded || subst || dead }
}

func (ConstProp) fold(ctx *PassContext) (map[Value]Const, bool) {
    done := false
    folded := false
    prog := ctx.Prog
    consts := make(map[Value]Const)

    /* const lookup */
    lookup := func(v Value) (Const, bool) {
        c, ok := consts[v]
        return c, ok
    }

    /* evaluate const expression until no modifications were made */
    for !done {
        done = true
        for _, bb := range ReversePostOrder(prog) {
            for _, ins := range prog.Instrs(bb) {
                ctx.Stats.Visited++
                defs := prog.Defs(ins)

                /* literals seed the constant map */
                if c, ok := prog.Literal(ins); ok {
                    for _, d := range defs {
                        if _, ok = consts[d]; !ok {
                            consts[d] = c
                            done = false
                        }
                    }
                    continue
                }

                /* only side-effect free, single value instructions can be folded */
                if len(defs) != 1 || prog.HasSideEffects(ins) {
                    continue
                }

                /* try to evaluate it */
                c, ok := prog.Fold(ins, lookup)
                if !ok {
                    continue
                }

                /* replace it with a literal */
                prog.ReplaceInstr(ins, prog.NewLiteral(defs[0], c))
                consts[defs[0]] = c
                ctx.Stats.Modified++
                folded = true
                done = false
            }
        }
    }

    /* all done */
    return consts, folded
}

func (self ConstProp) substitute(ctx *PassContext, consts map[Value]Const) bool {
    ret := false
    prog := ctx.Prog

    /* substitute every constant operand */
    for _, bb := range prog.Blocks() {
        ins := prog.Instrs(bb)
        for i, p := range ins {
            if _, ok := prog.Literal(p); ok {
                continue
            }

            /* terminators always take literals, other impure instructions only if allowed */
            if i != len(ins) - 1 && prog.HasSideEffects(p) && !self.FoldThroughCalls {
                continue
            }

            /* replace the operands */
            for _, v := range dedupValues(prog.Uses(p)) {
                if c, ok := consts[v]; ok && prog.SubstituteUse(p, v, c) {
                    ctx.Stats.Modified++
                    ret = true
                }
            }
        }
    }

    /* all done */
    return ret
}

func (ConstProp) sweep(ctx *PassContext) bool {
    ret := false
    prog := ctx.Prog
    uses := countUses(prog)

    /* remove literals that are no longer read */
    for _, bb := range prog.Blocks() {
        for _, p := range prog.Instrs(bb) {
            if _, ok := prog.Literal(p); ok && !prog.HasSideEffects(p) && unused(prog.Defs(p), uses) {
                prog.RemoveInstr(p)
                ctx.Stats.Removed++
                ret = true
            }
        }
    }

    /* all done */
    return ret
}

func countUses(p Program) map[Value]int {
    ret := make(map[Value]int)
    for _, bb := range p.Blocks() {
        for _, ins := range p.Instrs(bb) {
            for _, v := range p.Uses(ins) {
                ret[v]++
            }
        }
    }
    return ret
}

func unused(defs []Value, uses map[Value]int) bool {
    for _, v := range defs {
        if uses[v] != 0 {
            return false
        }
    }
    return true
}

func dedupValues(v []Value) []Value {
    ret := make([]Value, 0, len(v))
    for _, x := range v {
        dup := false
        for _, y := range ret {
            if x == y {
                dup = true
                break
            }
        }
        if !dup {
            ret = append(ret, x)
        }
    }
    return ret
}

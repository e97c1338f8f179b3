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
    `fmt`

    `github.com/hashicorp/go-multierror`
    `github.com/vitlang/vitc/ssa`
)

// Error is a malformed instruction or block found by Verify.
type Error struct {
    Block  ssa.BlockID
    Instr  ssa.InstrID
    Reason string
}

func (self Error) Error() string {
    if self.Instr == ssa.NoInstr {
        return fmt.Sprintf("ir: %s: %s", self.Block, self.Reason)
    } else {
        return fmt.Sprintf("ir: %s: ins_%d: %s", self.Block, self.Instr, self.Reason)
    }
}

func eblock(bb ssa.BlockID, format string, args ...interface{}) Error {
    return Error { Block: bb, Instr: ssa.NoInstr, Reason: fmt.Sprintf(format, args...) }
}

func einstr(p *Instr, format string, args ...interface{}) Error {
    return Error { Block: p.Block, Instr: p.ID, Reason: fmt.Sprintf(format, args...) }
}

type _DefSite struct {
    bb  ssa.BlockID
    pos int
}

// Verify checks the control-flow graph with ssa.Verify, then the shape of
// every block and instruction, and that every definition dominates its uses.
func Verify(fn *Func) error {
    if err := ssa.Verify(fn); err != nil {
        return err
    }

    /* check every block */
    var ret *multierror.Error
    var defs = make(map[ssa.Value]_DefSite)

    /* check the block structure, and collect the definitions */
    for _, bb := range fn.Blocks() {
        if err := verifyBlock(fn, bb, defs); err != nil {
            ret = multierror.Append(ret, err)
        }
    }

    /* only check the dominance on well-formed functions */
    if ret != nil {
        return ret.ErrorOrNil()
    }

    /* check that definitions dominate their uses */
    dom := ssa.BuildDominatorTree(fn)
    for _, bb := range fn.Blocks() {
        if dom.Contains(bb) {
            for i, id := range fn.Block(bb).Instrs {
                ret = verifyUses(fn, dom, fn.instrs[id], i, defs, ret)
            }
        }
    }

    /* all done */
    return ret.ErrorOrNil()
}

func verifyBlock(fn *Func, bb ssa.BlockID, defs map[ssa.Value]_DefSite) error {
    var ret *multierror.Error
    var ins = fn.Block(bb).Instrs

    /* must have a terminator */
    if len(ins) == 0 {
        return eblock(bb, "empty block")
    } else if !fn.instrs[ins[len(ins) - 1]].Op.IsTerminator() {
        ret = multierror.Append(ret, eblock(bb, "block is not terminated"))
    }

    /* check every instruction */
    for i, id := range ins {
        p := fn.instrs[id]
        if err := verifyInstr(fn, p, i, len(ins)); err != nil {
            ret = multierror.Append(ret, err)
        }

        /* phi nodes must be the leading instructions */
        if p.Op == OpPhi && i > 0 && fn.instrs[ins[i - 1]].Op != OpPhi {
            ret = multierror.Append(ret, einstr(p, "phi node after a non-phi instruction"))
        }

        /* each value must be defined exactly once */
        if p.Def != ssa.NoValue {
            if _, ok := defs[p.Def]; ok {
                ret = multierror.Append(ret, einstr(p, "%s is defined more than once", p.Def))
            } else {
                defs[p.Def] = _DefSite { bb, i }
            }
        }
    }

    /* all done */
    return ret.ErrorOrNil()
}

func verifyInstr(fn *Func, p *Instr, pos int, size int) error {
    switch {
        case p.Block == ssa.NoBlock                 : return einstr(p, "instruction is listed in a block but detached")
        case p.Op >= _OpCount                       : return einstr(p, "invalid op %d", p.Op)
        case p.Op.Defines() != (p.Def != ssa.NoValue) : return einstr(p, "%s has a wrong definition", p.Op)
        case p.Op.IsTerminator() && pos != size - 1 : return einstr(p, "terminator in the middle of the block")
        case p.Op == OpParam && p.Block != fn.entry : return einstr(p, "parameter outside of the entry block")
    }

    /* check the operand count */
    switch {
        case p.Op.IsBinary() && len(p.Args) != 2                                  : return einstr(p, "%s takes 2 operands", p.Op)
        case p.Op.flags() & _F_unary != 0 && len(p.Args) != 1                     : return einstr(p, "%s takes 1 operand", p.Op)
        case (p.Op == OpParam || p.Op == OpConst || p.Op == OpJump) && len(p.Args) != 0 : return einstr(p, "%s takes no operands", p.Op)
        case p.Op == OpReturn && len(p.Args) > 1                                  : return einstr(p, "return takes at most 1 operand")
        case p.Op == OpJump && len(p.Targets) != 1                                : return einstr(p, "jump takes 1 target")
        case p.Op == OpBranch && len(p.Targets) != 2                              : return einstr(p, "branch takes 2 targets")
        case p.Op == OpReturn && len(p.Targets) != 0                              : return einstr(p, "return takes no targets")
        case p.Op == OpPhi                                                        : return verifyPhi(fn, p)
        default                                                                   : return nil
    }
}

func verifyPhi(fn *Func, p *Instr) error {
    preds := dedup(fn.Block(p.Block).Preds)
    from := make(map[ssa.BlockID]bool, len(p.From))

    /* check for operand shape */
    if len(p.From) != len(p.Args) {
        return einstr(p, "phi has %d operands but %d incoming blocks", len(p.Args), len(p.From))
    }

    /* each incoming block must be a distinct predecessor */
    for _, bb := range p.From {
        if from[bb] {
            return einstr(p, "phi has more than one operand for %s", bb)
        } else if from[bb] = true; !containsBlock(preds, bb) {
            return einstr(p, "phi has an operand for %s, which is not a predecessor", bb)
        }
    }

    /* and each predecessor must have an operand */
    for _, bb := range preds {
        if !from[bb] {
            return einstr(p, "phi has no operand for %s", bb)
        }
    }

    /* all done */
    return nil
}

func verifyUses(fn *Func, dom *ssa.DominatorTree, p *Instr, pos int, defs map[ssa.Value]_DefSite, ret *multierror.Error) *multierror.Error {
    for i, a := range p.Args {
        if a.IsImm() {
            continue
        }

        /* the value must be defined somewhere */
        def, ok := defs[a.Value]
        if !ok {
            ret = multierror.Append(ret, einstr(p, "%s is not defined", a.Value))
            continue
        }

        /* phi operands are used at the end of the incoming block */
        if p.Op == OpPhi {
            if dom.Contains(p.From[i]) && !dom.Dominates(def.bb, p.From[i]) {
                ret = multierror.Append(ret, einstr(p, "%s does not dominate the edge from %s", a.Value, p.From[i]))
            }
            continue
        }

        /* other operands must be defined earlier in the same block, or in a dominator */
        if def.bb == p.Block && def.pos >= pos {
            ret = multierror.Append(ret, einstr(p, "%s is used before its definition", a.Value))
        } else if def.bb != p.Block && !dom.Dominates(def.bb, p.Block) {
            ret = multierror.Append(ret, einstr(p, "%s does not dominate its use", a.Value))
        }
    }
    return ret
}

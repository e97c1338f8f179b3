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
    `strconv`
    `strings`

    `github.com/vitlang/vitc/ssa`
)

func constString(c ssa.Const) string {
    switch c.Kind {
        case ssa.ConstInt    : return strconv.FormatInt(c.Int, 10)
        case ssa.ConstString : return strconv.Quote(c.Str)
        case ssa.ConstFloat  : return floatString(c.Float)
        default              : return c.String()
    }
}

func floatString(v float64) string {
    if s := strconv.FormatFloat(v, 'g', -1, 64); strings.ContainsAny(s, ".eIN") {
        return s
    } else {
        return s + ".0"
    }
}

func joinOperands(v []Operand) string {
    ret := make([]string, len(v))
    for i, a := range v {
        ret[i] = a.String()
    }
    return strings.Join(ret, ", ")
}

// FormatInstr prints an instruction in the textual IR syntax.
func (self *Func) FormatInstr(ins ssa.InstrID) string {
    var def string
    var p = self.Instr(ins)

    /* the defined value */
    if p.Def != ssa.NoValue {
        def = p.Def.String() + " = "
    }

    /* the instruction body */
    switch p.Op {
        case OpParam  : return def + "param " + strconv.FormatInt(p.Const.Int, 10)
        case OpConst  : return def + "const " + constString(p.Const)
        case OpPhi    : return def + "phi " + formatIncoming(p)
        case OpCall   : return fmt.Sprintf("%scall %s(%s)", def, p.Name, joinOperands(p.Args))
        case OpJump   : return "jump " + p.Targets[0].String()
        case OpBranch : return fmt.Sprintf("branch %s, %s, %s", p.Args[0], p.Targets[0], p.Targets[1])
        case OpReturn : return strings.TrimSpace("return " + joinOperands(p.Args))
        default       : return def + p.Op.String() + " " + joinOperands(p.Args)
    }
}

func formatIncoming(p *Instr) string {
    ret := make([]string, len(p.Args))
    for i, a := range p.Args {
        ret[i] = fmt.Sprintf("[%s: %s]", p.From[i], a)
    }
    return strings.Join(ret, ", ")
}

// String prints the whole function, blocks in the order Blocks returns them.
func (self *Func) String() string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "func %s(%d) {\n", self.Name, self.Params)

    /* dump every block */
    for _, bb := range self.Blocks() {
        fmt.Fprintf(&sb, "%s:\n", bb)
        for _, ins := range self.Block(bb).Instrs {
            fmt.Fprintf(&sb, "    %s\n", self.FormatInstr(ins))
        }
    }

    /* all done */
    sb.WriteString("}\n")
    return sb.String()
}

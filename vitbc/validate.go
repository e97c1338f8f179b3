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

package vitbc

import (
    `github.com/hashicorp/go-multierror`
)

// Validate checks that every instruction in m.Code is well-formed and only
// references pool entries and jump targets that exist. All problems found are
// returned together.
func Validate(m *Module) error {
    var ins []Instr
    var ret *multierror.Error

    /* decode all the instructions, remember where each of them starts */
    pcs := make(map[int]bool)
    err := Iterate(m.Code, func(p Instr) {
        pcs[p.Pc] = true
        ins = append(ins, p)
    })

    /* a malformed instruction hides everything after it */
    if err != nil {
        ret = multierror.Append(ret, err)
    }

    /* check every operand */
    for _, p := range ins {
        kind := _OpArgs[p.Op]
        for i, v := range p.Args {
            switch kind[minint(i, len(kind) - 1)] {
                case _O_int : if int(v) >= len(m.Ints)    { ret = multierror.Append(ret, eindex(p.Pc, TagInts.String(), int(v), len(m.Ints))) }
                case _O_flt : if int(v) >= len(m.Floats)  { ret = multierror.Append(ret, eindex(p.Pc, TagFlts.String(), int(v), len(m.Floats))) }
                case _O_str : if int(v) >= len(m.Strings) { ret = multierror.Append(ret, eindex(p.Pc, TagStrs.String(), int(v), len(m.Strings))) }
                case _O_pc  : if !pcs[int(v)]             { ret = multierror.Append(ret, eindex(p.Pc, TagCode.String(), int(v), len(m.Code))) }
            }
        }
    }

    /* all done */
    return ret.ErrorOrNil()
}

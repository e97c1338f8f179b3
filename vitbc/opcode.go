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
    `encoding/binary`
    `fmt`
    `strings`
)

type OpCode uint8

const (
    OP_nop OpCode = iota
    OP_ldi
    OP_ldf
    OP_lds
    OP_mov
    OP_neg
    OP_not
    OP_add
    OP_sub
    OP_mul
    OP_div
    OP_rem
    OP_and
    OP_or
    OP_xor
    OP_shl
    OP_shr
    OP_eq
    OP_ne
    OP_lt
    OP_le
    OP_call
    OP_print
    OP_jmp
    OP_br
    OP_ret
    OP_retv
)

type _Operand uint8

const (
    _O_reg _Operand = iota + 1  // u16 register
    _O_int                      // u32 index into Ints
    _O_flt                      // u32 index into Floats
    _O_str                      // u32 index into Strings
    _O_pc                       // u32 absolute CODE offset
    _O_argv                     // u8 count, followed by that many u16 registers
)

var _OpNames = [256]string {
    OP_nop   : "nop",
    OP_ldi   : "ldi",
    OP_ldf   : "ldf",
    OP_lds   : "lds",
    OP_mov   : "mov",
    OP_neg   : "neg",
    OP_not   : "not",
    OP_add   : "add",
    OP_sub   : "sub",
    OP_mul   : "mul",
    OP_div   : "div",
    OP_rem   : "rem",
    OP_and   : "and",
    OP_or    : "or",
    OP_xor   : "xor",
    OP_shl   : "shl",
    OP_shr   : "shr",
    OP_eq    : "eq",
    OP_ne    : "ne",
    OP_lt    : "lt",
    OP_le    : "le",
    OP_call  : "call",
    OP_print : "print",
    OP_jmp   : "jmp",
    OP_br    : "br",
    OP_ret   : "ret",
    OP_retv  : "retv",
}

var _OpArgs = [256][]_Operand {
    OP_nop   : {},
    OP_ldi   : { _O_reg, _O_int },
    OP_ldf   : { _O_reg, _O_flt },
    OP_lds   : { _O_reg, _O_str },
    OP_mov   : { _O_reg, _O_reg },
    OP_neg   : { _O_reg, _O_reg },
    OP_not   : { _O_reg, _O_reg },
    OP_add   : { _O_reg, _O_reg, _O_reg },
    OP_sub   : { _O_reg, _O_reg, _O_reg },
    OP_mul   : { _O_reg, _O_reg, _O_reg },
    OP_div   : { _O_reg, _O_reg, _O_reg },
    OP_rem   : { _O_reg, _O_reg, _O_reg },
    OP_and   : { _O_reg, _O_reg, _O_reg },
    OP_or    : { _O_reg, _O_reg, _O_reg },
    OP_xor   : { _O_reg, _O_reg, _O_reg },
    OP_shl   : { _O_reg, _O_reg, _O_reg },
    OP_shr   : { _O_reg, _O_reg, _O_reg },
    OP_eq    : { _O_reg, _O_reg, _O_reg },
    OP_ne    : { _O_reg, _O_reg, _O_reg },
    OP_lt    : { _O_reg, _O_reg, _O_reg },
    OP_le    : { _O_reg, _O_reg, _O_reg },
    OP_call  : { _O_reg, _O_str, _O_argv },
    OP_print : { _O_reg },
    OP_jmp   : { _O_pc },
    OP_br    : { _O_reg, _O_pc, _O_pc },
    OP_ret   : { _O_reg },
    OP_retv  : {},
}

func (self OpCode) Valid() bool {
    return _OpArgs[self] != nil
}

func (self OpCode) String() string {
    if self.Valid() {
        return _OpNames[self]
    } else {
        return fmt.Sprintf("op(%#02x)", uint8(self))
    }
}

// Instr is one decoded instruction of a CODE payload. Args holds the operands
// in encoding order; for CALL the argument registers follow the count.
type Instr struct {
    Pc   int
    Op   OpCode
    Args []uint32
}

func (self Instr) String() string {
    args := make([]string, 0, len(self.Args))
    kind := _OpArgs[self.Op]

    /* format the operands by kind */
    for i, v := range self.Args {
        switch k := kind[minint(i, len(kind) - 1)]; {
            case k == _O_int           : args = append(args, fmt.Sprintf("i#%d", v))
            case k == _O_flt           : args = append(args, fmt.Sprintf("f#%d", v))
            case k == _O_str           : args = append(args, fmt.Sprintf("s#%d", v))
            case k == _O_pc            : args = append(args, fmt.Sprintf("@%d", v))
            case k == _O_argv && i == 2: args = append(args, fmt.Sprintf("(%d)", v))
            default                    : args = append(args, fmt.Sprintf("r%d", v))
        }
    }

    /* join them together */
    if len(args) == 0 {
        return fmt.Sprintf("%06d  %s", self.Pc, self.Op)
    } else {
        return fmt.Sprintf("%06d  %-6s %s", self.Pc, self.Op, strings.Join(args, ", "))
    }
}

// AppendInstr encodes one instruction. For CALL, args are the result
// register, the callee name index and then the argument registers.
func AppendInstr(buf []byte, op OpCode, args ...uint32) []byte {
    kind := _OpArgs[op]
    narg := len(kind)

    /* check the operand count */
    if !op.Valid() {
        panic(fmt.Sprintf("vitbc: invalid opcode %#02x", uint8(op)))
    } else if op == OP_call && len(args) < 2 {
        panic("vitbc: call requires a result register and a callee")
    } else if op == OP_call && len(args) - 2 > 255 {
        panic("vitbc: too many call arguments")
    } else if op != OP_call && len(args) != narg {
        panic(fmt.Sprintf("vitbc: %s takes %d operands, got %d", op, narg, len(args)))
    }

    /* encode the operands */
    buf = append(buf, byte(op))
    for i, v := range args {
        switch k := kind[minint(i, narg - 1)]; k {
            case _O_int, _O_flt, _O_str, _O_pc: {
                buf = binary.LittleEndian.AppendUint32(buf, v)
            }

            /* argument vector, emit the count before the first register */
            case _O_argv: {
                if i == narg - 1 {
                    buf = append(buf, byte(len(args) - 2))
                }
                buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
            }

            /* plain registers */
            default: {
                buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
            }
        }
    }

    /* calls without arguments still carry the count */
    if op == OP_call && len(args) == 2 {
        buf = append(buf, 0)
    }
    return buf
}

// Iterate decodes code instruction by instruction and calls fn for each of
// them. It stops at the first malformed instruction.
func Iterate(code []byte, fn func(ins Instr)) error {
    pc := 0
    for pc < len(code) {
        ins, n, err := decodeInstr(code, pc)
        if err != nil {
            return err
        }
        fn(ins)
        pc += n
    }
    return nil
}

func decodeInstr(code []byte, pc int) (Instr, int, error) {
    op := OpCode(code[pc])
    ip := pc + 1

    /* check for opcode */
    if !op.Valid() {
        return Instr{}, 0, eformat(pc, "invalid opcode %#02x in %s", uint8(op), TagCode)
    }

    /* decode each operand */
    ins := Instr { Pc: pc, Op: op }
    for _, k := range _OpArgs[op] {
        switch k {
            case _O_reg: {
                if ip + 2 > len(code) { return Instr{}, 0, truncated(pc, op) }
                ins.Args = append(ins.Args, uint32(binary.LittleEndian.Uint16(code[ip:])))
                ip += 2
            }

            /* 32-bit indices and offsets */
            case _O_int, _O_flt, _O_str, _O_pc: {
                if ip + 4 > len(code) { return Instr{}, 0, truncated(pc, op) }
                ins.Args = append(ins.Args, binary.LittleEndian.Uint32(code[ip:]))
                ip += 4
            }

            /* argument count followed by registers */
            case _O_argv: {
                if ip + 1 > len(code) { return Instr{}, 0, truncated(pc, op) }
                n := int(code[ip])
                ins.Args = append(ins.Args, uint32(n))
                ip++

                /* argument registers */
                if ip + n * 2 > len(code) { return Instr{}, 0, truncated(pc, op) }
                for i := 0; i < n; i++ {
                    ins.Args = append(ins.Args, uint32(binary.LittleEndian.Uint16(code[ip:])))
                    ip += 2
                }
            }
        }
    }

    /* all done */
    return ins, ip - pc, nil
}

func truncated(pc int, op OpCode) FormatError {
    return eformat(pc, "truncated %s instruction", op)
}

func minint(a int, b int) int {
    if a < b {
        return a
    } else {
        return b
    }
}

// Disassemble renders code one instruction per line.
func Disassemble(code []byte) (string, error) {
    var sb strings.Builder
    err := Iterate(code, func(ins Instr) {
        sb.WriteString(ins.String())
        sb.WriteByte('\n')
    })
    return sb.String(), err
}

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
    `hash/crc32`
    `sync/atomic`

    `github.com/vitlang/vitc/internal/opts`
)

// Encode serializes m into a VITBC stream. Empty fields are omitted. When
// compressCode is set the CODE payload is deflated if that succeeds and makes
// it smaller, otherwise the raw bytes are written.
func Encode(m *Module, compressCode bool) []byte {
    if compressCode {
        return EncodeLevel(m, opts.CompressLevel)
    } else {
        return encode(m, m.Code)
    }
}

// EncodeLevel is like Encode with compression enabled at the given zlib level.
func EncodeLevel(m *Module, level int) []byte {
    return encode(m, compressCode(m.Code, level))
}

func encode(m *Module, code []byte) []byte {
    e := _Encoder { buf: make([]byte, 0, estimateSize(m, code)) }
    e.header(m.Version)

    /* fixed section order, empty sections are omitted */
    if len(m.Ints)    != 0 { e.ints(m.Ints) }
    if len(m.Floats)  != 0 { e.floats(m.Floats) }
    if len(m.Strings) != 0 { e.strings(TagStrs, m.Strings) }
    if len(m.Data)    != 0 { e.bytes(TagData, m.Data) }
    if len(code)      != 0 { e.bytes(TagCode, code) }
    if len(m.Names)   != 0 { e.strings(TagName, m.Names) }

    /* checksum everything after the header */
    e.trailer()
    atomic.AddUint64(&EncodeCount, 1)
    return e.buf
}

func estimateSize(m *Module, code []byte) int {
    n := _HeaderSize + _TrailerSize + _SectionHead * 6
    n += len(m.Ints) * 8 + len(m.Floats) * 8 + len(m.Data) + len(code)

    /* string pools carry a length prefix per entry */
    for _, s := range m.Strings { n += 4 + len(s) }
    for _, s := range m.Names   { n += 4 + len(s) }
    return n
}

type _Encoder struct {
    buf []byte
}

func (self *_Encoder) u32(v uint32) {
    self.buf = binary.LittleEndian.AppendUint32(self.buf, v)
}

func (self *_Encoder) u64(v uint64) {
    self.buf = binary.LittleEndian.AppendUint64(self.buf, v)
}

func (self *_Encoder) head(tag Tag, size int) {
    self.buf = append(self.buf, tag[:]...)
    self.u32(uint32(size))
}

func (self *_Encoder) header(ver uint16) {
    self.buf = append(self.buf, _Magic[:]...)
    self.buf = binary.LittleEndian.AppendUint16(self.buf, ver)
}

func (self *_Encoder) ints(v []int64) {
    self.head(TagInts, len(v) * 8)
    for _, x := range v { self.u64(uint64(x)) }
}

func (self *_Encoder) floats(v []float64) {
    self.head(TagFlts, len(v) * 8)
    for _, x := range v { self.u64(f64bits(x)) }
}

func (self *_Encoder) strings(tag Tag, v []string) {
    n := 0
    for _, s := range v { n += 4 + len(s) }

    /* length-prefixed entries */
    self.head(tag, n)
    for _, s := range v {
        self.u32(uint32(len(s)))
        self.buf = append(self.buf, s...)
    }
}

func (self *_Encoder) bytes(tag Tag, v []byte) {
    self.head(tag, len(v))
    self.buf = append(self.buf, v...)
}

func (self *_Encoder) trailer() {
    crc := crc32.ChecksumIEEE(self.buf[_HeaderSize:])
    self.buf = append(self.buf, TagCrc[:]...)
    self.u32(crc)
}

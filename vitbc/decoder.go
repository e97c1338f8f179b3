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
    `bytes`
    `encoding/binary`
    `hash/crc32`
    `sync/atomic`
    `unicode/utf8`
)

// CodeMode selects how the decoder treats the CODE payload. The format does
// not record whether CODE was compressed.
type CodeMode int

const (
    // CodeAuto inflates CODE when it is a complete zlib stream and keeps the
    // raw bytes otherwise.
    CodeAuto CodeMode = iota

    // CodeRaw never inflates CODE.
    CodeRaw

    // CodeCompressed requires CODE to be a zlib stream.
    CodeCompressed
)

// DecodeOption is the property setter function for the decoder.
type DecodeOption func(*_Decoder)

// WithCodeMode selects how the CODE payload is interpreted.
func WithCodeMode(mode CodeMode) DecodeOption {
    return func(d *_Decoder) { d.mode = mode }
}

type _Decoder struct {
    buf  []byte
    pos  int
    end  int
    mode CodeMode
    seen map[Tag]bool
}

// Decode parses a VITBC stream. Nothing is returned on error.
//
// With the default CodeAuto mode, raw CODE bytes that happen to form a
// complete zlib stream are inflated. Callers that need decoding to return
// exactly the bytes given to Encode(m, false) must pass WithCodeMode(CodeRaw).
func Decode(buf []byte, opts ...DecodeOption) (*Module, error) {
    d := &_Decoder {
        buf  : buf,
        seen : make(map[Tag]bool),
    }

    /* apply the options */
    for _, fn := range opts {
        fn(d)
    }

    /* parse the stream */
    m, err := d.decode()
    if err != nil {
        return nil, err
    }

    /* all done */
    atomic.AddUint64(&DecodeCount, 1)
    return m, nil
}

// Checksum computes the CRC a well-formed stream must carry in its trailer.
func Checksum(buf []byte) (uint32, error) {
    if err := checkFrame(buf); err != nil {
        return 0, err
    } else {
        return crc32.ChecksumIEEE(buf[_HeaderSize:len(buf) - _TrailerSize]), nil
    }
}

func checkFrame(buf []byte) error {
    if len(buf) < len(_Magic) || !bytes.Equal(buf[:len(_Magic)], _Magic[:]) {
        return eformat(0, "bad magic")
    } else if len(buf) < _HeaderSize + _TrailerSize {
        return eformat(len(buf), "stream too short: %d bytes", len(buf))
    } else if tag := buf[len(buf) - _TrailerSize:][:4]; !bytes.Equal(tag, TagCrc[:]) {
        return eformat(len(buf) - _TrailerSize, "missing %s trailer", TagCrc)
    } else {
        return nil
    }
}

func (self *_Decoder) decode() (*Module, error) {
    var err error
    var crc uint32
    var tag Tag

    /* check the magic and locate the trailer */
    if err = checkFrame(self.buf); err != nil {
        return nil, err
    }

    /* verify the checksum before trusting any section header */
    self.pos = _HeaderSize
    self.end = len(self.buf) - _TrailerSize
    crc = crc32.ChecksumIEEE(self.buf[self.pos:self.end])

    /* compare with the stored one */
    if sum := binary.LittleEndian.Uint32(self.buf[self.end + 4:]); sum != crc {
        atomic.AddUint64(&ChecksumFailures, 1)
        return nil, ChecksumError { Stored: sum, Computed: crc }
    }

    /* construct the module */
    m := &Module {
        Version  : binary.LittleEndian.Uint16(self.buf[6:]),
        Checksum : crc,
    }

    /* parse every section */
    for self.pos < self.end {
        var pos int
        var payload []byte

        /* section header */
        if self.end - self.pos < _SectionHead {
            return nil, eformat(self.pos, "truncated section header")
        }

        /* read the tag and length */
        pos = self.pos
        copy(tag[:], self.buf[pos:])
        size := binary.LittleEndian.Uint32(self.buf[pos + 4:])

        /* check for payload, compared unsigned so huge lengths cannot wrap */
        if self.pos += _SectionHead; uint64(size) > uint64(self.end - self.pos) {
            return nil, eformat(pos, "section %s claims %d bytes, only %d left", tag, size, self.end - self.pos)
        }

        /* unknown sections are skipped, known ones may appear only once */
        payload = self.buf[self.pos:self.pos + int(size)]
        self.pos += int(size)

        /* skip unknown sections */
        if !tag.Known() {
            continue
        }

        /* check for duplicated sections */
        if self.seen[tag] {
            return nil, eformat(pos, "duplicated section %s", tag)
        }

        /* decode the section */
        self.seen[tag] = true
        if err = self.section(m, tag, pos, payload); err != nil {
            return nil, err
        }
    }

    /* all done */
    return m, nil
}

func (self *_Decoder) section(m *Module, tag Tag, pos int, payload []byte) (err error) {
    switch tag {
        case TagInts: m.Ints, err = decodeInts(pos, payload)
        case TagFlts: m.Floats, err = decodeFloats(pos, payload)
        case TagStrs: m.Strings, err = decodeStrings(tag, pos, payload)
        case TagName: m.Names, err = decodeStrings(tag, pos, payload)
        case TagData: m.Data = append([]byte(nil), payload...)
        case TagCode: m.Code, err = self.code(pos, payload)
        default     : panic("vitbc: unreachable")
    }
    return
}

func (self *_Decoder) code(pos int, payload []byte) ([]byte, error) {
    switch self.mode {
        case CodeRaw: {
            return append([]byte(nil), payload...), nil
        }

        /* must be compressed */
        case CodeCompressed: {
            if ret, err := inflateCode(payload); err != nil {
                return nil, eformat(pos, "cannot inflate %s: %v", TagCode, err)
            } else {
                return ret, nil
            }
        }

        /* try to inflate, fallback to raw bytes */
        default: {
            if ret, err := inflateCode(payload); err != nil {
                return append([]byte(nil), payload...), nil
            } else {
                return ret, nil
            }
        }
    }
}

func decodeInts(pos int, payload []byte) ([]int64, error) {
    if len(payload) % 8 != 0 {
        return nil, eformat(pos, "%s payload is %d bytes, not a multiple of 8", TagInts, len(payload))
    }

    /* concatenated i64 LE values */
    ret := make([]int64, len(payload) / 8)
    for i := range ret {
        ret[i] = int64(binary.LittleEndian.Uint64(payload[i * 8:]))
    }
    return ret, nil
}

func decodeFloats(pos int, payload []byte) ([]float64, error) {
    if len(payload) % 8 != 0 {
        return nil, eformat(pos, "%s payload is %d bytes, not a multiple of 8", TagFlts, len(payload))
    }

    /* concatenated f64 LE values */
    ret := make([]float64, len(payload) / 8)
    for i := range ret {
        ret[i] = f64frombits(binary.LittleEndian.Uint64(payload[i * 8:]))
    }
    return ret, nil
}

func decodeStrings(tag Tag, pos int, payload []byte) ([]string, error) {
    var ret []string
    var off int

    /* repeated u32 length + UTF-8 bytes */
    for off < len(payload) {
        if len(payload) - off < 4 {
            return nil, eformat(pos + _SectionHead + off, "truncated %s entry length", tag)
        }

        /* read the length */
        size := binary.LittleEndian.Uint32(payload[off:])
        off += 4

        /* check for string body */
        if uint64(size) > uint64(len(payload) - off) {
            return nil, eformat(pos + _SectionHead + off, "%s entry %d claims %d bytes, only %d left", tag, len(ret), size, len(payload) - off)
        }
        n := int(size)

        /* must be valid UTF-8 */
        if s := payload[off:off + n]; !utf8.Valid(s) {
            return nil, EncodingError { Section: tag.String(), Index: len(ret) }
        } else {
            ret = append(ret, string(s))
            off += n
        }
    }

    /* all done */
    return ret, nil
}

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
    `errors`
    `hash/crc32`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/klauspost/compress/zlib`
    `github.com/davecgh/go-spew/spew`
    `github.com/sebdah/goldie/v2`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func section(tag string, payload []byte) []byte {
    buf := append([]byte(tag), 0, 0, 0, 0)
    binary.LittleEndian.PutUint32(buf[4:], uint32(len(payload)))
    return append(buf, payload...)
}

func frame(ver uint16, sections ...[]byte) []byte {
    buf := append([]byte(nil), _Magic[:]...)
    buf = binary.LittleEndian.AppendUint16(buf, ver)
    for _, s := range sections {
        buf = append(buf, s...)
    }
    crc := crc32.ChecksumIEEE(buf[_HeaderSize:])
    buf = append(buf, "CRCC"...)
    return binary.LittleEndian.AppendUint32(buf, crc)
}

func lpstr(v ...string) []byte {
    var buf []byte
    for _, s := range v {
        buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
        buf = append(buf, s...)
    }
    return buf
}

func fakeModule(f *gofakeit.Faker) *Module {
    m := &Module { Version: uint16(f.Number(0, 0xffff)) }
    if n := f.Number(0, 8); n != 0 {
        for i := 0; i < n; i++ { m.Ints = append(m.Ints, f.Int64()) }
    }
    if n := f.Number(0, 8); n != 0 {
        for i := 0; i < n; i++ { m.Floats = append(m.Floats, f.Float64Range(-1e9, 1e9)) }
    }
    if n := f.Number(0, 8); n != 0 {
        for i := 0; i < n; i++ { m.Strings = append(m.Strings, f.Word() + f.Emoji()) }
    }
    if n := f.Number(0, 64); n != 0 {
        for i := 0; i < n; i++ { m.Data = append(m.Data, f.Uint8()) }
    }
    if n := f.Number(0, 256); n != 0 {
        for i := 0; i < n; i++ { m.Code = append(m.Code, byte(f.Number(0, 3))) }
    }
    if n := f.Number(0, 4); n != 0 {
        for i := 0; i < n; i++ { m.Names = append(m.Names, f.Sentence(3)) }
    }
    return m
}

func TestCodec_EndToEnd(t *testing.T) {
    m := &Module {
        Version : 2,
        Ints    : []int64{1, 2, 3},
        Strings : []string{"hi"},
        Code    : []byte{0xaa, 0xbb},
        Names   : []string{"foo"},
    }
    buf := Encode(m, false)
    goldie.New(t).Assert(t, "module_v2", buf)
    ret, err := Decode(buf)
    require.NoError(t, err)
    crc, err := Checksum(buf)
    require.NoError(t, err)
    require.Equal(t, crc, ret.Checksum)
    require.Equal(t, crc32.ChecksumIEEE(buf[8:len(buf) - 8]), ret.Checksum)
    require.Equal(t, binary.LittleEndian.Uint32(buf[len(buf) - 4:]), ret.Checksum)
    m.Checksum = ret.Checksum
    require.Equal(t, m, ret)
}

func TestCodec_RoundTrip(t *testing.T) {
    f := gofakeit.New(20221019)
    for i := 0; i < 200; i++ {
        m := fakeModule(f)
        for _, compress := range []bool { false, true } {
            ret, err := Decode(Encode(m, compress))
            require.NoError(t, err)
            ret.Checksum = 0
            if !assert.Equal(t, m, ret, "compress = %v", compress) {
                spew.Dump(m)
                return
            }
        }
    }
}

func TestCodec_CompressedCode(t *testing.T) {
    m := NewModule()
    m.Code = bytes.Repeat([]byte { byte(OP_nop), byte(OP_retv) }, 1024)
    raw := Encode(m, false)
    zip := Encode(m, true)
    require.Less(t, len(zip), len(raw))
    ret, err := Decode(zip)
    require.NoError(t, err)
    require.Equal(t, m.Code, ret.Code)
    ret, err = Decode(zip, WithCodeMode(CodeRaw))
    require.NoError(t, err)
    require.NotEqual(t, m.Code, ret.Code)
    ret, err = Decode(raw, WithCodeMode(CodeCompressed))
    require.Nil(t, ret)
    require.ErrorAs(t, err, new(FormatError))
}

func TestDecode_RawCodeLooksCompressed(t *testing.T) {
    var zip bytes.Buffer
    wr := zlib.NewWriter(&zip)
    _, err := wr.Write([]byte("payload"))
    require.NoError(t, err)
    require.NoError(t, wr.Close())

    /* stored as raw bytes, but they form a complete zlib stream */
    m := NewModule()
    m.Code = zip.Bytes()
    buf := Encode(m, false)

    ret, err := Decode(buf)
    require.NoError(t, err)
    require.Equal(t, []byte("payload"), ret.Code)
    ret, err = Decode(buf, WithCodeMode(CodeRaw))
    require.NoError(t, err)
    require.Equal(t, m.Code, ret.Code)
}

func TestCodec_IncompressibleCode(t *testing.T) {
    m := NewModule()
    m.Code = []byte { 0xaa, 0xbb }
    require.Equal(t, Encode(m, false), Encode(m, true))
}

func TestEncode_OmitsEmptySections(t *testing.T) {
    buf := Encode(NewModule(), true)
    require.Len(t, buf, _HeaderSize + _TrailerSize)
    require.Equal(t, "VITBC\x00\x02\x00CRCC", string(buf[:12]))
    ret, err := Decode(buf)
    require.NoError(t, err)
    require.Nil(t, ret.Ints)
    require.Nil(t, ret.Floats)
    require.Nil(t, ret.Strings)
    require.Nil(t, ret.Data)
    require.Nil(t, ret.Code)
    require.Nil(t, ret.Names)
}

func TestEncode_SectionOrder(t *testing.T) {
    m := &Module {
        Version : Version,
        Names   : []string{"n"},
        Code    : []byte{1},
        Data    : []byte{2},
        Strings : []string{"s"},
        Floats  : []float64{1.5},
        Ints    : []int64{-1},
    }
    var tags []string
    buf := Encode(m, false)
    for pos := _HeaderSize; pos < len(buf) - _TrailerSize; {
        tags = append(tags, string(buf[pos:pos + 4]))
        pos += _SectionHead + int(binary.LittleEndian.Uint32(buf[pos + 4:]))
    }
    require.Equal(t, []string{"INTS", "FLTS", "STRS", "DATA", "CODE", "NAME"}, tags)
}

func TestDecode_ChecksumSensitivity(t *testing.T) {
    m := &Module {
        Version : 2,
        Ints    : []int64{1, 2, 3},
        Floats  : []float64{3.25},
        Strings : []string{"hi"},
        Data    : []byte("data"),
        Code    : []byte{0xaa, 0xbb},
        Names   : []string{"foo"},
    }
    buf := Encode(m, false)
    for i := _HeaderSize; i < len(buf) - _TrailerSize; i++ {
        bad := append([]byte(nil), buf...)
        bad[i] ^= 0x01
        ret, err := Decode(bad)
        require.Nil(t, ret)
        var ce ChecksumError
        require.True(t, errors.As(err, &ce), "byte %d: %v", i, err)
        require.NotEqual(t, ce.Stored, ce.Computed)
    }
}

func TestDecode_UnknownSection(t *testing.T) {
    buf := frame(3,
        section("INTS", []byte{7, 0, 0, 0, 0, 0, 0, 0}),
        section("XTRA", []byte("from the future")),
        section("STRS", lpstr("ok")),
    )
    ret, err := Decode(buf)
    require.NoError(t, err)
    require.Equal(t, uint16(3), ret.Version)
    require.Equal(t, []int64{7}, ret.Ints)
    require.Equal(t, []string{"ok"}, ret.Strings)
}

func TestDecode_FormatErrors(t *testing.T) {
    good := Encode(&Module { Version: 1, Ints: []int64{1} }, false)
    tests := map[string][]byte {
        "empty"         : nil,
        "bad magic"     : append([]byte("VITBX\x00"), good[6:]...),
        "short"         : good[:12],
        "no trailer"    : good[:len(good) - 8],
        "ints length"   : frame(1, section("INTS", []byte{1, 2, 3})),
        "floats length" : frame(1, section("FLTS", make([]byte, 9))),
        "overrun"       : frame(1, append(section("DATA", []byte{1, 2}), 0xff)),
        "truncated str" : frame(1, section("STRS", []byte{5, 0, 0, 0, 'a'})),
        "duplicated"    : frame(1, section("DATA", []byte{1}), section("DATA", []byte{2})),
        "huge section"  : frame(1, []byte("DATA\xff\xff\xff\xff"), []byte{1, 2, 3, 4}),
        "huge str"      : frame(1, section("STRS", []byte{0xff, 0xff, 0xff, 0xff, 'a'})),
        "2^31 str"      : frame(1, section("NAME", []byte{0, 0, 0, 0x80, 'a'})),
    }
    for name, buf := range tests {
        ret, err := Decode(buf)
        require.Nil(t, ret, name)
        require.ErrorAs(t, err, new(FormatError), name)
    }
}

func TestDecode_InvalidUTF8(t *testing.T) {
    for _, tag := range []string { "STRS", "NAME" } {
        buf := frame(2, section(tag, lpstr("ok", "bad\xff")))
        ret, err := Decode(buf)
        require.Nil(t, ret)
        var ee EncodingError
        require.ErrorAs(t, err, &ee)
        require.Equal(t, tag, ee.Section)
        require.Equal(t, 1, ee.Index)
    }
}

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
    `fmt`
)

// FormatError occures when the stream does not have the shape of a VITBC module.
type FormatError struct {
    Pos    int
    Reason string
}

func (self FormatError) Error() string {
    return fmt.Sprintf("vitbc: format error at offset %d: %s", self.Pos, self.Reason)
}

// ChecksumError occures when the CRCC trailer does not match the covered bytes.
type ChecksumError struct {
    Stored   uint32
    Computed uint32
}

func (self ChecksumError) Error() string {
    return fmt.Sprintf("vitbc: checksum mismatch: stored %#08x, computed %#08x", self.Stored, self.Computed)
}

// EncodingError occures when a string section holds bytes that are not valid UTF-8.
type EncodingError struct {
    Section string
    Index   int
}

func (self EncodingError) Error() string {
    return fmt.Sprintf("vitbc: invalid UTF-8 in %s entry %d", self.Section, self.Index)
}

// IndexError occures when an instruction references something that does not exist.
type IndexError struct {
    Pc      int
    Section string
    Index   int
    Limit   int
}

func (self IndexError) Error() string {
    return fmt.Sprintf("vitbc: instruction at pc %d references %s[%d], but only %d entries exist", self.Pc, self.Section, self.Index, self.Limit)
}

func eformat(pos int, format string, args ...interface{}) FormatError {
    return FormatError {
        Pos    : pos,
        Reason : fmt.Sprintf(format, args...),
    }
}

func eindex(pc int, sec string, idx int, limit int) IndexError {
    return IndexError {
        Pc      : pc,
        Section : sec,
        Index   : idx,
        Limit   : limit,
    }
}

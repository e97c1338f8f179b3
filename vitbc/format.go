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

const (
    // Version is the format version written by this package.
    Version uint16 = 2
)

const (
    _HeaderSize  = 8    // magic + version
    _SectionHead = 8    // tag + length
    _TrailerSize = 8    // "CRCC" + crc32
)

var _Magic = [6]byte { 'V', 'I', 'T', 'B', 'C', 0 }

type Tag [4]byte

var (
    TagInts  = Tag { 'I', 'N', 'T', 'S' }
    TagFlts  = Tag { 'F', 'L', 'T', 'S' }
    TagStrs  = Tag { 'S', 'T', 'R', 'S' }
    TagData  = Tag { 'D', 'A', 'T', 'A' }
    TagCode  = Tag { 'C', 'O', 'D', 'E' }
    TagName  = Tag { 'N', 'A', 'M', 'E' }
    TagCrc   = Tag { 'C', 'R', 'C', 'C' }
)

func (self Tag) String() string {
    return string(self[:])
}

// Known reports whether the decoder understands sections with this tag.
func (self Tag) Known() bool {
    switch self {
        case TagInts, TagFlts, TagStrs, TagData, TagCode, TagName : return true
        default                                                    : return false
    }
}

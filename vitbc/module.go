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
    `strings`
)

// Module is the unit of the VITBC format: the constant pools, raw data and
// code of one compiled program.
type Module struct {
    Version  uint16
    Ints     []int64
    Floats   []float64
    Strings  []string
    Data     []byte
    Code     []byte
    Names    []string
    Checksum uint32
}

// NewModule creates an empty module of the current format version.
func NewModule() *Module {
    return &Module { Version: Version }
}

// AddInt interns v in the integer pool and returns its index.
func (self *Module) AddInt(v int64) int {
    for i, x := range self.Ints {
        if x == v {
            return i
        }
    }
    self.Ints = append(self.Ints, v)
    return len(self.Ints) - 1
}

// AddFloat interns v in the float pool and returns its index. Values are
// compared bitwise, so -0.0 and 0.0 get separate entries.
func (self *Module) AddFloat(v float64) int {
    for i, x := range self.Floats {
        if f64bits(x) == f64bits(v) {
            return i
        }
    }
    self.Floats = append(self.Floats, v)
    return len(self.Floats) - 1
}

// AddString interns v in the string pool and returns its index.
func (self *Module) AddString(v string) int {
    for i, x := range self.Strings {
        if x == v {
            return i
        }
    }
    self.Strings = append(self.Strings, v)
    return len(self.Strings) - 1
}

func (self *Module) String() string {
    return fmt.Sprintf(
        "module v%d {ints: %d, floats: %d, strings: %d, data: %d bytes, code: %d bytes, names: [%s], crc: %#08x}",
        self.Version,
        len(self.Ints),
        len(self.Floats),
        len(self.Strings),
        len(self.Data),
        len(self.Code),
        strings.Join(self.Names, ", "),
        self.Checksum,
    )
}

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
    `os`
)

// ReadFile reads and decodes the module stored at path.
func ReadFile(path string, opts ...DecodeOption) (*Module, error) {
    if buf, err := os.ReadFile(path); err != nil {
        return nil, err
    } else {
        return Decode(buf, opts...)
    }
}

// WriteFile encodes m and atomically replaces the file at path.
func WriteFile(path string, m *Module, compressCode bool) error {
    buf := Encode(m, compressCode)
    tmp := path + ".tmp"

    /* write the temporary file */
    if err := os.WriteFile(tmp, buf, 0644); err != nil {
        return err
    }

    /* move it into place */
    if err := os.Rename(tmp, path); err != nil {
        _ = os.Remove(tmp)
        return err
    } else {
        return nil
    }
}

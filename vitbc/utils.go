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
    `math`
)

var (
    EncodeCount       uint64
    DecodeCount       uint64
    ChecksumFailures  uint64
    CompressFallbacks uint64
)

func f64bits(v float64) uint64 {
    return math.Float64bits(v)
}

func f64frombits(v uint64) float64 {
    return math.Float64frombits(v)
}

/*
 * Copyright 2022 CloudWeGo Authors
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

package opts

import (
	"os"
	"strconv"
)

const (
	_DefaultCompressLevel     = 6 // zlib level
	_DefaultVerifyPasses      = 1 // check the CFG around every pass
	_DefaultMaxSimplifyRounds = 0 // run SimplifyCfg until stable
)

var (
	CompressLevel     = parseOrDefault("VIT_COMPRESS_LEVEL", _DefaultCompressLevel, -1, 9)
	VerifyPasses      = parseOrDefault("VIT_VERIFY_PASSES", _DefaultVerifyPasses, 0, 1) != 0
	MaxSimplifyRounds = parseOrDefault("VIT_MAX_SIMPLIFY_ROUNDS", _DefaultMaxSimplifyRounds, 0, 1<<20)
)

func parseOrDefault(key string, def int, min int, max int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseInt(env, 0, 64); err != nil {
		panic("vitc: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("vitc: value too small for " + key)
	} else if ret > max {
		panic("vitc: value too large for " + key)
	} else {
		return ret
	}
}

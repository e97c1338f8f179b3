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

package vitc

import (
	"fmt"

	"github.com/vitlang/vitc/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithCompressCode enables zlib compression of the CODE section when
// encoding. Compression is skipped if it does not make the section smaller.
//
// The default value of this option is "false".
func WithCompressCode(v bool) Option {
	return func(o *opts.Options) { o.CompressCode = v }
}

// WithCompressLevel sets the zlib level used when compressing the CODE
// section, from "-1" (zlib default) to "9" (best compression). Level "0"
// disables the compression even if WithCompressCode is set.
//
// The default value of this option is "6".
func WithCompressLevel(level int) Option {
	if level < -1 || level > 9 {
		panic(fmt.Sprintf("vitc: invalid compression level: %d", level))
	} else {
		return func(o *opts.Options) { o.CompressLevel = level }
	}
}

// WithVerify controls whether the control-flow graph is checked before the
// first pass and after every pass.
//
// The default value of this option is "true".
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.VerifyPasses = v }
}

// WithFoldThroughCalls controls whether constant propagation substitutes
// literals into the operands of calls and other instructions with side
// effects. The instructions themselves are never folded or removed.
//
// The default value of this option is "true".
func WithFoldThroughCalls(v bool) Option {
	return func(o *opts.Options) { o.FoldThroughCalls = v }
}

// WithMaxSimplifyRounds limits the number of rounds of CFG simplification.
//
// The default value "0" means simplifying until nothing changes.
func WithMaxSimplifyRounds(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("vitc: invalid simplify rounds: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxSimplifyRounds = n }
	}
}

// SetDefaultCompressLevel sets the default zlib level of the CODE section
// from now on.
//
// This value can also be configured with the `VIT_COMPRESS_LEVEL`
// environment variable.
//
// Returns the old opts.CompressLevel value.
func SetDefaultCompressLevel(level int) int {
	if level < -1 || level > 9 {
		panic(fmt.Sprintf("vitc: invalid compression level: %d", level))
	}
	level, opts.CompressLevel = opts.CompressLevel, level
	return level
}

// SetDefaultVerifyPasses sets whether the control-flow graph is checked
// around every pass from now on.
//
// This value can also be configured with the `VIT_VERIFY_PASSES`
// environment variable.
//
// Returns the old opts.VerifyPasses value.
func SetDefaultVerifyPasses(v bool) bool {
	v, opts.VerifyPasses = opts.VerifyPasses, v
	return v
}

// SetDefaultMaxSimplifyRounds sets the default number of rounds of CFG
// simplification from now on.
//
// This value can also be configured with the `VIT_MAX_SIMPLIFY_ROUNDS`
// environment variable.
//
// Returns the old opts.MaxSimplifyRounds value.
func SetDefaultMaxSimplifyRounds(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("vitc: invalid simplify rounds: %d", n))
	}
	n, opts.MaxSimplifyRounds = opts.MaxSimplifyRounds, n
	return n
}

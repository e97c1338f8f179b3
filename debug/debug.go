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

package debug

import (
	"sync/atomic"

	"github.com/vitlang/vitc/ssa"
	"github.com/vitlang/vitc/vitbc"
)

// A Stats records statistics about the codec and the optimizer.
type Stats struct {
	Codec    CodecStats
	Pipeline PipelineStats
}

// A CodecStats records statistics about VITBC encoding and decoding.
type CodecStats struct {
	Encoded           int
	Decoded           int
	ChecksumFailures  int
	CompressFallbacks int
}

// A PipelineStats records statistics about the pass manager.
type PipelineStats struct {
	Runs           int
	Passes         int
	VerifyFailures int
}

// GetStats returns statistics of the codec and the optimizer.
func GetStats() Stats {
	return Stats{
		Codec: CodecStats{
			Encoded:           int(atomic.LoadUint64(&vitbc.EncodeCount)),
			Decoded:           int(atomic.LoadUint64(&vitbc.DecodeCount)),
			ChecksumFailures:  int(atomic.LoadUint64(&vitbc.ChecksumFailures)),
			CompressFallbacks: int(atomic.LoadUint64(&vitbc.CompressFallbacks)),
		},
		Pipeline: PipelineStats{
			Runs:           int(atomic.LoadUint64(&ssa.PipelineCount)),
			Passes:         int(atomic.LoadUint64(&ssa.PassCount)),
			VerifyFailures: int(atomic.LoadUint64(&ssa.VerifyFailures)),
		},
	}
}

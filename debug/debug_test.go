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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitlang/vitc/ir"
	"github.com/vitlang/vitc/ssa"
	"github.com/vitlang/vitc/vitbc"
)

func TestGetStats(t *testing.T) {
	before := GetStats()

	fn := ir.NewFunc("f", 0)
	b := ir.NewBuilder(fn)
	b.Return(ir.I(1))
	_, err := ssa.NewPassManager().Add(ssa.DeadCodeElim{}).RunModule(fn)
	require.NoError(t, err)

	m, err := ir.Lower(fn)
	require.NoError(t, err)
	_, err = vitbc.Decode(vitbc.Encode(m, false))
	require.NoError(t, err)

	after := GetStats()
	assert.Equal(t, before.Pipeline.Runs+1, after.Pipeline.Runs)
	assert.Equal(t, before.Pipeline.Passes+1, after.Pipeline.Passes)
	assert.Equal(t, before.Codec.Encoded+1, after.Codec.Encoded)
	assert.Equal(t, before.Codec.Decoded+1, after.Codec.Decoded)
}

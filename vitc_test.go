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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitlang/vitc/internal/opts"
	"github.com/vitlang/vitc/ir"
	"github.com/vitlang/vitc/ssa"
	"github.com/vitlang/vitc/vitbc"
)

func absFunc() *ir.Func {
	fn := ir.NewFunc("abs", 1)
	b := ir.NewBuilder(fn)
	neg := b.NewBlock()
	exit := b.NewBlock()
	c := b.Binary(ir.OpLt, ir.V(0), ir.I(0))
	b.Branch(ir.V(c), neg, exit)
	b.At(neg)
	n := b.Unary(ir.OpNeg, ir.V(0))
	b.Jump(exit)
	b.At(exit)
	r := b.Phi(ir.Incoming{From: fn.Entry(), Arg: ir.V(0)}, ir.Incoming{From: neg, Arg: ir.V(n)})
	b.Return(ir.V(r))
	return fn
}

func constFunc() *ir.Func {
	fn := ir.NewFunc("five", 0)
	b := ir.NewBuilder(fn)
	x := b.Int(2)
	y := b.Int(3)
	s := b.Binary(ir.OpAdd, ir.V(x), ir.V(y))
	b.Return(ir.V(s))
	return fn
}

func TestOptions_Build(t *testing.T) {
	o := buildOptions([]Option{
		WithCompressCode(true),
		WithCompressLevel(9),
		WithVerify(false),
		WithFoldThroughCalls(false),
		WithMaxSimplifyRounds(3),
	})
	assert.True(t, o.CompressCode)
	assert.Equal(t, 9, o.CompressLevel)
	assert.False(t, o.VerifyPasses)
	assert.False(t, o.FoldThroughCalls)
	assert.Equal(t, 3, o.MaxSimplifyRounds)
	assert.True(t, o.CanCompress())
	noLevel := buildOptions([]Option{WithCompressCode(true), WithCompressLevel(0)})
	assert.False(t, noLevel.CanCompress())
}

func TestOptions_InvalidValues(t *testing.T) {
	assert.Panics(t, func() { WithCompressLevel(10) })
	assert.Panics(t, func() { WithCompressLevel(-2) })
	assert.Panics(t, func() { WithMaxSimplifyRounds(-1) })
	assert.Panics(t, func() { SetDefaultCompressLevel(11) })
}

func TestOptions_SetDefaults(t *testing.T) {
	old := SetDefaultCompressLevel(1)
	defer SetDefaultCompressLevel(old)
	assert.Equal(t, 1, opts.GetDefaultOptions().CompressLevel)
	assert.Equal(t, 1, SetDefaultCompressLevel(1))

	oldv := SetDefaultVerifyPasses(false)
	defer SetDefaultVerifyPasses(oldv)
	assert.False(t, opts.GetDefaultOptions().VerifyPasses)

	oldr := SetDefaultMaxSimplifyRounds(2)
	defer SetDefaultMaxSimplifyRounds(oldr)
	assert.Equal(t, 2, opts.GetDefaultOptions().MaxSimplifyRounds)
}

func TestNewPipeline(t *testing.T) {
	pm := NewPipeline()
	names := make([]string, 0, len(pm.Passes()))
	for _, p := range pm.Passes() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"simplify-cfg", "constprop", "dce", "simplify-cfg"}, names)
}

func TestOptimize(t *testing.T) {
	fn := constFunc()
	rep, err := Optimize(fn)
	require.NoError(t, err)
	require.Len(t, rep.Passes, 4)
	require.NoError(t, ir.Verify(fn))
	assert.Equal(t, ""+
		"func five(0) {\n"+
		"bb_0:\n"+
		"    return 5\n"+
		"}\n",
		fn.String(),
	)
}

func TestCompile_FoldsConstants(t *testing.T) {
	buf, err := Compile(constFunc())
	require.NoError(t, err)
	m, err := vitbc.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, m.Ints)
	require.NotEmpty(t, m.Names)
	assert.Equal(t, "five", m.Names[0])
	require.NoError(t, vitbc.Validate(m))
}

func TestCompile_Compressed(t *testing.T) {
	raw, err := Compile(absFunc())
	require.NoError(t, err)
	packed, err := Compile(absFunc(), WithCompressCode(true), WithCompressLevel(9))
	require.NoError(t, err)
	m1, err := vitbc.Decode(raw, vitbc.WithCodeMode(vitbc.CodeRaw))
	require.NoError(t, err)
	m2, err := vitbc.Decode(packed)
	require.NoError(t, err)
	assert.Equal(t, m1.Code, m2.Code)
	assert.Equal(t, m1.Names, m2.Names)
}

func TestCompile_InvalidInput(t *testing.T) {
	fn := absFunc()
	fn.Block(1).Preds = nil
	_, err := Compile(fn, WithVerify(true))
	require.Error(t, err)
	var ce CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "abs", ce.Func)
	assert.Equal(t, "optimize", ce.Stage)
	var pe ssa.PassError
	require.True(t, errors.As(err, &pe))
	assert.Empty(t, pe.Pass)
}

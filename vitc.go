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
	"github.com/vitlang/vitc/internal/opts"
	"github.com/vitlang/vitc/ir"
	"github.com/vitlang/vitc/ssa"
	"github.com/vitlang/vitc/vitbc"
)

func buildOptions(options []Option) opts.Options {
	ret := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&ret)
	}
	return ret
}

func newPipeline(o opts.Options) *ssa.PassManager {
	return ssa.NewPassManager(ssa.WithVerify(o.VerifyPasses)).
		Add(ssa.SimplifyCfg{MaxRounds: o.MaxSimplifyRounds}).
		Add(ssa.ConstProp{FoldThroughCalls: o.FoldThroughCalls}).
		Add(ssa.DeadCodeElim{}).
		Add(ssa.SimplifyCfg{MaxRounds: o.MaxSimplifyRounds})
}

// NewPipeline creates the standard pass pipeline: CFG simplification,
// constant propagation, dead code elimination, and CFG simplification again
// to clean up the blocks emptied by the other passes.
func NewPipeline(options ...Option) *ssa.PassManager {
	return newPipeline(buildOptions(options))
}

// Optimize runs the standard pass pipeline over p.
func Optimize(p ssa.Program, options ...Option) (*ssa.PassReport, error) {
	return NewPipeline(options...).RunModule(p)
}

// Compile optimizes fn, lowers it into a VITBC module and encodes it.
func Compile(fn *ir.Func, options ...Option) ([]byte, error) {
	o := buildOptions(options)

	/* run the optimizer */
	if _, err := newPipeline(o).RunModule(fn); err != nil {
		return nil, CompileError{Func: fn.Name, Stage: "optimize", Err: err}
	}

	/* lower into VM code */
	mod, err := ir.Lower(fn)
	if err != nil {
		return nil, CompileError{Func: fn.Name, Stage: "lower", Err: err}
	}

	/* the code must be structurally valid */
	if err = vitbc.Validate(mod); err != nil {
		return nil, CompileError{Func: fn.Name, Stage: "validate", Err: err}
	}

	/* encode the module */
	if o.CanCompress() {
		return vitbc.EncodeLevel(mod, o.CompressLevel), nil
	} else {
		return vitbc.Encode(mod, false), nil
	}
}

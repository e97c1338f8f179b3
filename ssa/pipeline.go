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

package ssa

import (
    `bytes`
    `fmt`

    `github.com/vitlang/vitc/internal/opts`
    `gopkg.in/yaml.v3`
)

// PipelineError occurs when a pipeline document cannot be loaded.
type PipelineError struct {
    Index  int
    Reason string
}

func (self PipelineError) Error() string {
    if self.Index < 0 {
        return "invalid pipeline: " + self.Reason
    } else {
        return fmt.Sprintf("invalid pipeline: pass #%d: %s", self.Index, self.Reason)
    }
}

type _PipelineDoc struct {
    Verify *bool           `yaml:"verify"`
    Passes []_PipelinePass `yaml:"passes"`
}

type _PipelinePass struct {
    Name             string `yaml:"name"`
    MaxRounds        *int   `yaml:"max_rounds"`
    FoldThroughCalls *bool  `yaml:"fold_through_calls"`
}

var _PassFactories = map[string]func(p _PipelinePass) (Pass, error) {
    "simplify-cfg" : newSimplifyCfg,
    "constprop"    : newConstProp,
    "dce"          : newDeadCodeElim,
}

func newSimplifyCfg(p _PipelinePass) (Pass, error) {
    if p.FoldThroughCalls != nil {
        return nil, fmt.Errorf("fold_through_calls does not apply to %s", p.Name)
    } else if p.MaxRounds == nil {
        return SimplifyCfg { MaxRounds: opts.MaxSimplifyRounds }, nil
    } else if *p.MaxRounds < 0 {
        return nil, fmt.Errorf("max_rounds must not be negative: %d", *p.MaxRounds)
    } else {
        return SimplifyCfg { MaxRounds: *p.MaxRounds }, nil
    }
}

func newConstProp(p _PipelinePass) (Pass, error) {
    if p.MaxRounds != nil {
        return nil, fmt.Errorf("max_rounds does not apply to %s", p.Name)
    } else if p.FoldThroughCalls == nil {
        return ConstProp { FoldThroughCalls: true }, nil
    } else {
        return ConstProp { FoldThroughCalls: *p.FoldThroughCalls }, nil
    }
}

func newDeadCodeElim(p _PipelinePass) (Pass, error) {
    if p.MaxRounds != nil || p.FoldThroughCalls != nil {
        return nil, fmt.Errorf("%s takes no options", p.Name)
    } else {
        return DeadCodeElim{}, nil
    }
}

// LoadPipeline builds a PassManager from a YAML document of the form:
//
//     verify: true
//     passes:
//       - name: simplify-cfg
//         max_rounds: 4
//       - name: constprop
//         fold_through_calls: false
//       - name: dce
//
// Pass names are "simplify-cfg", "constprop" and "dce". Unknown pass names,
// unknown keys and options that do not apply to a pass are rejected.
func LoadPipeline(src []byte, options ...ManagerOption) (*PassManager, error) {
    var doc _PipelineDoc
    dec := yaml.NewDecoder(bytes.NewReader(src))
    dec.KnownFields(true)

    /* decode the document */
    if err := dec.Decode(&doc); err != nil {
        return nil, PipelineError { Index: -1, Reason: err.Error() }
    }

    /* the document may override the verification, but options take precedence */
    if doc.Verify != nil {
        options = append([]ManagerOption { WithVerify(*doc.Verify) }, options...)
    }

    /* create every pass */
    pm := NewPassManager(options...)
    for i, p := range doc.Passes {
        if fn, ok := _PassFactories[p.Name]; !ok {
            return nil, PipelineError { Index: i, Reason: fmt.Sprintf("unknown pass %q", p.Name) }
        } else if pass, err := fn(p); err != nil {
            return nil, PipelineError { Index: i, Reason: err.Error() }
        } else {
            pm.Add(pass)
        }
    }

    /* all done */
    return pm, nil
}

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
    `fmt`
    `strings`

    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/encoding`
    `gonum.org/v1/gonum/graph/encoding/dot`
    `gonum.org/v1/gonum/graph/multi`
)

type _DotNode struct {
    bb    BlockID
    label string
    entry bool
}

func (self _DotNode) ID() int64     { return int64(self.bb) }
func (self _DotNode) DOTID() string { return self.bb.String() }

func (self _DotNode) Attributes() []encoding.Attribute {
    ret := []encoding.Attribute {
        { Key: "shape", Value: "box" },
        { Key: "label", Value: self.label },
    }
    if self.entry {
        ret = append(ret, encoding.Attribute { Key: "penwidth", Value: "2" })
    }
    return ret
}

type _DotLine struct {
    multi.Line
    label string
}

func (self _DotLine) ReversedLine() graph.Line {
    return _DotLine { self.Line.ReversedLine().(multi.Line), self.label }
}

func (self _DotLine) Attributes() []encoding.Attribute {
    if self.label == "" {
        return nil
    } else {
        return []encoding.Attribute {{ Key: "label", Value: self.label }}
    }
}

// DumpDot renders the control-flow graph of p in the Graphviz DOT language.
// Every block is labeled with its instructions, and the outgoing edges of
// blocks with more than one successor are labeled with the successor index.
func DumpDot(p Program, name string) ([]byte, error) {
    uid := int64(0)
    cfg := multi.NewDirectedGraph()
    nodes := make(map[BlockID]_DotNode)

    /* add all the blocks */
    for _, bb := range p.Blocks() {
        nb := _DotNode {
            bb    : bb,
            label : blockLabel(p, bb),
            entry : bb == p.Entry(),
        }
        nodes[bb] = nb
        cfg.AddNode(nb)
    }

    /* add all the edges */
    for _, bb := range p.Blocks() {
        succ := p.Succs(bb)
        for i, s := range succ {
            var ok bool
            var to _DotNode

            /* edges to blocks that do not exist are rendered as bare nodes */
            if to, ok = nodes[s]; !ok {
                to = _DotNode { bb: s, label: s.String() + " (missing)" }
                nodes[s] = to
            }

            /* label the branch edges */
            ln := _DotLine { Line: multi.Line { F: nodes[bb], T: to, UID: uid } }
            if uid++; len(succ) > 1 {
                ln.label = fmt.Sprint(i)
            }

            /* add to the graph */
            cfg.SetLine(ln)
        }
    }

    /* encode as DOT */
    return dot.MarshalMulti(cfg, name, "", "  ")
}

func blockLabel(p Program, bb BlockID) string {
    var sb strings.Builder
    sb.WriteString(bb.String())
    sb.WriteString(":")

    /* dump every instruction */
    for _, ins := range p.Instrs(bb) {
        sb.WriteString("\n")
        sb.WriteString(formatInstr(p, ins))
    }

    /* all done */
    return sb.String()
}

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
    `github.com/oleiade/lane`
)

type _Frame struct {
    bb BlockID
    it int
}

// PostOrder returns every block reachable from the entry block, each block
// after all of its DFS successors.
func PostOrder(p Program) []BlockID {
    var ret []BlockID
    var top *_Frame

    /* start from the entry */
    st := lane.NewStack()
    st.Push(&_Frame { bb: p.Entry() })
    vis := map[BlockID]bool { p.Entry(): true }

    /* scan until the stack is empty */
    for !st.Empty() {
        top = st.Head().(*_Frame)
        succ := p.Succs(top.bb)

        /* find the next unvisited successor */
        for top.it < len(succ) && vis[succ[top.it]] {
            top.it++
        }

        /* all the successors are visited, pop the current node */
        if top.it == len(succ) {
            ret = append(ret, st.Pop().(*_Frame).bb)
            continue
        }

        /* descend into the successor */
        vis[succ[top.it]] = true
        st.Push(&_Frame { bb: succ[top.it] })
    }

    /* all done */
    return ret
}

// ReversePostOrder returns every block reachable from the entry block, each
// block before its successors except along back edges.
func ReversePostOrder(p Program) []BlockID {
    ret := PostOrder(p)
    blockreverse(ret)
    return ret
}

// Reachable returns the set of blocks reachable from the entry block.
func Reachable(p Program) map[BlockID]bool {
    po := PostOrder(p)
    ret := make(map[BlockID]bool, len(po))

    /* mark every block */
    for _, bb := range po {
        ret[bb] = true
    }
    return ret
}

func blockreverse(v []BlockID) {
    for i, j := 0, len(v) - 1; i < j; i, j = i + 1, j - 1 {
        v[i], v[j] = v[j], v[i]
    }
}

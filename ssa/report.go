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
    `text/tabwriter`
    `time`
)

// PassReport is the accumulated statistics of one pipeline run.
type PassReport struct {
    Passes  []PassStats
    Elapsed time.Duration
}

// Total sums the counters of every pass.
func (self *PassReport) Total() (ret PassStats) {
    ret.Name = "total"
    for _, p := range self.Passes {
        ret.Visited += p.Visited
        ret.Modified += p.Modified
        ret.Removed += p.Removed
        ret.Elapsed += p.Elapsed
        ret.Invalidated = ret.Invalidated.Merge(p.Invalidated)
    }
    return
}

// Find returns the statistics of the first pass with the given name.
func (self *PassReport) Find(name string) (PassStats, bool) {
    for _, p := range self.Passes {
        if p.Name == name {
            return p, true
        }
    }
    return PassStats{}, false
}

func (self *PassReport) String() string {
    var sb strings.Builder
    tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', tabwriter.AlignRight)

    /* header line */
    fmt.Fprintln(tw, "pass\tvisited\tmodified\tremoved\tinvalidated\telapsed\t")
    self.row(tw, PassStats{})

    /* one line per pass, and the total */
    for _, p := range self.Passes {
        self.row(tw, p)
    }

    /* the total line */
    tot := self.Total()
    tot.Elapsed = self.Elapsed
    self.row(tw, tot)

    /* flush the table */
    _ = tw.Flush()
    return sb.String()
}

func (self *PassReport) row(tw *tabwriter.Writer, p PassStats) {
    if p.Name == "" {
        fmt.Fprintln(tw, "----\t-------\t--------\t-------\t-----------\t-------\t")
    } else {
        fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t\n", p.Name, p.Visited, p.Modified, p.Removed, p.Invalidated, p.Elapsed)
    }
}

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

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vitlang/vitc/vitbc"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check the checksum, structure and code of modules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			w := cmd.OutOrStdout()

			for _, path := range args {
				if err := verifyFile(opts, path); err != nil {
					failed++
					fmt.Fprintf(w, "%s %s: %v\n", color.RedString("FAIL"), path, err)
				} else {
					fmt.Fprintf(w, "%s %s\n", color.GreenString("ok"), path)
				}
			}

			if failed != 0 {
				return fmt.Errorf("%d of %d module(s) failed verification", failed, len(args))
			}
			return nil
		},
	}
}

func verifyFile(opts *RootOptions, path string) error {
	m, err := readModule(opts, path)
	if err != nil {
		return err
	}
	return vitbc.Validate(m)
}

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

	"github.com/spf13/cobra"
	"github.com/vitlang/vitc"
	"github.com/vitlang/vitc/vitbc"
)

// RepackOptions holds the flags of the repack command.
type RepackOptions struct {
	Output   string
	Compress bool
	Level    int
}

// NewRepackCommand creates the repack command.
func NewRepackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RepackOptions{}

	cmd := &cobra.Command{
		Use:   "repack <file>",
		Short: "Re-encode a module, optionally compressing its CODE section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepack(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: rewrite in place)")
	cmd.Flags().BoolVar(&opts.Compress, "compress", false, "deflate the CODE section")
	cmd.Flags().IntVar(&opts.Level, "level", 6, "zlib compression level (-1..9)")
	return cmd
}

func runRepack(rootOpts *RootOptions, opts *RepackOptions, path string, cmd *cobra.Command) error {
	if opts.Level < -1 || opts.Level > 9 {
		return fmt.Errorf("invalid compression level: %d", opts.Level)
	}

	/* decode and check the input */
	m, err := readModule(rootOpts, path)
	if err != nil {
		return err
	}
	if err = vitbc.Validate(m); err != nil {
		return err
	}

	/* pick the output */
	out := opts.Output
	if out == "" {
		out = path
	}

	/* re-encode with the requested level */
	old := vitc.SetDefaultCompressLevel(opts.Level)
	defer vitc.SetDefaultCompressLevel(old)
	if err = vitbc.WriteFile(out, m, opts.Compress); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes of code)\n", out, len(m.Code))
	return nil
}

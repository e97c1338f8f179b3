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
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vitlang/vitc/vitbc"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(opts *RootOptions) *cobra.Command {
	var disasm bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the sections of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readModule(opts, args[0])
			if err != nil {
				return err
			}
			return printModule(cmd.OutOrStdout(), m, disasm)
		},
	}

	cmd.Flags().BoolVarP(&disasm, "disasm", "d", false, "disassemble the CODE section")
	return cmd
}

func printModule(w io.Writer, m *vitbc.Module, disasm bool) error {
	head := color.New(color.FgCyan, color.Bold)
	head.Fprintf(w, "version")
	fmt.Fprintf(w, " %d, checksum %#08x\n", m.Version, m.Checksum)

	if len(m.Ints) != 0 {
		head.Fprintln(w, "ints")
		for i, v := range m.Ints {
			fmt.Fprintf(w, "  i#%d = %d\n", i, v)
		}
	}

	if len(m.Floats) != 0 {
		head.Fprintln(w, "floats")
		for i, v := range m.Floats {
			fmt.Fprintf(w, "  f#%d = %s\n", i, strconv.FormatFloat(v, 'g', -1, 64))
		}
	}

	if len(m.Strings) != 0 {
		head.Fprintln(w, "strings")
		for i, v := range m.Strings {
			fmt.Fprintf(w, "  s#%d = %q\n", i, v)
		}
	}

	if len(m.Data) != 0 {
		head.Fprintln(w, "data")
		fmt.Fprintf(w, "  %d bytes\n", len(m.Data))
	}

	if len(m.Names) != 0 {
		head.Fprintln(w, "names")
		for i, v := range m.Names {
			fmt.Fprintf(w, "  %d: %s\n", i, v)
		}
	}

	if len(m.Code) != 0 {
		head.Fprintln(w, "code")
		fmt.Fprintf(w, "  %d bytes\n", len(m.Code))
		if disasm {
			dis, err := vitbc.Disassemble(m.Code)
			if err != nil {
				return err
			}
			fmt.Fprint(w, dis)
		}
	}
	return nil
}

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
	"github.com/vitlang/vitc/ssa"
	"github.com/vitlang/vitc/vitbc"
	"go.uber.org/zap"
)

// RootOptions holds the global flags of every command.
type RootOptions struct {
	Verbose bool
	NoColor bool
	Mode    string
}

var codeModes = map[string]vitbc.CodeMode{
	"auto":       vitbc.CodeAuto,
	"raw":        vitbc.CodeRaw,
	"compressed": vitbc.CodeCompressed,
}

func (self *RootOptions) codeMode() (vitbc.CodeMode, error) {
	if mode, ok := codeModes[self.Mode]; !ok {
		return 0, fmt.Errorf("invalid code mode %q: must be one of auto, raw or compressed", self.Mode)
	} else {
		return mode, nil
	}
}

// NewRootCommand creates the root command of the tool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "vitbc",
		Short:         "Inspect, verify and repack VITBC modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.NoColor {
				color.NoColor = true
			}
			if _, err := opts.codeMode(); err != nil {
				return err
			}
			if opts.Verbose {
				log, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				vitbc.SetLogger(log)
				ssa.SetLogger(log)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log codec activity to stderr")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&opts.Mode, "mode", "auto", "CODE payload mode (auto|raw|compressed)")

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewRepackCommand(opts))
	return cmd
}

func readModule(opts *RootOptions, path string) (*vitbc.Module, error) {
	mode, err := opts.codeMode()
	if err != nil {
		return nil, err
	}
	return vitbc.ReadFile(path, vitbc.WithCodeMode(mode))
}

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
	"fmt"
)

// CompileError occurs when a function fails one of the compilation stages.
type CompileError struct {
	Func  string
	Stage string
	Err   error
}

func (self CompileError) Error() string {
	return fmt.Sprintf("vitc: cannot compile %s: %s: %v", self.Func, self.Stage, self.Err)
}

func (self CompileError) Unwrap() error {
	return self.Err
}

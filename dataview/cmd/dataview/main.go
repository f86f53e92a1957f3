// Copyright 2024 The dataviews Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// dataview creates, inspects and materializes view definitions.
package main

import (
	"fmt"
	"os"

	"github.com/clane9/dataviews/pkg/log"
)

func main() {
	defer log.Flush()
	defer log.HandlePanic()
	if err := newApp().execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		log.Flush()
		os.Exit(1)
	}
}

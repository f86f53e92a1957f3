// Copyright 2019 Anapaya Systems
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

package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// CtxMap contains the context for sample generation.
type CtxMap map[string]string

// sampleIndent is prepended to every non-empty line of a table block.
const sampleIndent = "    "

// WriteSample writes the samples to dst in order. Samplers that are
// TableSamplers are written as a [path.name] table with their body
// indented below the header; other samplers are written verbatim. It panics
// if an error occurs.
func WriteSample(dst io.Writer, path Path, ctx CtxMap, samplers ...Sampler) {
	for _, sampler := range samplers {
		var body bytes.Buffer
		ts, isTable := sampler.(TableSampler)
		if !isTable {
			sampler.Sample(&body, path, ctx)
			WriteString(dst, body.String())
			continue
		}
		tablePath := path.Extend(ts.ConfigName())
		ts.Sample(&body, tablePath, ctx)
		WriteString(dst, "\n["+strings.Join(tablePath, ".")+"]")
		WriteString(dst, indentLines(body.String()))
	}
}

// WriteString writes the string to dst. It panics if an error occurs.
func WriteString(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil {
		panic(fmt.Sprintf("Unable to write sample err=%s", err))
	}
}

// indentLines indents every non-empty line of s and terminates each line
// with a newline.
func indentLines(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line != "" {
			b.WriteString(sampleIndent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

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

package formats

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/clane9/dataviews/pkg/private/serrors"
	"github.com/clane9/dataviews/pkg/view/op"
)

// text reads files as a string. Several inputs are concatenated.
//
// Arguments:
//   - trim: strip leading and trailing white space. Default false.
type text struct {
	trim bool
}

func newText(args op.Args) (op.Format, error) {
	trim, err := args.Bool("trim", false)
	if err != nil {
		return nil, err
	}
	return text{trim: trim}, nil
}

func (t text) Read(ctx context.Context, inputs ...any) (any, error) {
	paths, err := pathInputs(inputs)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := readFile(p)
		if err != nil {
			return nil, err
		}
		sb.Write(raw)
	}
	if t.trim {
		return strings.TrimSpace(sb.String()), nil
	}
	return sb.String(), nil
}

func (t text) Write(_ context.Context, data any, path string) error {
	switch d := data.(type) {
	case string:
		return writeFile(path, []byte(d), 0644)
	case []byte:
		return writeFile(path, d, 0644)
	default:
		return dataError("string", data)
	}
}

// rawBytes reads a single file as []byte.
//
// Arguments:
//   - mode: the permission bits of written files, as an integer or as an
//     octal string such as "0640". Default 0644.
type rawBytes struct {
	mode os.FileMode
}

func newBytes(args op.Args) (op.Format, error) {
	if s, ok := args["mode"].(string); ok {
		mode, err := strconv.ParseUint(s, 8, 32)
		if err != nil {
			return nil, serrors.JoinNoStack(op.ErrInvalidArgument, err, "arg", "mode")
		}
		return rawBytes{mode: os.FileMode(mode) & os.ModePerm}, nil
	}
	mode, err := args.Int("mode", 0644)
	if err != nil {
		return nil, err
	}
	return rawBytes{mode: os.FileMode(mode) & os.ModePerm}, nil
}

func (b rawBytes) Read(_ context.Context, inputs ...any) (any, error) {
	p, err := singlePath(inputs)
	if err != nil {
		return nil, err
	}
	return readFile(p)
}

func (b rawBytes) Write(_ context.Context, data any, path string) error {
	switch d := data.(type) {
	case []byte:
		return writeFile(path, d, b.mode)
	case string:
		return writeFile(path, []byte(d), b.mode)
	default:
		return dataError("[]byte", data)
	}
}

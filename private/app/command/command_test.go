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

package command_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clane9/dataviews/private/app/command"
	"github.com/clane9/dataviews/private/config"
)

type testSampler struct{}

func (testSampler) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, "\nkey = \"value\"\n")
}

func (testSampler) ConfigName() string {
	return "block"
}

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "tool", Short: "A tool"}
	root.AddCommand(
		&cobra.Command{Use: "run", Short: "Run it", Run: func(*cobra.Command, []string) {}},
		command.NewSample(root, testSampler{}),
		command.NewGendocs(root),
		command.NewCompletion(root),
	)
	return root
}

func TestSample(t *testing.T) {
	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"sample"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "\n[block]\n    key = \"value\"\n", out.String())
}

func TestGendocs(t *testing.T) {
	root := newRoot()
	dir := filepath.Join(t.TempDir(), "docs")
	root.SetArgs([]string{"gendocs", dir})
	require.NoError(t, root.Execute())

	for _, name := range []string{"tool.md", "tool_run.md", "tool_sample.md"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	// Hidden commands are not documented.
	_, err := os.Stat(filepath.Join(dir, "tool_gendocs.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	raw, err := os.ReadFile(filepath.Join(dir, "tool.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[tool run](tool_run.md)")
}

func TestCompletion(t *testing.T) {
	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "--shell", "zsh"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "tool")

	root = newRoot()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "--shell", "tcsh"})
	assert.Error(t, root.Execute())
}

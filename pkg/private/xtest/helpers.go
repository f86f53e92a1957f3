// Copyright 2018 ETH Zurich
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

// Package xtest contains helpers for tests.
package xtest

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// UpdateGoldenFiles registers the '-update' flag for the test.
//
// Golden file tests check this flag to decide whether to regenerate the
// files in testdata instead of comparing against them:
//
//	go test ./path/to/package -update
//
// The flag should be registered as a package global variable:
//
//	var update = xtest.UpdateGoldenFiles()
func UpdateGoldenFiles() *bool {
	return flag.Bool("update", false, "set to regenerate the golden files")
}

// AssertGolden compares got with testdata/baseName. If update is set, the
// golden file is rewritten with got first.
func AssertGolden(t testing.TB, update bool, baseName string, got []byte) bool {
	t.Helper()

	if update {
		MustWriteToFile(t, got, baseName)
	}
	return assert.Equal(t, string(MustReadFromFile(t, baseName)), string(got))
}

// MustWriteToFile writes b to testdata/baseName. On errors, t.Fatal() is
// called.
func MustWriteToFile(t testing.TB, b []byte, baseName string) {
	t.Helper()

	name := ExpandPath(baseName)
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, b, 0644); err != nil {
		t.Fatal(err)
	}
}

// MustReadFromFile reads testdata/baseName and returns the raw content. On
// errors, t.Fatal() is called.
func MustReadFromFile(t testing.TB, baseName string) []byte {
	t.Helper()

	b, err := os.ReadFile(ExpandPath(baseName))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// ExpandPath returns testdata/file.
func ExpandPath(file string) string {
	return filepath.Join("testdata", file)
}

// SanitizedName sanitizes the test name such that it can be used as a file name.
func SanitizedName(t testing.TB) string {
	return strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_").Replace(t.Name())
}

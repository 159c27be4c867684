// Copyright 2026 The ideconf Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scopetest is a golden-file table-test harness over .txtar
// archives: each archive holds one script document plus the expected
// ("golden") output for one or more named queries, keyed by out/<name>.
// Set UPDATE_GOLDEN=1 to rewrite the golden files from actual output
// instead of failing the diff.
package scopetest

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"golang.org/x/tools/txtar"
)

// UpdateGoldenFiles, when true, causes Run to rewrite each archive's
// golden sections with whatever the test callback actually produced,
// instead of failing the comparison.
var UpdateGoldenFiles = os.Getenv("UPDATE_GOLDEN") != ""

// TxTarTest runs every .txtar archive under Root through a callback.
type TxTarTest struct {
	// Root is the directory Run walks for .txtar files.
	Root string
	// Name derives the golden file's location within an archive:
	// out/<Name>.
	Name string
	// Skip maps a test name to a reason to skip it.
	Skip map[string]string
	// ToDo maps a test name to a reason it's expected to fail for now;
	// such tests are skipped with that reason.
	ToDo map[string]string
}

// Test is a single archive's test: an embedded *testing.T for reporting,
// the parsed archive, and the accumulated output awaiting comparison
// against the archive's golden section.
type Test struct {
	*testing.T

	Archive *txtar.Archive
	Dir     string

	prefix   string
	buf      *bytes.Buffer
	outFiles []outFile
	hasGold  bool
}

type outFile struct {
	name string
	buf  *bytes.Buffer
}

// Write implements io.Writer, appending to the main golden output
// (out/<Name>).
func (t *Test) Write(b []byte) (int, error) {
	if t.buf == nil {
		t.buf = &bytes.Buffer{}
		t.outFiles = append(t.outFiles, outFile{t.prefix, t.buf})
	}
	return t.buf.Write(b)
}

// Writer returns a writer whose contents are checked against
// out/<Name>/<name> (or out/<Name> itself, if name is empty).
func (t *Test) Writer(name string) io.Writer {
	full := t.prefix
	if name != "" {
		full = path.Join(t.prefix, name)
	}
	for _, f := range t.outFiles {
		if f.name == full {
			return f.buf
		}
	}
	w := &bytes.Buffer{}
	t.outFiles = append(t.outFiles, outFile{full, w})
	if full == t.prefix {
		t.buf = w
	}
	return w
}

// Script returns the contents of the archive's script document: the file
// named "script.yaml", or failing that the sole file not under out/.
func (t *Test) Script() []byte {
	t.Helper()
	for _, f := range t.Archive.Files {
		if f.Name == "script.yaml" {
			return f.Data
		}
	}
	for _, f := range t.Archive.Files {
		if !strings.HasPrefix(f.Name, "out/") {
			return f.Data
		}
	}
	t.Fatal("txtar archive has no script document")
	return nil
}

// HasTag reports whether the archive's comment section declares "#key".
func (t *Test) HasTag(key string) bool {
	prefix := []byte("#" + key)
	s := bufio.NewScanner(bytes.NewReader(t.Archive.Comment))
	for s.Scan() {
		if bytes.Equal(bytes.TrimSpace(s.Bytes()), prefix) {
			return true
		}
	}
	return false
}

// ExecLine returns the text following an "exec " prefix in the archive's
// comment section, or "" if no such line exists. It lets a txtar fixture
// declare the exact shell-style invocation a driver test should replay,
// the same trick the teacher's own script fixtures use for their "exec
// cue ..." lines.
func (t *Test) ExecLine() string {
	s := bufio.NewScanner(bytes.NewReader(t.Archive.Comment))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if rest, ok := strings.CutPrefix(line, "exec "); ok {
			return rest
		}
	}
	return ""
}

// Run walks every .txtar file under x.Root, running f once per archive
// as a subtest named after the archive's path relative to testdata/.
func (x *TxTarTest) Run(t *testing.T, f func(tc *Test)) {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	err = filepath.WalkDir(x.Root, func(fullpath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(fullpath) != ".txtar" {
			return nil
		}

		str := filepath.ToSlash(fullpath)
		idx := strings.Index(str, "/testdata/")
		testName := str
		if idx >= 0 {
			testName = str[idx+len("/testdata/") : len(str)-len(".txtar")]
		}

		t.Run(testName, func(t *testing.T) {
			a, err := txtar.ParseFile(fullpath)
			if err != nil {
				t.Fatalf("parsing txtar file: %v", err)
			}
			tc := &Test{
				T:       t,
				Archive: a,
				Dir:     filepath.Dir(filepath.Join(wd, fullpath)),
				prefix:  path.Join("out", x.Name),
			}

			if tc.HasTag("skip") {
				t.Skip()
			}
			if msg, ok := x.Skip[testName]; ok {
				t.Skip(msg)
			}
			if msg, ok := x.ToDo[testName]; ok {
				t.Skip(msg)
			}

			for _, af := range a.Files {
				if af.Name == tc.prefix || strings.HasPrefix(af.Name, tc.prefix+"/") {
					tc.hasGold = true
					break
				}
			}

			f(tc)

			index := make(map[string]int, len(a.Files))
			for i, af := range a.Files {
				index[af.Name] = i
			}

			k := len(a.Files)
			for _, sub := range tc.outFiles {
				if i, ok := index[sub.name]; ok {
					k = i
					break
				}
			}
			files := a.Files[:k:k]

			update := false
			for _, sub := range tc.outFiles {
				result := sub.buf.Bytes()
				files = append(files, txtar.File{Name: sub.name})
				gold := &files[len(files)-1]

				if i, ok := index[sub.name]; ok {
					gold.Data = a.Files[i].Data
					delete(index, sub.name)
					if bytes.Equal(gold.Data, result) {
						continue
					}
				}

				if UpdateGoldenFiles {
					update = true
					gold.Data = result
					continue
				}

				if desc := pretty.Diff(string(gold.Data), string(result)); len(desc) > 0 {
					t.Errorf("result for %s differs from golden (want -> got):\n%s", sub.name, strings.Join(desc, "\n"))
				}
			}

			for _, af := range a.Files[k:] {
				if _, ok := index[af.Name]; ok {
					files = append(files, af)
				}
			}
			a.Files = files

			if update {
				if err := os.WriteFile(fullpath, txtar.Format(a), 0o644); err != nil {
					t.Fatal(err)
				}
			}
		})
		return nil
	})

	if err != nil {
		t.Fatal(err)
	}
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"

	istanbul "github.com/canyon-project/istanbul-sourcemap"
	"github.com/canyon-project/istanbul-sourcemap/coverage"
	"github.com/canyon-project/istanbul-sourcemap/internal/config"
	"github.com/canyon-project/istanbul-sourcemap/internal/testingx"
)

type result struct {
	stdout string
	stderr string
	code   int
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	a := &app{log: log.New()}
	cmd := a.newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	code := handleError(cmd.ExecuteContext(context.Background()), &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// bundle returns coverage of dist/app.js whose single statement maps to
// src/app.ts, with the given hit count.
func bundle(t *testing.T, hits int) *coverage.FileCoverage {
	t.Helper()
	fc := coverage.NewFileCoverage("dist/app.js")
	fc.InputSourceMap = testingx.NewSourceMap("app.js").
		Map(1, 0, "src/app.ts", 2, 0).
		Map(1, 8, "src/app.ts", 2, 6).
		Build()
	fc.StatementMap["0"] = testingx.Loc(1, 0, 1, 8)
	fc.S["0"] = hits
	return fc
}

func broken(t *testing.T) *coverage.FileCoverage {
	t.Helper()
	fc := bundle(t, 1)
	fc.Path = "dist/broken.js"
	fc.InputSourceMap.Mappings = "AAAA,!"
	return fc
}

func marshal(t *testing.T, fcs ...*coverage.FileCoverage) []byte {
	t.Helper()
	m := coverage.CoverageMap{}
	for _, fc := range fcs {
		m[fc.Path] = fc
	}
	return testingx.Must[[]byte](t)(coverage.Marshal(m))
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %s", path, err)
	}
	return path
}

func parse(t *testing.T, data []byte) coverage.CoverageMap {
	t.Helper()
	return testingx.Must[coverage.CoverageMap](t)(coverage.Parse(data))
}

func statementHits(fc *coverage.FileCoverage) map[string]int {
	if fc == nil {
		return nil
	}
	return fc.S
}

func TestTransform(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	dir := t.TempDir()

	t.Run("stdin to stdout", func(t *testing.T) {
		res := execute(t, string(marshal(t, bundle(t, 2))), "transform")
		if res.code != 0 {
			t.Fatalf("Got: exit code %d, stderr: %s. Want: 0.", res.code, res.stderr)
		}
		got := parse(t, []byte(res.stdout))
		if diff := cmp.Diff(map[string]int{"0": 2}, statementHits(got["src/app.ts"])); diff != "" {
			t.Errorf("Remapped statements differ (-want,+got):\n%s", diff)
		}
	})

	t.Run("files combined", func(t *testing.T) {
		plain := coverage.NewFileCoverage("lib/plain.js")
		in1 := writeFile(t, dir, "one.json", marshal(t, bundle(t, 2)))
		in2 := writeFile(t, dir, "two.json", marshal(t, bundle(t, 5), plain))
		out := filepath.Join(dir, "out.json")

		res := execute(t, "", "transform", in1, in2, "-o", out)
		if res.code != 0 {
			t.Fatalf("Got: exit code %d, stderr: %s. Want: 0.", res.code, res.stderr)
		}
		if !strings.Contains(res.stderr, "Duplicate coverage entry") {
			t.Errorf("Got: stderr %q. Want: a duplicate entry warning.", res.stderr)
		}
		got := parse(t, testingx.Must[[]byte](t)(os.ReadFile(out)))
		if diff := cmp.Diff(map[string]int{"0": 2}, statementHits(got["src/app.ts"])); diff != "" {
			t.Errorf("Got hits of the second input. Remapped statements differ (-want,+got):\n%s", diff)
		}
		if _, ok := got["lib/plain.js"]; !ok {
			t.Errorf("Got: no lib/plain.js in the output. Want: passed through.")
		}
	})

	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write(marshal(t, bundle(t, 3)))
		zw.Close()
		in := writeFile(t, dir, "in.json.gz", buf.Bytes())
		out := filepath.Join(dir, "out.json.gz")

		res := execute(t, "", "transform", in, "--output", out)
		if res.code != 0 {
			t.Fatalf("Got: exit code %d, stderr: %s. Want: 0.", res.code, res.stderr)
		}
		f := testingx.Must[*os.File](t)(os.Open(out))
		defer f.Close()
		zr := testingx.Must[*gzip.Reader](t)(gzip.NewReader(f))
		var data bytes.Buffer
		if _, err := data.ReadFrom(zr); err != nil {
			t.Fatalf("Failed to decompress output: %s", err)
		}
		got := parse(t, data.Bytes())
		if diff := cmp.Diff(map[string]int{"0": 3}, statementHits(got["src/app.ts"])); diff != "" {
			t.Errorf("Remapped statements differ (-want,+got):\n%s", diff)
		}
	})

	t.Run("decode error", func(t *testing.T) {
		res := execute(t, string(marshal(t, bundle(t, 1), broken(t))), "transform")
		if want := exitCodes[istanbul.KindDecode]; res.code != want {
			t.Errorf("Got: exit code %d. Want: %d.", res.code, want)
		}
		if !strings.Contains(res.stderr, "dist/broken.js") {
			t.Errorf("Got: stderr %q. Want: the broken file named.", res.stderr)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		res := execute(t, string(marshal(t, bundle(t, 1), broken(t))), "transform", "--lenient")
		if res.code != 0 {
			t.Fatalf("Got: exit code %d, stderr: %s. Want: 0.", res.code, res.stderr)
		}
		got := parse(t, []byte(res.stdout))
		if _, ok := got["dist/broken.js"]; !ok {
			t.Errorf("Got: no dist/broken.js in the output. Want: passed through.")
		}
	})

	t.Run("parse error", func(t *testing.T) {
		res := execute(t, "not json", "transform")
		if want := exitCodes[istanbul.KindParse]; res.code != want {
			t.Errorf("Got: exit code %d. Want: %d.", res.code, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		res := execute(t, "", "transform", filepath.Join(dir, "missing.json"))
		if want := exitCodes[istanbul.KindBoundary]; res.code != want {
			t.Errorf("Got: exit code %d. Want: %d.", res.code, want)
		}
	})
}

func TestTransform_EnvFlags(t *testing.T) {
	t.Setenv(config.EnvVar, "lenient")
	in := string(marshal(t, broken(t)))

	if res := execute(t, in, "transform"); res.code != 0 {
		t.Errorf("Got: exit code %d, stderr: %s. Want: 0 with lenient from the environment.", res.code, res.stderr)
	}
	if res := execute(t, in, "transform", "--lenient=false"); res.code != exitCodes[istanbul.KindDecode] {
		t.Errorf("Got: exit code %d. Want: the command line overriding the environment.", res.code)
	}
}

func TestCheck(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	res := execute(t, string(marshal(t, bundle(t, 1))), "check")
	if res.code != 0 {
		t.Fatalf("Got: exit code %d, stderr: %s. Want: 0.", res.code, res.stderr)
	}
	if want := "1 source map(s) OK\n"; res.stdout != want {
		t.Errorf("Got: stdout %q. Want: %q.", res.stdout, want)
	}

	other := broken(t)
	other.Path = "dist/other.js"
	res = execute(t, string(marshal(t, bundle(t, 1), broken(t), other)), "check", "--max-errors", "1")
	if res.code != 1 {
		t.Errorf("Got: exit code %d. Want: 1.", res.code)
	}
	lines := strings.Split(strings.TrimSpace(res.stderr), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "dist/broken.js") || lines[1] != "too many errors" {
		t.Errorf("Got: stderr %q. Want: the first failure, then a truncation notice.", res.stderr)
	}
}

func TestSummary(t *testing.T) {
	t.Setenv(config.EnvVar, "")

	res := execute(t, string(marshal(t, bundle(t, 1))), "summary")
	if res.code != 0 {
		t.Fatalf("Got: exit code %d, stderr: %s. Want: 0.", res.code, res.stderr)
	}
	for _, want := range []string{"src/app.ts", "1/1 (100.00%)", "0/0 (100.00%)"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("Got: summary:\n%s\nWant: it to contain %q.", res.stdout, want)
		}
	}
}

func TestVersion(t *testing.T) {
	res := execute(t, "", "version")
	if res.code != 0 {
		t.Fatalf("Got: exit code %d, stderr: %s. Want: 0.", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, istanbul.Version) {
		t.Errorf("Got: %q. Want: version %s.", res.stdout, istanbul.Version)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if res := execute(t, "", "version", "--log-level", "loud"); res.code != 1 {
		t.Errorf("Got: exit code %d. Want: 1.", res.code)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.json", marshal(t, bundle(t, 1)))

	a := &app{log: log.New()}
	a.log.SetOutput(&bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs int32
	done := make(chan error, 1)
	go func() {
		done <- a.watch(ctx, []string{in}, func() error {
			atomic.AddInt32(&runs, 1)
			return nil
		})
	}()

	waitFor := func(n int32) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for atomic.LoadInt32(&runs) < n {
			if time.Now().After(deadline) {
				t.Fatalf("Got: %d runs. Want: %d.", atomic.LoadInt32(&runs), n)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	waitFor(1)
	// The watch is registered before the first run, so this write is seen.
	writeFile(t, dir, "in.json", marshal(t, bundle(t, 2)))
	waitFor(2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Got: watch() returned error: %s. Want: no error.", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch() didn't return after cancellation.")
	}
}

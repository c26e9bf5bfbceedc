package main

import (
	"strings"
	"testing"

	"github.com/canyon-project/istanbul-sourcemap/coverage"
	"github.com/canyon-project/istanbul-sourcemap/internal/testingx"
)

func TestTransformBuffer(t *testing.T) {
	fc := coverage.NewFileCoverage("dist/app.js")
	fc.InputSourceMap = testingx.NewSourceMap("app.js").
		Map(1, 0, "src/app.ts", 1, 0).
		Build()
	fc.StatementMap["0"] = testingx.Loc(1, 0, 1, 4)
	fc.S["0"] = 1
	valid := string(testingx.Must[[]byte](t)(coverage.Marshal(coverage.CoverageMap{fc.Path: fc})))

	broken := strings.Replace(valid, fc.InputSourceMap.Mappings, "AAAA,!", 1)

	tests := []struct {
		descr  string
		input  string
		wantOK bool
		want   string
	}{{
		descr:  "remapped",
		input:  valid,
		wantOK: true,
		want:   `"src/app.ts"`,
	}, {
		descr: "invalid json",
		input: "invalid json",
	}, {
		descr: "broken source map",
		input: broken,
	}, {
		descr: "invalid utf-8",
		input: "{\"\xff\": {}}",
	}}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got, ok := transformBuffer(test.input)
			if ok != test.wantOK {
				t.Fatalf("Got: transformBuffer() ok = %v. Want: %v.", ok, test.wantOK)
			}
			if !ok && got != "" {
				t.Errorf("Got: output %q on failure. Want: empty.", got)
			}
			if !strings.Contains(got, test.want) {
				t.Errorf("Got: output %s. Want: it to contain %s.", got, test.want)
			}
		})
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFlags(t *testing.T) {
	type testFlags struct {
		Exp1     bool `flag:"exp1"`
		Exp2     bool `flag:"exp2"`
		Size     int  `flag:"size"`
		Untagged bool
	}

	tests := []struct {
		descr   string
		raw     string
		want    testFlags
		wantErr error
	}{{
		descr: "default values",
		raw:   "",
		want:  testFlags{},
	}, {
		descr: "true flag",
		raw:   "exp1=true",
		want:  testFlags{Exp1: true},
	}, {
		descr: "false flag",
		raw:   "exp1=false",
		want:  testFlags{},
	}, {
		descr: "implicit value",
		raw:   "exp1",
		want:  testFlags{Exp1: true},
	}, {
		descr: "integer flag",
		raw:   "size=128",
		want:  testFlags{Size: 128},
	}, {
		descr: "multiple flags",
		raw:   "exp1=true,exp2=true,size=3",
		want:  testFlags{Exp1: true, Exp2: true, Size: 3},
	}, {
		descr: "repeated flag",
		raw:   "exp1=false,exp1=true",
		want:  testFlags{Exp1: true},
	}, {
		descr: "spaces",
		raw:   " exp1 = true, size = 7 ",
		want:  testFlags{Exp1: true, Size: 7},
	}, {
		descr: "unknown flags",
		raw:   "Exp1=true,Untagged,Foo=true",
		want:  testFlags{},
	}, {
		descr:   "empty flag name",
		raw:     "=true",
		wantErr: ErrInvalidFormat,
	}, {
		descr:   "invalid flag value",
		raw:     "exp1=foo",
		wantErr: ErrInvalidFormat,
	}, {
		descr:   "invalid integer",
		raw:     "size",
		wantErr: ErrInvalidFormat,
	}}

	for _, test := range tests {
		t.Run(test.descr, func(t *testing.T) {
			got := testFlags{}
			err := parseFlags(test.raw, &got)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Errorf("Got: parseFlags(%q) returned error: %v. Want: %v.", test.raw, err, test.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Got: parseFlags(%q) returned error: %v. Want: no error.", test.raw, err)
				}
				if diff := cmp.Diff(test.want, got); diff != "" {
					t.Fatalf("parseFlags(%q) returned diff (-want,+got):\n%s", test.raw, diff)
				}
			}
		})
	}

	t.Run("invalid dest type", func(t *testing.T) {
		var dest string
		err := parseFlags("", &dest)
		if !errors.Is(err, ErrInvalidDest) {
			t.Fatalf("Got: parseFlags() returned error: %v. Want: %v.", err, ErrInvalidDest)
		}
	})

	t.Run("nil dest", func(t *testing.T) {
		err := parseFlags("", (*struct{})(nil))
		if !errors.Is(err, ErrInvalidDest) {
			t.Fatalf("Got: parseFlags() returned error: %v. Want: %v.", err, ErrInvalidDest)
		}
	})

	t.Run("unsupported flag type", func(t *testing.T) {
		var dest struct {
			Foo string `flag:"foo"`
		}
		err := parseFlags("foo", &dest)
		if !errors.Is(err, ErrInvalidDest) {
			t.Fatalf("Got: parseFlags() returned error: %v. Want: %v.", err, ErrInvalidDest)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("env file", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		os.Unsetenv(EnvVar)
		path := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(path, []byte(EnvVar+"=lenient,cache_size=16\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Got: Load() returned error: %v. Want: no error.", err)
		}
		if diff := cmp.Diff(Flags{Lenient: true, CacheSize: 16}, got); diff != "" {
			t.Errorf("Load() returned diff (-want,+got):\n%s", diff)
		}
	})

	t.Run("process env wins", func(t *testing.T) {
		t.Setenv(EnvVar, "verbose")
		path := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(path, []byte(EnvVar+"=lenient\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Got: Load() returned error: %v. Want: no error.", err)
		}
		if diff := cmp.Diff(Flags{Verbose: true}, got); diff != "" {
			t.Errorf("Load() returned diff (-want,+got):\n%s", diff)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		if err == nil {
			t.Errorf("Got: Load() returned no error. Want: an error for the missing file.")
		}
	})

	t.Run("malformed flags", func(t *testing.T) {
		t.Setenv(EnvVar, "lenient=maybe")
		_, err := Load()
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Got: Load() returned error: %v. Want: %v.", err, ErrInvalidFormat)
		}
	})
}

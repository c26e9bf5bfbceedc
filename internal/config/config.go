// Package config reads the option flags of the remapper from the environment.
//
// ISTANBUL_SOURCEMAP_FLAGS holds a comma-separated list such as
// "lenient,cache_size=128". Variables may also come from .env files, which
// never override variables already set in the process environment.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// EnvVar is the environment variable the flags are read from.
const EnvVar = "ISTANBUL_SOURCEMAP_FLAGS"

// DefaultEnvFile is loaded by Load when no env files are named and it exists.
const DefaultEnvFile = ".env"

var (
	// ErrInvalidDest is a kind of error returned by parseFlags() when the dest
	// argument does not meet the requirements.
	ErrInvalidDest = errors.New("invalid flag struct")
	// ErrInvalidFormat is a kind of error returned by parseFlags() when the raw
	// flag string format is not valid.
	ErrInvalidFormat = errors.New("invalid flag string format")
)

// Flags are the options that can be set from the environment.
type Flags struct {
	// Lenient skips files with undecodable source maps instead of failing.
	Lenient bool `flag:"lenient"`
	// Verbose turns on debug logging.
	Verbose bool `flag:"verbose"`
	// CacheSize is the number of decoded source maps kept for reuse.
	CacheSize int `flag:"cache_size"`
}

// Load reads env files and then parses EnvVar. Without envFiles, only
// DefaultEnvFile is tried, and only if it exists.
func Load(envFiles ...string) (Flags, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			envFiles = []string{DefaultEnvFile}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Flags{}, errors.Wrapf(err, "failed to load env files %v", envFiles)
		}
	}

	var f Flags
	if err := parseFlags(os.Getenv(EnvVar), &f); err != nil {
		return Flags{}, errors.Wrapf(err, "failed to parse %s", EnvVar)
	}
	return f, nil
}

// parseFlags parses the `raw` flags string and populates flag values in the
// `dest`.
//
// `raw` is a comma-separated flag list: `<flag1>,<flag2>,...`. Each flag may
// be either `<name>` or `<name>=<value>`. Omitting value is equivalent to
// "<name> = true". Spaces around name and value are trimmed. If the same flag
// is specified multiple times, the last instance takes effect.
//
// `dest` must be a pointer to a struct whose fields are bound to flag names
// with the `flag` field tag. Bool and int fields are supported. Flags without
// a corresponding field are ignored, so that an environment written for a
// newer version still works.
func parseFlags(raw string, dest any) error {
	ptr := reflect.ValueOf(dest)
	if ptr.Type().Kind() != reflect.Pointer || ptr.Type().Elem().Kind() != reflect.Struct {
		return errors.Wrap(ErrInvalidDest, "must be a pointer to a struct")
	}
	if ptr.IsNil() {
		return errors.Wrap(ErrInvalidDest, "must not be nil")
	}
	fields := fieldMap(ptr.Elem())

	if raw == "" {
		return nil
	}

	for _, entry := range strings.Split(raw, ",") {
		key, val, found := strings.Cut(strings.TrimSpace(entry), "=")
		key = strings.TrimSpace(key)
		if found {
			val = strings.TrimSpace(val)
		} else {
			val = "true"
		}

		if key == "" {
			return errors.Wrap(ErrInvalidFormat, "empty flag name")
		}

		field, ok := fields[key]
		if !ok {
			continue
		}
		switch field.Kind() {
		case reflect.Bool:
			b, err := strconv.ParseBool(val)
			if err != nil {
				return errors.Wrapf(ErrInvalidFormat, "can't parse %q as boolean for flag %q", val, key)
			}
			field.SetBool(b)
		case reflect.Int:
			n, err := strconv.Atoi(val)
			if err != nil {
				return errors.Wrapf(ErrInvalidFormat, "can't parse %q as integer for flag %q", val, key)
			}
			field.SetInt(int64(n))
		default:
			return errors.Wrapf(ErrInvalidDest, "unsupported type %s of flag %q", field.Type(), key)
		}
	}

	return nil
}

// fieldMap returns the fields of struct s keyed by their "flag" tag. Fields
// without the tag are left out. If several fields share a flag, the last one
// wins.
func fieldMap(s reflect.Value) map[string]reflect.Value {
	typ := s.Type()
	result := map[string]reflect.Value{}
	for i := 0; i < typ.NumField(); i++ {
		if val, ok := typ.Field(i).Tag.Lookup("flag"); ok {
			result[val] = s.Field(i)
		}
	}
	return result
}

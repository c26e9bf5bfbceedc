package coverage

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Parse decodes a coverage map from its JSON exchange format.
func Parse(data []byte) (CoverageMap, error) {
	var m CoverageMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse coverage data")
	}
	for path, fc := range m {
		if fc == nil {
			return nil, errors.Newf("failed to parse coverage data: entry %q is null", path)
		}
	}
	return m, nil
}

// Marshal encodes the coverage map as indented JSON. Map keys are emitted in
// sorted order, so the output is deterministic.
func Marshal(m CoverageMap) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(err, "failed to encode coverage data")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

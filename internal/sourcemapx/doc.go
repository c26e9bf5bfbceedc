// Package sourcemapx decodes version 3 source map mappings and answers
// generated-to-original position queries against them.
//
// The "mappings" field of a source map is a sequence of generated lines
// separated by ';'. Each line is a ','-separated list of segments, and each
// segment is a run of base64 VLQ encoded integers:
//
//   - generated column (always present);
//   - source index, original line, original column (present together or
//     not at all);
//   - name index (optional).
//
// Every value is a delta against the previous occurrence of the same field.
// The generated column restarts at zero on every line, the other four fields
// carry over across the whole table. See DecodeVLQ and DecodeMappings.
//
// Segments with only a generated column mark generated code that has no
// counterpart in any original source. They are kept in the decoded Table
// because they terminate the span of the preceding segment: a query that
// lands on one resolves to nothing rather than to the segment before it.
//
// Source maps store 0-based lines, while Istanbul positions use 1-based lines.
// Table.OriginalPosition accepts and returns Istanbul style positions and
// performs the conversion internally.
package sourcemapx

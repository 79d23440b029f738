// Package json is a second configbuild.Parser, built on encoding/json,
// demonstrating that the surface syntax is pluggable (spec: "parsing of
// the surface syntax is external to the core").
//
// Objects are walked via json.Decoder's token stream rather than decoding
// into map[string]any, since a plain map loses key insertion order
// (invariant I3 on the resulting Node requires it be preserved).
package json

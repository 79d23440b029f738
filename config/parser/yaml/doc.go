// Package yaml is a configbuild.Parser that builds a confignode.Node tree
// from one YAML document, using github.com/goccy/go-yaml.
//
// Mappings decode into yaml.MapSlice rather than map[string]any, since a
// plain Go map would not preserve key insertion order (invariant I3 on the
// resulting Node requires it). A YAML sequence of scalars becomes a
// multi-valued scalar entry; a sequence of mappings becomes a multi-valued
// subnode entry; a sequence mixing both discards the scalar elements, since
// a Node's scalars and subnodes under one key are separate containers.
package yaml

// Package configbuild turns a caller-supplied sequence of raw document
// strings into one merged configuration tree (spec §4.3), then runs the
// two post-build rewriting passes before handing the frozen root to the
// read facade.
package configbuild

import (
	"log/slog"

	"github.com/go-dconfig/dconfig/configerr"
	"github.com/go-dconfig/dconfig/configexpand"
	"github.com/go-dconfig/dconfig/confignode"
)

// Parser is the external surface-syntax collaborator (spec §6): it turns
// one raw document's bytes into a Node tree whose subnodes and scalars
// mirror the document's nested objects and leaf values, preserving
// insertion order and turning arrays into multi-element sequences.
type Parser interface {
	Parse(data []byte) (*confignode.Node, error)
}

// Options configures the Node Expander that runs as part of Build.
type Options struct {
	Separator confignode.Separator
	NodeExpander configexpand.NodeExpanderOptions
}

// DefaultOptions returns the spec's default separator ('.') and default
// Node Expander prefix ("node") with no Level configured: the current
// marker is disabled and the up marker is a bare repeated separator.
func DefaultOptions() Options {
	return Options{
		Separator:    confignode.DefaultSeparator,
		NodeExpander: configexpand.NodeExpanderOptions{Prefix: "node"},
	}
}

// Parse parses every document with parser, in the caller-supplied order,
// returning one tree per document. A failure aborts with a ParseError
// identifying the offending document's position.
func Parse(parser Parser, documents []string) ([]*confignode.Node, error) {
	trees := make([]*confignode.Node, len(documents))

	for i, doc := range documents {
		tree, err := parser.Parse([]byte(doc))
		if err != nil {
			return nil, &configerr.ParseError{DocumentIndex: i, Err: err}
		}

		trees[i] = tree
	}

	return trees, nil
}

// Merge folds trees left-to-right into the first tree via Node.Overwrite,
// so later documents win (spec §4.3). An empty input yields an empty root.
// The first tree is mutated in place and returned; callers that still need
// the original should Clone it first.
func Merge(trees ...*confignode.Node) *confignode.Node {
	if len(trees) == 0 {
		return confignode.New()
	}

	root := trees[0]
	for _, other := range trees[1:] {
		root.Overwrite(other)
	}

	return root
}

// Build parses every document, merges them left-to-right, then runs the
// Parameter Expander followed by the Node Expander, returning the frozen
// root ready for config.New. opts.Separator governs path splitting
// throughout; opts.NodeExpander configures the Node Expander's token
// grammar (spec §4.5, §6).
func Build(parser Parser, documents []string, opts Options) (*confignode.Node, error) {
	trees, err := Parse(parser, documents)
	if err != nil {
		return nil, err
	}

	root := Merge(trees...)

	configexpand.Parameters(root, opts.Separator)

	if err := configexpand.Nodes(root, opts.Separator, opts.NodeExpander); err != nil {
		return nil, err
	}

	slog.Debug("configuration built", slog.Int("documents", len(documents)))

	return root, nil
}

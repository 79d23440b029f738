package configexpand

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/go-dconfig/dconfig/configerr"
	"github.com/go-dconfig/dconfig/confignode"
)

// replacement is one pending scalar-for-subnode graft, accumulated per
// owning parent before being applied (spec §4.5 "Application").
type replacement struct {
	key   string
	index int
	node  *confignode.Node
}

// Nodes runs the Node Expander over the tree rooted at root: every scalar
// whose entire (trimmed) value is a node-graft token is replaced by the
// subtree the token references. Replacements are accumulated per owning
// parent, then applied in descending-index order so earlier erasures never
// invalidate later ones, and the resolved subnodes are inserted under the
// same key (spec §4.5 "Application"). Returns an
// UnresolvedNodeReferenceError for the first token that cannot be resolved
// by any scope, by the root/parent fallback, or by the base-node fallback.
func Nodes(root *confignode.Node, sep confignode.Separator, opts NodeExpanderOptions) error {
	v := &nodeVisitor{
		root:    root,
		sep:     sep,
		opts:    opts,
		pending: make(map[*confignode.Node][]replacement),
	}

	root.Accept(v)

	if v.err != nil {
		return v.err
	}

	for parent, repls := range v.pending {
		sort.Slice(repls, func(i, j int) bool { return repls[i].index > repls[j].index })

		for _, r := range repls {
			if err := parent.EraseScalar(r.key, r.index); err != nil {
				return err
			}
		}

		sort.Slice(repls, func(i, j int) bool { return repls[i].index < repls[j].index })

		for _, r := range repls {
			parent.SetSubnode(r.key, r.node, nil)
		}
	}

	return nil
}

type nodeVisitor struct {
	root    *confignode.Node
	sep     confignode.Separator
	opts    NodeExpanderOptions
	pending map[*confignode.Node][]replacement
	err     error
}

func (v *nodeVisitor) VisitSubnode(_ *confignode.Node, _ string, _ int, _ *confignode.Node) bool {
	return true
}

func (v *nodeVisitor) VisitScalar(parent *confignode.Node, key string, index int, value *string) {
	if v.err != nil {
		return
	}

	path, current, up, matched := matchNodeToken(*value, v.opts, v.sep)
	if !matched {
		return
	}

	scope := v.root

	if current > 0 || up > 0 {
		scope = parent
		for i := 0; i < up && scope != nil; i++ {
			scope = scope.Parent()
		}

		if scope == nil {
			v.fail(*value, key, index)
			return
		}
	}

	if target, ok := firstSubnode(scope, path, v.sep); ok {
		v.queue(parent, key, index, target)
		return
	}

	if scope == v.root {
		if target, ok := firstSubnode(parent, path, v.sep); ok {
			v.queue(parent, key, index, target)
			return
		}
	}

	if target, ok := v.baseNodeFallback(scope, path); ok {
		slog.Warn("node expander fell back to base-node compatibility rule",
			slog.String("key", key), slog.String("path", path))
		v.queue(parent, key, index, target)

		return
	}

	if scope == v.root {
		if target, ok := v.baseNodeFallback(parent, path); ok {
			slog.Warn("node expander fell back to base-node compatibility rule",
				slog.String("key", key), slog.String("path", path))
			v.queue(parent, key, index, target)

			return
		}
	}

	v.fail(*value, key, index)
}

func (v *nodeVisitor) fail(token, key string, index int) {
	v.err = &configerr.UnresolvedNodeReferenceError{Token: token, Key: key, Index: index}
}

func (v *nodeVisitor) queue(parent *confignode.Node, key string, index int, target *confignode.Node) {
	v.pending[parent] = append(v.pending[parent], replacement{key: key, index: index, node: target})
}

func firstSubnode(scope *confignode.Node, path string, sep confignode.Separator) (*confignode.Node, bool) {
	nodes := scope.Subnodes(path, sep)
	if len(nodes) == 0 {
		return nil, false
	}

	return nodes[0], true
}

// baseNodeFallback implements the compatibility escape hatch of spec §4.5:
// when path itself is (still, at this point in the pass) a scalar under
// scope, its final segment names a pending graft slot at the subnode one
// level up; if that slot was already queued for replacement earlier in
// this same pass, its target node is reused here too.
func (v *nodeVisitor) baseNodeFallback(scope *confignode.Node, path string) (*confignode.Node, bool) {
	sepStr := v.sep.String()

	idx := strings.LastIndex(path, sepStr)
	if idx < 0 {
		return nil, false
	}

	prefix, last := path[:idx], path[idx+1:]

	if len(scope.Scalars(path, v.sep)) == 0 {
		return nil, false
	}

	baseNodes := scope.Subnodes(prefix, v.sep)
	if len(baseNodes) == 0 {
		return nil, false
	}

	for _, r := range v.pending[baseNodes[0]] {
		if r.key == last {
			return r.node, true
		}
	}

	return nil, false
}

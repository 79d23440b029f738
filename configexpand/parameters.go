// Package configexpand implements the two construction-phase rewriting
// passes that run after Builder.Merge: the Parameter Expander (scalar
// interpolation, spec §4.4) and the Node Expander (subtree grafting,
// spec §4.5). Both run once, in that order, and never again after the
// tree is handed to the read facade.
package configexpand

import (
	"regexp"

	"github.com/go-dconfig/dconfig/confignode"
)

// parameterToken matches %config.<path>%, where <path> is the shortest
// non-empty run of characters up to the next '%'. The "config." word is
// fixed regardless of the configured separator (spec §6: "Separator inside
// <path> is the configured Separator" — only inside, not in the keyword).
var parameterToken = regexp.MustCompile(`%config\.([^%]+)%`)

// Parameters rewrites every scalar in the tree rooted at root, replacing
// each non-overlapping %config.<path>% occurrence with the first scalar
// found at <path> (split on sep, resolved from root), or the empty string
// if resolution fails. Substitution is a single left-to-right pass per
// scalar; substituted text is never re-scanned.
func Parameters(root *confignode.Node, sep confignode.Separator) {
	root.Accept(&parameterVisitor{root: root, sep: sep})
}

type parameterVisitor struct {
	root *confignode.Node
	sep  confignode.Separator
}

func (p *parameterVisitor) VisitSubnode(_ *confignode.Node, _ string, _ int, _ *confignode.Node) bool {
	return true
}

func (p *parameterVisitor) VisitScalar(_ *confignode.Node, _ string, _ int, value *string) {
	*value = parameterToken.ReplaceAllStringFunc(*value, func(token string) string {
		path := parameterToken.FindStringSubmatch(token)[1]

		values := p.root.Scalars(path, p.sep)
		if len(values) == 0 {
			return ""
		}

		return values[0]
	})
}

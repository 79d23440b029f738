package confignode

// Visitor is the traversal contract shared by the Parameter and Node
// expanders (spec §4.2, §9: "a tagged-variant dispatch or two-method
// interface both satisfy the contract"). VisitScalar receives a pointer to
// the stored value so a visitor may rewrite it in place. VisitSubnode
// reports whether Accept should recurse into that subnode; both expanders
// always return true, mirroring the source's unconditional
// `node.accept(*this)` in its subnode visit overload.
type Visitor interface {
	VisitScalar(parent *Node, key string, index int, value *string)
	VisitSubnode(parent *Node, key string, index int, child *Node) (recurse bool)
}

// Accept drives the traversal order required by spec §4.2: at each Node,
// every subnode element is visited (in insertion order, index ascending)
// before any scalar element is, and a visited subnode is, by default,
// recursed into immediately.
func (n *Node) Accept(v Visitor) {
	for _, entry := range n.subnodes {
		for index, child := range entry.values {
			if v.VisitSubnode(n, entry.key, index, child) {
				child.Accept(v)
			}
		}
	}

	for _, entry := range n.scalars {
		for index := range entry.values {
			v.VisitScalar(n, entry.key, index, &entry.values[index])
		}
	}
}

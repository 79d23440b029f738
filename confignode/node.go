package confignode

import "strings"

// scalarEntry holds the non-empty, insertion-ordered sequence of scalar
// values stored under one key (invariant I1).
type scalarEntry struct {
	key    string
	values []string
}

// subnodeEntry holds the non-empty, insertion-ordered sequence of subnodes
// stored under one key (invariant I1).
type subnodeEntry struct {
	key    string
	values []*Node
}

// Node is one cell of the configuration tree: an ordered, multi-valued
// mapping of scalar children, an ordered, multi-valued mapping of subnode
// children, and a non-owning back-link to the parent (nil at the root).
//
// The two containers are rendered as an insertion-ordered slice of entries
// plus a side index from key to slice position — the Go equivalent of the
// source library's combined ordered/hashed/sequenced multi-index container
// (see DESIGN.md): keyed lookup and append are O(1) amortized, iteration is
// insertion-ordered, and erase is index-stable within the entry it touches.
type Node struct {
	scalars      []scalarEntry
	scalarIndex  map[string]int
	subnodes     []subnodeEntry
	subnodeIndex map[string]int
	parent       *Node
}

// New returns an empty, parentless Node.
func New() *Node {
	return &Node{
		scalarIndex:  make(map[string]int),
		subnodeIndex: make(map[string]int),
	}
}

// Parent returns the owning Node, or nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Empty reports whether the node has no scalar and no subnode children.
func (n *Node) Empty() bool {
	return len(n.scalars) == 0 && len(n.subnodes) == 0
}

func (n *Node) ensureIndexes() {
	if n.scalarIndex == nil {
		n.scalarIndex = make(map[string]int)
	}
	if n.subnodeIndex == nil {
		n.subnodeIndex = make(map[string]int)
	}
}

// SetScalar appends value to the sequence under key, or overwrites the
// element at *index when index is non-nil. A key not yet present in
// scalars gets a fresh one-element sequence regardless of index.
func (n *Node) SetScalar(key, value string, index *int) {
	n.ensureIndexes()

	if pos, ok := n.scalarIndex[key]; ok {
		entry := &n.scalars[pos]
		if index == nil {
			entry.values = append(entry.values, value)
			return
		}

		entry.values[*index] = value
		return
	}

	n.scalarIndex[key] = len(n.scalars)
	n.scalars = append(n.scalars, scalarEntry{key: key, values: []string{value}})
}

// SetSubnode appends child to the sequence under key, or overwrites the
// element at *index when index is non-nil. child.parent is always set to n
// before insertion.
func (n *Node) SetSubnode(key string, child *Node, index *int) {
	n.ensureIndexes()
	child.parent = n

	if pos, ok := n.subnodeIndex[key]; ok {
		entry := &n.subnodes[pos]
		if index == nil {
			entry.values = append(entry.values, child)
			return
		}

		entry.values[*index] = child
		return
	}

	n.subnodeIndex[key] = len(n.subnodes)
	n.subnodes = append(n.subnodes, subnodeEntry{key: key, values: []*Node{child}})
}

// scalarsAt returns the raw scalar sequence stored directly under key on
// this node (no path walk), or nil if absent.
func (n *Node) scalarsAt(key string) []string {
	pos, ok := n.scalarIndex[key]
	if !ok {
		return nil
	}

	return n.scalars[pos].values
}

// subnodesAt returns the raw subnode sequence stored directly under key on
// this node (no path walk), or nil if absent.
func (n *Node) subnodesAt(key string) []*Node {
	pos, ok := n.subnodeIndex[key]
	if !ok {
		return nil
	}

	return n.subnodes[pos].values
}

// splitPath normalizes path per spec §4.1/§4.2: empty, or exactly the
// separator, yields no segments; otherwise the path is split on sep.
func splitPath(path string, sep Separator) []string {
	if path == "" {
		return nil
	}

	if len(path) == 1 && path[0] == sep.Byte() {
		return nil
	}

	return strings.Split(path, sep.String())
}

// walk resolves every segment but the last by taking the first subnode at
// each intermediate step, returning the final Node to look the terminal
// segment up in, and that terminal segment. ok is false if any
// intermediate step fails to resolve or the path is empty.
func (n *Node) walk(path string, sep Separator) (base *Node, last string, ok bool) {
	segments := splitPath(path, sep)
	if len(segments) == 0 {
		return nil, "", false
	}

	base = n
	for _, segment := range segments[:len(segments)-1] {
		children := base.subnodesAt(segment)
		if len(children) == 0 {
			return nil, "", false
		}

		base = children[0]
	}

	return base, segments[len(segments)-1], true
}

// Scalars resolves path against n (intermediate segments take the first
// subnode match; the terminal segment is looked up in scalars) and returns
// the scalar sequence found there, or nil if any step fails.
func (n *Node) Scalars(path string, sep Separator) []string {
	base, last, ok := n.walk(path, sep)
	if !ok {
		return nil
	}

	return base.scalarsAt(last)
}

// Subnodes resolves path the same way as Scalars but looks the terminal
// segment up in subnodes.
func (n *Node) Subnodes(path string, sep Separator) []*Node {
	base, last, ok := n.walk(path, sep)
	if !ok {
		return nil
	}

	return base.subnodesAt(last)
}

// Erase removes key from both scalars and subnodes of n.
func (n *Node) Erase(key string) {
	if pos, ok := n.scalarIndex[key]; ok {
		n.removeScalarEntry(pos)
	}

	if pos, ok := n.subnodeIndex[key]; ok {
		n.removeSubnodeEntry(pos)
	}
}

func (n *Node) removeScalarEntry(pos int) {
	key := n.scalars[pos].key
	n.scalars = append(n.scalars[:pos], n.scalars[pos+1:]...)
	delete(n.scalarIndex, key)

	for i := pos; i < len(n.scalars); i++ {
		n.scalarIndex[n.scalars[i].key] = i
	}
}

func (n *Node) removeSubnodeEntry(pos int) {
	key := n.subnodes[pos].key
	n.subnodes = append(n.subnodes[:pos], n.subnodes[pos+1:]...)
	delete(n.subnodeIndex, key)

	for i := pos; i < len(n.subnodes); i++ {
		n.subnodeIndex[n.subnodes[i].key] = i
	}
}

// EraseScalar removes the index-th element of the scalar sequence at key.
// If the sequence becomes empty, the entry itself is removed (I1).
func (n *Node) EraseScalar(key string, index int) error {
	pos, ok := n.scalarIndex[key]
	if !ok {
		return &KeyNotFoundError{Key: key}
	}

	entry := &n.scalars[pos]
	if index < 0 || index >= len(entry.values) {
		return &IndexOutOfRangeError{Key: key, Index: index, Len: len(entry.values)}
	}

	entry.values = append(entry.values[:index], entry.values[index+1:]...)
	if len(entry.values) == 0 {
		n.removeScalarEntry(pos)
	}

	return nil
}

// EraseSubnode removes the index-th element of the subnode sequence at key.
// If the sequence becomes empty, the entry itself is removed (I1).
func (n *Node) EraseSubnode(key string, index int) error {
	pos, ok := n.subnodeIndex[key]
	if !ok {
		return &KeyNotFoundError{Key: key}
	}

	entry := &n.subnodes[pos]
	if index < 0 || index >= len(entry.values) {
		return &IndexOutOfRangeError{Key: key, Index: index, Len: len(entry.values)}
	}

	entry.values = append(entry.values[:index], entry.values[index+1:]...)
	if len(entry.values) == 0 {
		n.removeSubnodeEntry(pos)
	}

	return nil
}

// Overwrite destructively merges other into n: for every subnode key in
// other, either the whole sequence is moved in (re-parented to n) when n
// has no such key, or matching indices are recursively overwritten and
// extra elements from other are appended. Every scalar key in other
// entirely replaces the same key in n (later document wins). If a key
// exists as a subnode on one side and a scalar on the other, the kind
// other writes wins: the opposing-kind entry for that key is erased from n.
func (n *Node) Overwrite(other *Node) {
	n.ensureIndexes()

	for _, entry := range other.subnodes {
		if scalarPos, ok := n.scalarIndex[entry.key]; ok {
			n.removeScalarEntry(scalarPos)
		}

		pos, ok := n.subnodeIndex[entry.key]
		if !ok {
			for _, child := range entry.values {
				child.parent = n
			}

			n.subnodeIndex[entry.key] = len(n.subnodes)
			n.subnodes = append(n.subnodes, subnodeEntry{key: entry.key, values: entry.values})

			continue
		}

		existing := &n.subnodes[pos]
		for i, incoming := range entry.values {
			if i < len(existing.values) {
				existing.values[i].Overwrite(incoming)
				continue
			}

			incoming.parent = n
			existing.values = append(existing.values, incoming)
		}
	}

	for _, entry := range other.scalars {
		if subnodePos, ok := n.subnodeIndex[entry.key]; ok {
			n.removeSubnodeEntry(subnodePos)
		}

		pos, ok := n.scalarIndex[entry.key]
		if !ok {
			n.scalarIndex[entry.key] = len(n.scalars)
			n.scalars = append(n.scalars, scalarEntry{key: entry.key, values: append([]string(nil), entry.values...)})

			continue
		}

		n.scalars[pos].values = append([]string(nil), entry.values...)
	}
}

// Swap exchanges n's scalars and subnodes with other's, then reparents the
// immediate subnode children of both nodes to their new owner
// (non-recursive, as grandchildren's parent pointers already point at the
// subnode that moved, which did not itself move).
func (n *Node) Swap(other *Node) {
	n.scalars, other.scalars = other.scalars, n.scalars
	n.scalarIndex, other.scalarIndex = other.scalarIndex, n.scalarIndex
	n.subnodes, other.subnodes = other.subnodes, n.subnodes
	n.subnodeIndex, other.subnodeIndex = other.subnodeIndex, n.subnodeIndex

	n.reparentChildren()
	other.reparentChildren()
}

func (n *Node) reparentChildren() {
	for _, entry := range n.subnodes {
		for _, child := range entry.values {
			child.parent = n
		}
	}
}

// Clone returns a deep structural copy of n: every subnode is recursively
// cloned, and every parent pointer inside the clone references a node
// inside the clone, never the original (invariant I5).
func (n *Node) Clone() *Node {
	return n.cloneWithParent(nil)
}

func (n *Node) cloneWithParent(parent *Node) *Node {
	clone := &Node{
		scalars:      make([]scalarEntry, len(n.scalars)),
		scalarIndex:  make(map[string]int, len(n.scalarIndex)),
		subnodes:     make([]subnodeEntry, len(n.subnodes)),
		subnodeIndex: make(map[string]int, len(n.subnodeIndex)),
		parent:       parent,
	}

	for i, entry := range n.scalars {
		clone.scalars[i] = scalarEntry{key: entry.key, values: append([]string(nil), entry.values...)}
		clone.scalarIndex[entry.key] = i
	}

	for i, entry := range n.subnodes {
		values := make([]*Node, len(entry.values))
		for j, child := range entry.values {
			values[j] = child.cloneWithParent(clone)
		}

		clone.subnodes[i] = subnodeEntry{key: entry.key, values: values}
		clone.subnodeIndex[entry.key] = i
	}

	return clone
}

// Root walks parent links up to the owning root Node.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}

	return root
}

// Depth returns how many parent links separate n from its root (0 at the
// root itself).
func (n *Node) Depth() int {
	depth := 0
	for cur := n; cur.parent != nil; cur = cur.parent {
		depth++
	}

	return depth
}

package config

import (
	"github.com/go-dconfig/dconfig/config/convert"
	"github.com/go-dconfig/dconfig/confignode"
)

// Config is a read-only facade over a built configuration tree: a shared
// root, a cursor locating the current view, and the Separator paths are
// split on. The zero value is not usable; construct with New.
type Config struct {
	root      *confignode.Node
	cursor    *confignode.Node
	separator confignode.Separator
}

// New returns a Config cursored on root itself.
func New(root *confignode.Node, sep confignode.Separator) *Config {
	return &Config{root: root, cursor: root, separator: sep}
}

// Valid reports whether the cursor is non-null. A Config returned by Scope
// for a path that did not resolve has Valid() == false and answers
// empty/none to every read below.
func (c *Config) Valid() bool {
	return c != nil && c.cursor != nil
}

// MustScope is Scope, except the returned Config is always non-nil even
// when the path does not resolve (Valid reports false on it); callers that
// want to chain Scope calls without a nil check at every step can use this
// instead of checking Valid after every hop.
func (c *Config) MustScope(path string) *Config {
	return c.Scope(path)
}

// Scope returns a new facade cursored on the first subnode at path
// relative to the current cursor, or a null-cursor Config (still holding
// the same root) if path does not resolve to a subnode.
func (c *Config) Scope(path string) *Config {
	if !c.Valid() {
		return &Config{root: c.root, separator: c.separator}
	}

	nodes := c.cursor.Subnodes(path, c.separator)
	if len(nodes) == 0 {
		return &Config{root: c.root, separator: c.separator}
	}

	return &Config{root: c.root, cursor: nodes[0], separator: c.separator}
}

// Scopes returns one Config per subnode at path relative to the cursor, in
// insertion order. A missing path yields an empty slice.
func (c *Config) Scopes(path string) []*Config {
	if !c.Valid() {
		return nil
	}

	nodes := c.cursor.Subnodes(path, c.separator)
	scopes := make([]*Config, len(nodes))

	for i, n := range nodes {
		scopes[i] = &Config{root: c.root, cursor: n, separator: c.separator}
	}

	return scopes
}

// GetRef borrows the raw scalar sequence at path relative to the cursor,
// without conversion. A missing path yields nil.
func (c *Config) GetRef(path string) []string {
	if !c.Valid() {
		return nil
	}

	return c.cursor.Scalars(path, c.separator)
}

// Get fetches the first scalar at path relative to the cursor and converts
// it to T. Absence of the path, or an empty sequence, yields the zero
// value of T and found == false with a nil error. A conversion failure is
// reported as a *configerr.ConversionError.
func Get[T any](c *Config, path string) (value T, found bool, err error) {
	values := c.GetRef(path)
	if len(values) == 0 {
		return value, false, nil
	}

	converted, err := convert.FromString[T](path, values[0])
	if err != nil {
		return value, false, err
	}

	return converted, true, nil
}

// GetAll converts every scalar in the sequence at path relative to the
// cursor. An empty path or missing key yields an empty, non-nil slice. The
// first conversion failure aborts the whole call.
func GetAll[T any](c *Config, path string) ([]T, error) {
	values := c.GetRef(path)
	result := make([]T, 0, len(values))

	for _, raw := range values {
		converted, err := convert.FromString[T](path, raw)
		if err != nil {
			return nil, err
		}

		result = append(result, converted)
	}

	return result, nil
}

package yaml

import (
	"fmt"

	goyaml "github.com/goccy/go-yaml"

	"github.com/go-dconfig/dconfig/confignode"
)

// Parser implements configbuild.Parser for YAML documents.
type Parser struct{}

// NewParser returns a YAML Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data as YAML and walks the result into a confignode.Node
// tree. Empty input yields an empty root.
func (p *Parser) Parse(data []byte) (*confignode.Node, error) {
	root := confignode.New()

	if len(data) == 0 {
		return root, nil
	}

	var document goyaml.MapSlice
	if err := goyaml.UnmarshalWithOptions(data, &document, goyaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	if err := fillMapping(root, document); err != nil {
		return nil, err
	}

	return root, nil
}

// fillMapping populates node's scalars and subnodes from a decoded mapping.
func fillMapping(node *confignode.Node, mapping goyaml.MapSlice) error {
	for _, item := range mapping {
		key, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("yaml: non-string key %v", item.Key)
		}

		if err := fillValue(node, key, item.Value); err != nil {
			return err
		}
	}

	return nil
}

func fillValue(node *confignode.Node, key string, value any) error {
	switch v := value.(type) {
	case goyaml.MapSlice:
		child := confignode.New()
		if err := fillMapping(child, v); err != nil {
			return err
		}

		node.SetSubnode(key, child, nil)

	case []any:
		for _, element := range v {
			if err := fillSequenceElement(node, key, element); err != nil {
				return err
			}
		}

	case nil:
		node.SetScalar(key, "", nil)

	default:
		node.SetScalar(key, scalarString(v), nil)
	}

	return nil
}

func fillSequenceElement(node *confignode.Node, key string, element any) error {
	switch v := element.(type) {
	case goyaml.MapSlice:
		child := confignode.New()
		if err := fillMapping(child, v); err != nil {
			return err
		}

		node.SetSubnode(key, child, nil)

	case nil:
		node.SetScalar(key, "", nil)

	default:
		node.SetScalar(key, scalarString(v), nil)
	}

	return nil
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

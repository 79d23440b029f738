package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-dconfig/dconfig/confignode"
)

// Parser implements configbuild.Parser for JSON documents.
type Parser struct{}

// NewParser returns a JSON Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes data as JSON and walks the token stream into a
// confignode.Node tree. Empty input yields an empty root.
func (p *Parser) Parse(data []byte) (*confignode.Node, error) {
	root := confignode.New()

	if len(bytes.TrimSpace(data)) == 0 {
		return root, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, fmt.Errorf("json: document root must be an object")
	}

	if err := decodeObjectBody(dec, root); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}

	return root, nil
}

// decodeObjectBody consumes key/value pairs from dec until the matching
// '}', populating node. dec must be positioned just after the opening '{'.
func decodeObjectBody(dec *json.Decoder, node *confignode.Node) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("non-string object key %v", keyTok)
		}

		if err := decodeValueInto(dec, node, key); err != nil {
			return err
		}
	}

	// consume the closing '}'
	_, err := dec.Token()

	return err
}

// decodeValueInto reads one JSON value from dec and stores it under key on
// node: an object becomes a subnode, an array becomes a multi-valued
// sequence (of scalars or of subnodes, one SetScalar/SetSubnode call per
// element), and anything else becomes a scalar.
func decodeValueInto(dec *json.Decoder, node *confignode.Node, key string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			child := confignode.New()
			if err := decodeObjectBody(dec, child); err != nil {
				return err
			}

			node.SetSubnode(key, child, nil)

		case '[':
			if err := decodeArrayBody(dec, node, key); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unexpected delimiter %v", v)
		}

	case nil:
		node.SetScalar(key, "", nil)

	default:
		node.SetScalar(key, scalarString(v), nil)
	}

	return nil
}

func decodeArrayBody(dec *json.Decoder, node *confignode.Node, key string) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch v := tok.(type) {
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("unexpected delimiter %v in array", v)
			}

			child := confignode.New()
			if err := decodeObjectBody(dec, child); err != nil {
				return err
			}

			node.SetSubnode(key, child, nil)

		case nil:
			node.SetScalar(key, "", nil)

		default:
			node.SetScalar(key, scalarString(v), nil)
		}
	}

	// consume the closing ']'
	_, err := dec.Token()

	return err
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

package confignode

import "fmt"

// KeyNotFoundError is returned by the element-erase operations when key
// names no entry in the relevant container.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("confignode: key %q not found", e.Key)
}

// IndexOutOfRangeError is returned by the element-erase operations when
// index does not address an existing element of the sequence at Key.
type IndexOutOfRangeError struct {
	Key   string
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("confignode: index %d out of range for key %q (len %d)", e.Index, e.Key, e.Len)
}

// Package convert is the generic lexical-cast layer behind config.Get and
// config.GetAll: it turns one raw scalar string into a requested Go type.
//
// No dependency in the example pack offers a general string-to-T cast, so
// this is implemented directly on the standard library (strconv, time, and
// encoding.TextUnmarshaler) rather than adopting one for its own sake; see
// DESIGN.md.
package convert

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-dconfig/dconfig/configerr"
)

// FromString converts raw to T. path is carried only for error reporting.
//
// Supported targets: string, the signed and unsigned integer kinds,
// float32/float64, bool, time.Duration (via time.ParseDuration), and any
// type implementing encoding.TextUnmarshaler. Any other T fails with a
// *configerr.ConversionError.
func FromString[T any](path, raw string) (T, error) {
	var zero T

	if d, ok := any(zero).(time.Duration); ok {
		_ = d

		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return zero, convErr(path, raw, "time.Duration", err)
		}

		return any(parsed).(T), nil
	}

	if u, ok := any(&zero).(encoding.TextUnmarshaler); ok {
		if err := u.UnmarshalText([]byte(raw)); err != nil {
			return zero, convErr(path, raw, reflect.TypeOf(zero).String(), err)
		}

		return zero, nil
	}

	switch any(zero).(type) {
	case string:
		return any(raw).(T), nil

	case bool:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, convErr(path, raw, "bool", err)
		}

		return any(parsed).(T), nil
	}

	rv := reflect.ValueOf(&zero).Elem()

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(raw, 10, rv.Type().Bits())
		if err != nil {
			return zero, convErr(path, raw, rv.Kind().String(), err)
		}

		rv.SetInt(parsed)

		return zero, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(raw, 10, rv.Type().Bits())
		if err != nil {
			return zero, convErr(path, raw, rv.Kind().String(), err)
		}

		rv.SetUint(parsed)

		return zero, nil

	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(raw, rv.Type().Bits())
		if err != nil {
			return zero, convErr(path, raw, rv.Kind().String(), err)
		}

		rv.SetFloat(parsed)

		return zero, nil
	}

	return zero, convErr(path, raw, rv.Type().String(), fmt.Errorf("unsupported conversion target"))
}

func convErr(path, raw, typeName string, err error) error {
	return &configerr.ConversionError{Path: path, Value: raw, Type: typeName, Err: err}
}

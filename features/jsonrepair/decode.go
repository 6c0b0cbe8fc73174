package jsonrepair

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Decode strictly decodes a JSON document into ordered values.
// It fails on anything JSON.parse would reject.
func Decode(data []byte) (any, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrNotParseable)
	}
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotParseable, err)
	}
	return decodeValue(value, dataType)
}

func decodeValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Number:
		return jsonparser.ParseFloat(value)
	case jsonparser.String:
		return decodeString(value), nil
	case jsonparser.Array:
		return decodeArray(value)
	case jsonparser.Object:
		return decodeObject(value)
	}
	return nil, fmt.Errorf("unexpected json value type %v", dataType)
}

// decodeString unescapes the contents of a string literal (without quotes).
func decodeString(raw []byte) string {
	if s, err := jsonparser.ParseString(raw); err == nil {
		return s
	}
	// jsonparser rejects lone surrogates that JSON.parse accepts.
	var s string
	quoted := make([]byte, 0, len(raw)+2)
	quoted = append(append(append(quoted, '"'), raw...), '"')
	if err := json.Unmarshal(quoted, &s); err == nil {
		return s
	}
	return string(raw)
}

func decodeArray(data []byte) ([]any, error) {
	arr := []any{}
	var itemErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if itemErr != nil {
			return
		}
		if err != nil {
			itemErr = err
			return
		}
		v, err := decodeValue(value, dataType)
		if err != nil {
			itemErr = err
			return
		}
		arr = append(arr, v)
	})
	if err != nil {
		return nil, err
	}
	return arr, itemErr
}

func decodeObject(data []byte) (*Object, error) {
	obj := NewObject()
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := decodeValue(value, dataType)
		if err != nil {
			return err
		}
		obj.Set(string(key), v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Package msgpack reads filter documents supplied as MessagePack.
// Decoded documents are bridged to JSON so that the JSON decoders of the
// filter and cql packages stay the single source of truth.
package msgpack

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Decode deserializes MessagePack data into a Go value.
// The v parameter should be a pointer to the target structure.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty MessagePack data")
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	return nil
}

// Encode serializes a Go value into MessagePack format.
//
// Example:
//
//	doc := map[string]any{"type": "=", "args": []any{...}}
//	data, err := msgpack.Encode(doc)
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	return data, nil
}

// DecodeMap deserializes MessagePack data into a map[string]any.
// Filter objects and AST nodes are maps at the top level.
func DecodeMap(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty MessagePack data")
	}

	var result map[string]any
	if err := msgpack.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack map: %w", err)
	}

	return result, nil
}

// DecodeSlice deserializes MessagePack data into a []any.
// Used for lists of filter objects.
func DecodeSlice(data []byte) ([]any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty MessagePack data")
	}

	var result []any
	if err := msgpack.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack slice: %w", err)
	}

	return result, nil
}

// ToJSON re-encodes a MessagePack document as JSON. Maps with non-string
// keys are rejected.
func ToJSON(data []byte) ([]byte, error) {
	var v any
	if err := Decode(data, &v); err != nil {
		return nil, err
	}
	return JSON(v)
}

// JSON encodes a decoded MessagePack value as JSON.
func JSON(v any) ([]byte, error) {
	v, err := jsonable(v)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return out, nil
}

func jsonable(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		for k, el := range x {
			el, err := jsonable(el)
			if err != nil {
				return nil, err
			}
			x[k] = el
		}
		return x, nil
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, el := range x {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported MessagePack map key %v (%T)", k, k)
			}
			el, err := jsonable(el)
			if err != nil {
				return nil, err
			}
			m[key] = el
		}
		return m, nil
	case []any:
		for i, el := range x {
			el, err := jsonable(el)
			if err != nil {
				return nil, err
			}
			x[i] = el
		}
		return x, nil
	case []byte:
		return string(x), nil
	}
	return v, nil
}

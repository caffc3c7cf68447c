package filter

import (
	"encoding/json"
	"fmt"

	"github.com/hugr-lab/ogcfilter/internal/msgpack"
)

// DecodeMsgpack decodes a filter object encoded as MessagePack. Member
// names are the JSON ones.
func DecodeMsgpack(data []byte) (*Filter, error) {
	m, err := msgpack.DecodeMap(data)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	doc, err := msgpack.JSON(m)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return Parse(doc)
}

// ParseList decodes a JSON array of filter objects.
func ParseList(data []byte) ([]*Filter, error) {
	var fs []*Filter
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("filter: invalid filter list: %w", err)
	}
	return fs, nil
}

// DecodeMsgpackList decodes a MessagePack array of filter objects.
func DecodeMsgpackList(data []byte) ([]*Filter, error) {
	items, err := msgpack.DecodeSlice(data)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	doc, err := msgpack.JSON(items)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return ParseList(doc)
}

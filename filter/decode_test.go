package filter

import (
	"testing"

	"github.com/hugr-lab/ogcfilter/internal/msgpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMsgpack(t *testing.T) {
	data, err := msgpack.Encode(map[string]any{
		"featureTypeName": "topp:states",
		"filterFields": []any{
			map[string]any{"attribute": "STATE_NAME", "operator": "=", "type": "string", "value": "Alabama", "groupId": 1},
		},
		"groupFields": []any{
			map[string]any{"id": 1, "index": 0, "logic": "AND"},
		},
	})
	require.NoError(t, err)

	f, err := DecodeMsgpack(data)
	require.NoError(t, err)
	assert.Equal(t, "topp:states", f.FeatureTypeName)
	require.Len(t, f.FilterFields, 1)
	assert.Equal(t, ID("1"), f.FilterFields[0].GroupID)
	assert.Equal(t, "Alabama", f.FilterFields[0].Value.String())

	_, err = DecodeMsgpack(nil)
	require.Error(t, err)

	data, err = msgpack.Encode([]any{map[string]any{"featureTypeName": "a"}})
	require.NoError(t, err)
	_, err = DecodeMsgpack(data)
	require.Error(t, err)
}

func TestDecodeMsgpackList(t *testing.T) {
	data, err := msgpack.Encode([]any{
		map[string]any{"featureTypeName": "a"},
		map[string]any{"featureTypeName": "b", "disabled": true},
	})
	require.NoError(t, err)

	fs, err := DecodeMsgpackList(data)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "a", fs[0].FeatureTypeName)
	assert.True(t, fs[1].Disabled)

	data, err = msgpack.Encode(map[string]any{"featureTypeName": "a"})
	require.NoError(t, err)
	_, err = DecodeMsgpackList(data)
	require.Error(t, err)
}

func TestParseList(t *testing.T) {
	fs, err := ParseList([]byte(`[{"featureTypeName":"a"},null]`))
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "a", fs[0].FeatureTypeName)
	assert.Nil(t, fs[1])

	_, err = ParseList([]byte(`{}`))
	require.Error(t, err)
}

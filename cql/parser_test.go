package cql

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prop(name string) *Property { return &Property{Name: name} }
func lit(v any) *Literal { return &Literal{Value: v} }

func cmp(op ComparisonOp, args ...Node) *Comparison {
	return &Comparison{Op: op, Args: args}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Node
	}{
		{"equal string", "name = 'Rome'", cmp(OpEqual, prop("name"), lit("Rome"))},
		{"quoted property", `"a b" <> 'x'`, cmp(OpNotEqual, prop("a b"), lit("x"))},
		{"escaped quote", "name = 'it''s'", cmp(OpEqual, prop("name"), lit("it's"))},
		{"number", "pop >= 10.5", cmp(OpGreaterOrEqual, prop("pop"), lit(10.5))},
		{"negative", "t < -3", cmp(OpLess, prop("t"), lit(-3.0))},
		{"boolean", "active = TRUE", cmp(OpEqual, prop("active"), lit(true))},
		{"like", "name LIKE 'R%'", cmp(OpLike, prop("name"), lit("R%"))},
		{"ilike", "name ilike 'r%'", cmp(OpILike, prop("name"), lit("r%"))},
		{"is null", "name IS NULL", cmp(OpIsNull, prop("name"))},
		{"between", "pop BETWEEN 1 AND 3", cmp(OpBetween, prop("pop"), lit(1.0), lit(3.0))},
		{"property rhs", "a = b", cmp(OpEqual, prop("a"), prop("b"))},
		{"include", "INCLUDE", &Include{}},
		{"namespaced property", "gn:name = 'x'", cmp(OpEqual, prop("gn:name"), lit("x"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	a := cmp(OpEqual, prop("a"), lit(1.0))
	b := cmp(OpEqual, prop("b"), lit(2.0))
	c := cmp(OpEqual, prop("c"), lit(3.0))

	tests := []struct {
		name string
		text string
		want Node
	}{
		{"and binds tighter than or", "a = 1 OR b = 2 AND c = 3", Or(a, And(b, c))},
		{"and chain nests left", "a = 1 AND b = 2 AND c = 3", And(And(a, b), c)},
		{"or chain nests left", "a = 1 OR b = 2 OR c = 3", Or(Or(a, b), c)},
		{"parens override", "(a = 1 OR b = 2) AND c = 3", And(Or(a, b), c)},
		{"not applies to next predicate", "NOT a = 1 AND b = 2", And(Not(a), b)},
		{"not group", "NOT (a = 1 AND b = 2)", Not(And(a, b))},
		{"double not", "NOT NOT a = 1", Not(Not(a))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSpatial(t *testing.T) {
	got, err := Parse("INTERSECTS(geom, POINT(1 2))")
	require.NoError(t, err)
	assert.Equal(t, &Spatial{Op: OpIntersects, Args: []Node{prop("geom"), &Geometry{Geom: orb.Point{1, 2}}}}, got)

	got, err = Parse("within(geom, POLYGON((0 0, 1 0, 1 1, 0 0)))")
	require.NoError(t, err)
	assert.Equal(t, OpWithin, got.(*Spatial).Op)
	assert.Equal(t, "Polygon", got.(*Spatial).Args[1].Type())

	got, err = Parse("BBOX(geom, -180, -90, 180, 90, 'EPSG:4326')")
	require.NoError(t, err)
	assert.Equal(t, &BBox{Property: prop("geom"), Bounds: [4]float64{-180, -90, 180, 90}, CRS: "EPSG:4326"}, got)

	got, err = Parse("DWITHIN(geom, POINT(1 2), 10, meters)")
	require.NoError(t, err)
	assert.Equal(t, &DWithin{
		Property: prop("geom"),
		Geometry: &Geometry{Geom: orb.Point{1, 2}},
		Distance: 10,
		Units:    "meters",
	}, got)
}

func TestParseCrossLayer(t *testing.T) {
	got, err := Parse(`INTERSECTS("geometry",collectGeometries(queryCollection('TEST', 'GEOMETRY','INCLUDE')))`)
	require.NoError(t, err)

	want := &Spatial{Op: OpIntersects, Args: []Node{
		prop("geometry"),
		&Func{Name: "collectGeometries", Args: []Node{
			&Func{Name: "queryCollection", Args: []Node{lit("TEST"), lit("GEOMETRY"), lit("INCLUDE")}},
		}},
	}}
	assert.Equal(t, want, got)
}

func TestParseNestedFunctions(t *testing.T) {
	got, err := Parse("attr = func(func2('text1'), func3('text2', 2))")
	require.NoError(t, err)

	want := cmp(OpEqual, prop("attr"), &Func{Name: "func", Args: []Node{
		&Func{Name: "func2", Args: []Node{lit("text1")}},
		&Func{Name: "func3", Args: []Node{lit("text2"), lit(2.0)}},
	}})
	assert.Equal(t, want, got)

	got, err = Parse("InArray(1234, array_field)")
	require.NoError(t, err)
	assert.Equal(t, &Func{Name: "InArray", Args: []Node{lit(1234.0), prop("array_field")}}, got)
}

func TestParseErrors(t *testing.T) {
	t.Run("no token matches", func(t *testing.T) {
		_, err := Parse("a = = 1")
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "= 1", pe.Remainder)
		assert.Equal(t, Follows[TokenComparison], pe.Expected)
		assert.Contains(t, err.Error(), "in parsing [= 1], expected one of:")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Parse("")
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, Start, pe.Expected)
	})

	t.Run("unbalanced paren", func(t *testing.T) {
		_, err := Parse("(a = 1")
		var se *SyntaxError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, TokenEnd, se.Token.Type)
	})

	t.Run("trailing tokens", func(t *testing.T) {
		_, err := Parse("a = 1)")
		var te *TrailingTokensError
		require.ErrorAs(t, err, &te)
		require.Len(t, te.Tokens, 1)
		assert.Equal(t, TokenRParen, te.Tokens[0].Type)
	})

	t.Run("malformed wkt", func(t *testing.T) {
		_, err := Parse("INTERSECTS(geom, POINT(a b))")
		var se *SyntaxError
		require.ErrorAs(t, err, &se)
	})

	t.Run("bbox bounds", func(t *testing.T) {
		_, err := Parse("BBOX(geom, 'a', 1, 2, 3)")
		var se *SyntaxError
		require.ErrorAs(t, err, &se)
	})

	t.Run("bare property", func(t *testing.T) {
		_, err := Parse("a AND b = 1")
		var se *SyntaxError
		require.ErrorAs(t, err, &se)
	})
}

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize(`name IS  NULL OR pop BETWEEN 1 AND 2`)
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TokenProperty, TokenIsNull, TokenLogical, TokenProperty, TokenBetween,
		TokenValue, TokenLogical, TokenValue, TokenEnd,
	}, types)
	assert.Equal(t, 5, tokens[1].Pos)

	tokens, err = Tokenize("notes = 1")
	require.NoError(t, err)
	assert.Equal(t, TokenProperty, tokens[0].Type)
	assert.Equal(t, "notes", tokens[0].Text)
}

func TestEncodeRoundTrip(t *testing.T) {
	inputs := []string{
		"name = 'it''s'",
		"a = 1 OR b = 2 AND c = 3",
		"(a = 1 OR b = 2) AND c = 3",
		"a = 1 AND (b = 2 AND c = 3)",
		"NOT (a = 1) AND b IS NULL",
		"pop BETWEEN 1 AND 3",
		`"and" = 'x'`,
		"INTERSECTS(geom, POLYGON((0 0, 1 0, 1 1, 0 0)))",
		"BBOX(geom, -180, -90, 180, 90, 'EPSG:4326')",
		"DWITHIN(geom, POINT(1 2), 10, meters)",
		"attr = func(func2('text1'), func3('text2', 2))",
		"name ILIKE 'r%' OR INCLUDE",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first, err := Parse(in)
			require.NoError(t, err)

			text, err := Encode(first)
			require.NoError(t, err)

			second, err := Parse(text)
			require.NoError(t, err, text)
			assert.Equal(t, first, second)
		})
	}
}

func TestEncode(t *testing.T) {
	n := And(cmp(OpEqual, prop("a b"), lit("x")), Or(cmp(OpLike, prop("c"), lit("%y")), &Include{}))
	got, err := Encode(n)
	require.NoError(t, err)
	assert.Equal(t, `"a b" = 'x' AND (c LIKE '%y' OR INCLUDE)`, got)

	_, err = Encode(&Unknown{Kind: "custom"})
	var ue *UnsupportedNodeError
	assert.ErrorAs(t, err, &ue)
}

func TestEncodeNilNodes(t *testing.T) {
	for _, n := range []Node{
		nil,
		(*Literal)(nil),
		(*Logical)(nil),
		And(cmp(OpEqual, prop("a"), lit(1.0)), (*Comparison)(nil)),
		cmp(OpIsNull, (*Property)(nil)),
	} {
		_, err := Encode(n)
		assert.Error(t, err, "%#v", n)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	inputs := []string{
		"name = 'Rome' AND pop > 1000",
		"NOT (a IS NULL)",
		"pop BETWEEN 1 AND 3",
		"INTERSECTS(geom, MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0))))",
		"BBOX(geom, 1, 2, 3, 4)",
		"DWITHIN(geom, POINT(1 2), 10)",
		"f(g(1), 'x')",
		"INCLUDE",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			n, err := Parse(in)
			require.NoError(t, err)

			data, err := json.Marshal(n)
			require.NoError(t, err)

			back, err := Unmarshal(data)
			require.NoError(t, err, string(data))
			assert.Equal(t, n, back)
		})
	}
}

func TestJSONShape(t *testing.T) {
	n, err := Parse("name = 'Rome'")
	require.NoError(t, err)
	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"=","args":[{"type":"property","name":"name"},{"type":"literal","value":"Rome"}]}`, string(data))

	n, err = Parse("INTERSECTS(geom, POINT(1 2))")
	require.NoError(t, err)
	data, err = json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"INTERSECTS","args":[{"type":"property","name":"geom"},{"type":"Point","coordinates":[1,2]}]}`, string(data))

	n, err = Parse("NOT a = 1")
	require.NoError(t, err)
	data, err = json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"not","filters":[{"type":"=","args":[{"type":"property","name":"a"},{"type":"literal","value":1}]}]}`, string(data))

	// single operand form is still accepted
	back, err := Unmarshal([]byte(`{"type":"not","filter":{"type":"isNull","args":[{"type":"property","name":"a"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, Not(&Comparison{Op: OpIsNull, Args: []Node{&Property{Name: "a"}}}), back)
}

func TestUnmarshalUnknown(t *testing.T) {
	n, err := Unmarshal([]byte(`{"type":"custom","name":"x","args":[{"type":"literal","value":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, &Unknown{Kind: "custom", Name: "x", Args: []Node{lit(1.0)}}, n)
}

func TestProperties(t *testing.T) {
	n, err := Parse("a = 1 AND (b IS NULL OR a = c) AND INTERSECTS(geom, POINT(1 1))")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "geom"}, Properties(n))
}

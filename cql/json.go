package cql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"
)

func (n *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	}{TypeLiteral, n.Value})
}

func (n *Property) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}{TypeProperty, n.Name})
}

func (n *Comparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Args []Node `json:"args"`
	}{string(n.Op), n.Args})
}

func (n *Logical) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Filters []Node `json:"filters"`
	}{n.Op, n.Filters})
}

func (n *Spatial) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Args []Node `json:"args"`
	}{string(n.Op), n.Args})
}

func (n *BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string     `json:"type"`
		Property Node       `json:"property"`
		Value    [4]float64 `json:"value"`
		CRS      string     `json:"crs,omitempty"`
	}{string(OpBBox), n.Property, n.Bounds, n.CRS})
}

func (n *DWithin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string  `json:"type"`
		Property Node    `json:"property"`
		Value    Node    `json:"value"`
		Distance float64 `json:"distance"`
		Units    string  `json:"units,omitempty"`
	}{string(OpDWithin), n.Property, n.Geometry, n.Distance, n.Units})
}

func (n *Func) MarshalJSON() ([]byte, error) {
	args := n.Args
	if args == nil {
		args = []Node{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name"`
		Args []Node `json:"args"`
	}{TypeFunc, n.Name, args})
}

func (n *Geometry) MarshalJSON() ([]byte, error) {
	if n.Geom == nil {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(n.Geom).MarshalJSON()
}

func (*Include) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"include"}`), nil
}

func (n *Unknown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name,omitempty"`
		Args []Node `json:"args,omitempty"`
	}{n.Kind, n.Name, n.Args})
}

// rawNode is the union of every field a JSON node may carry.
type rawNode struct {
	Type     string            `json:"type"`
	Name     string            `json:"name"`
	Value    json.RawMessage   `json:"value"`
	Args     []json.RawMessage `json:"args"`
	Filters  []json.RawMessage `json:"filters"`
	Filter   json.RawMessage   `json:"filter"`
	Property json.RawMessage   `json:"property"`
	Distance *float64          `json:"distance"`
	Units    string            `json:"units"`
	CRS      string            `json:"crs"`
}

var geoJSONTypes = map[string]bool{
	"Point": true, "MultiPoint": true, "LineString": true, "MultiLineString": true,
	"Polygon": true, "MultiPolygon": true, "GeometryCollection": true,
}

// Unmarshal decodes the JSON form of a tree, as produced by json.Marshal
// on any Node. Nodes whose type is not part of the grammar decode to
// *Unknown.
func Unmarshal(data []byte) (Node, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cql: failed to decode node: %w", err)
	}

	switch {
	case geoJSONTypes[raw.Type]:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("cql: failed to decode geometry: %w", err)
		}
		return &Geometry{Geom: g.Geometry()}, nil
	case raw.Type == TypeLiteral:
		var v any
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return nil, fmt.Errorf("cql: failed to decode literal: %w", err)
		}
		return &Literal{Value: v}, nil
	case raw.Type == TypeProperty:
		return &Property{Name: raw.Name}, nil
	case raw.Type == TypeInclude:
		return &Include{}, nil
	case raw.Type == TypeAnd || raw.Type == TypeOr || raw.Type == TypeNot:
		filters, err := unmarshalList(raw.Filters)
		if err != nil {
			return nil, err
		}
		if len(raw.Filter) > 0 {
			f, err := Unmarshal(raw.Filter)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		}
		return &Logical{Op: raw.Type, Filters: filters}, nil
	case ComparisonOp(raw.Type).valid():
		args, err := unmarshalList(raw.Args)
		if err != nil {
			return nil, err
		}
		return &Comparison{Op: ComparisonOp(raw.Type), Args: args}, nil
	case raw.Type == TypeFunc:
		args, err := unmarshalList(raw.Args)
		if err != nil {
			return nil, err
		}
		return &Func{Name: raw.Name, Args: args}, nil
	}

	switch op := SpatialOp(strings.ToUpper(raw.Type)); op {
	case OpIntersects, OpWithin, OpContains:
		args, err := unmarshalList(raw.Args)
		if err != nil {
			return nil, err
		}
		return &Spatial{Op: op, Args: args}, nil
	case OpBBox:
		prop, err := Unmarshal(raw.Property)
		if err != nil {
			return nil, err
		}
		n := &BBox{Property: prop, CRS: raw.CRS}
		if err := json.Unmarshal(raw.Value, &n.Bounds); err != nil {
			return nil, fmt.Errorf("cql: failed to decode BBOX bounds: %w", err)
		}
		return n, nil
	case OpDWithin:
		prop, err := Unmarshal(raw.Property)
		if err != nil {
			return nil, err
		}
		geom, err := Unmarshal(raw.Value)
		if err != nil {
			return nil, err
		}
		n := &DWithin{Property: prop, Geometry: geom, Units: raw.Units}
		if raw.Distance != nil {
			n.Distance = *raw.Distance
		}
		return n, nil
	}

	args, err := unmarshalList(raw.Args)
	if err != nil {
		return nil, err
	}
	return &Unknown{Kind: raw.Type, Name: raw.Name, Args: args}, nil
}

func unmarshalList(items []json.RawMessage) ([]Node, error) {
	var nodes []Node
	for _, item := range items {
		n, err := Unmarshal(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

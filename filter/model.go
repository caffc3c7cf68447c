package filter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Filter is a grouped filter fields object as produced by query builder
// forms.
type Filter struct {
	FeatureTypeName      string            `json:"featureTypeName,omitempty"`
	FilterType           string            `json:"filterType,omitempty"`
	OGCVersion           string            `json:"ogcVersion,omitempty"`
	FilterFields         []Field           `json:"filterFields,omitempty"`
	GroupFields          []Group           `json:"groupFields,omitempty"`
	SpatialField         SpatialFields     `json:"spatialField,omitzero"`
	SpatialFieldOperator string            `json:"spatialFieldOperator,omitempty"`
	CrossLayerFilter     *CrossLayerFilter `json:"crossLayerFilter,omitempty"`
	SimpleFilterFields   []SimpleField     `json:"simpleFilterFields,omitempty"`
	Filters              []Entry           `json:"filters,omitempty"`
	Pagination           *Pagination       `json:"pagination,omitempty"`
	SortOptions          *SortOptions      `json:"sortOptions,omitempty"`
	Hits                 bool              `json:"hits,omitempty"`
	Options              *QueryOptions     `json:"options,omitempty"`
	Disabled             bool              `json:"disabled,omitempty"`
}

// Field is one attribute condition.
type Field struct {
	Attribute string `json:"attribute,omitempty"`
	Operator  string `json:"operator,omitempty"`
	Value     Value  `json:"value,omitzero"`
	Type      string `json:"type,omitempty"`
	GroupID   ID     `json:"groupId,omitempty"`
}

// Group combines the fields and sub-groups that reference its ID.
// Logic is one of AND, OR, AND NOT and NOR.
type Group struct {
	ID      ID     `json:"id"`
	GroupID ID     `json:"groupId,omitempty"`
	Index   int    `json:"index"`
	Logic   string `json:"logic"`
}

// SimpleField is a field of the simplified search form. Values holds a
// list of selected options for type "list".
type SimpleField struct {
	Attribute     string `json:"attribute,omitempty"`
	Operator      string `json:"operator,omitempty"`
	Type          string `json:"type,omitempty"`
	Values        Value  `json:"values,omitzero"`
	OptionsValues []any  `json:"optionsValues,omitempty"`
}

// SpatialField is a spatial condition on one geometry attribute.
type SpatialField struct {
	Attribute         string             `json:"attribute,omitempty"`
	Operation         string             `json:"operation,omitempty"`
	Method            string             `json:"method,omitempty"`
	Geometry          *Geometry          `json:"geometry,omitempty"`
	CollectGeometries *CollectGeometries `json:"collectGeometries,omitempty"`
}

// SpatialFields is the spatialField member, which documents write either
// as a single object or as an array.
type SpatialFields struct {
	Fields []SpatialField
	// Single is set when the document held one object.
	Single bool
}

// One wraps a single spatial field.
func One(f SpatialField) SpatialFields {
	return SpatialFields{Fields: []SpatialField{f}, Single: true}
}

// Many wraps an array of spatial fields.
func Many(fs ...SpatialField) SpatialFields {
	return SpatialFields{Fields: fs}
}

func (s SpatialFields) IsZero() bool { return len(s.Fields) == 0 && !s.Single }

func (s SpatialFields) MarshalJSON() ([]byte, error) {
	if s.Single && len(s.Fields) == 1 {
		return json.Marshal(s.Fields[0])
	}
	if s.Fields == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Fields)
}

func (s *SpatialFields) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = SpatialFields{}
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '[':
		return json.Unmarshal(data, &s.Fields)
	}
	var f SpatialField
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = One(f)
	return nil
}

// Geometry is the client geometry of a spatial field. Coordinates are
// kept raw: malformed coordinates still render.
type Geometry struct {
	Type        string          `json:"type,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Projection  string          `json:"projection,omitempty"`
	Extent      Extent          `json:"extent,omitzero"`
	Distance    float64         `json:"distance,omitempty"`
	Center      []float64       `json:"center,omitempty"`
	Radius      float64         `json:"radius,omitempty"`
}

// NewGeometry builds a Geometry from g.
func NewGeometry(g orb.Geometry, projection string) *Geometry {
	gj := geojson.NewGeometry(g)
	coords, _ := json.Marshal(gj.Coordinates)
	return &Geometry{Type: g.GeoJSONType(), Coordinates: coords, Projection: projection}
}

// Orb decodes the coordinates.
func (g *Geometry) Orb() (orb.Geometry, error) {
	if g == nil {
		return nil, fmt.Errorf("filter: no geometry")
	}
	if len(g.Coordinates) == 0 || bytes.Equal(g.Coordinates, []byte("null")) {
		return nil, fmt.Errorf("filter: %s has no coordinates", g.Type)
	}
	doc, err := json.Marshal(struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}{g.Type, g.Coordinates})
	if err != nil {
		return nil, err
	}
	gj, err := geojson.UnmarshalGeometry(doc)
	if err != nil {
		return nil, fmt.Errorf("filter: %s coordinates: %w", g.Type, err)
	}
	return gj.Geometry(), nil
}

// RawCoordinates returns the coordinates as decoded JSON.
func (g *Geometry) RawCoordinates() any {
	var v any
	if g == nil || len(g.Coordinates) == 0 {
		return nil
	}
	if err := json.Unmarshal(g.Coordinates, &v); err != nil {
		return nil
	}
	return v
}

// Extent is either one bounding box [minx, miny, maxx, maxy] or, for
// selections that cross the antimeridian, a list of them.
type Extent struct {
	Boxes  [][]float64
	Nested bool
}

func (e Extent) IsZero() bool { return len(e.Boxes) == 0 }

func (e Extent) MarshalJSON() ([]byte, error) {
	if !e.Nested && len(e.Boxes) == 1 {
		return json.Marshal(e.Boxes[0])
	}
	return json.Marshal(e.Boxes)
}

func (e *Extent) UnmarshalJSON(data []byte) error {
	*e = Extent{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var nested [][]float64
	if err := json.Unmarshal(data, &nested); err == nil {
		*e = Extent{Boxes: nested, Nested: true}
		return nil
	}
	var flat []float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("filter: invalid extent: %w", err)
	}
	*e = Extent{Boxes: [][]float64{flat}}
	return nil
}

// CrossLayerFilter selects features by their spatial relation to the
// geometries of another layer.
type CrossLayerFilter struct {
	Operation         string             `json:"operation,omitempty"`
	Attribute         string             `json:"attribute,omitempty"`
	Distance          float64            `json:"distance,omitempty"`
	CollectGeometries *CollectGeometries `json:"collectGeometries,omitempty"`
}

// CollectGeometries wraps the query collecting the other layer's
// geometries.
type CollectGeometries struct {
	QueryCollection *QueryCollection `json:"queryCollection,omitempty"`
}

// QueryCollection names the layer to query and how to filter it.
type QueryCollection struct {
	TypeName     string  `json:"typeName,omitempty"`
	GeometryName string  `json:"geometryName,omitempty"`
	CQLFilter    string  `json:"cqlFilter,omitempty"`
	FilterFields []Field `json:"filterFields,omitempty"`
	GroupFields  []Group `json:"groupFields,omitempty"`
}

func (c *CrossLayerFilter) queryCollection() *QueryCollection {
	if c == nil || c.CollectGeometries == nil {
		return nil
	}
	return c.CollectGeometries.QueryCollection
}

// Entry is an element of the filters array: CQL text
// ({format: "cql", body}) or a nested logic block
// ({format: "logic", logic, filters}).
type Entry struct {
	Format  string  `json:"format"`
	Body    string  `json:"body,omitempty"`
	Logic   string  `json:"logic,omitempty"`
	Filters []Entry `json:"filters,omitempty"`
}

// Pagination of a GetFeature request. A nil StartIndex is omitted; zero is
// written.
type Pagination struct {
	StartIndex  *int `json:"startIndex,omitempty"`
	MaxFeatures int  `json:"maxFeatures,omitempty"`
}

// SortOptions of a GetFeature request.
type SortOptions struct {
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
}

// QueryOptions are layer level request options.
type QueryOptions struct {
	// CQLFilter is ANDed with the filter.
	CQLFilter        string `json:"cqlFilter,omitempty"`
	ViewParams       string `json:"viewParams,omitempty"`
	NoSchemaLocation bool   `json:"noSchemaLocation,omitempty"`
}

// Parse decodes a filter object from JSON.
func Parse(data []byte) (*Filter, error) {
	var f Filter
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("filter: invalid filter object: %w", err)
	}
	return &f, nil
}

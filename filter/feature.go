package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
)

// CreateFeatureFilter returns a predicate matching GeoJSON features
// against the attribute fields of f, all of which must match. A feature
// without one of the attributes never matches. Strings and booleans match
// case-insensitive substrings, numbers match exactly and dates match on
// the calendar day of startDate. A nil filter matches everything.
func CreateFeatureFilter(f *Filter) func(*geojson.Feature) bool {
	return func(feature *geojson.Feature) bool {
		if f == nil {
			return true
		}
		for _, field := range f.FilterFields {
			prop, ok := feature.Properties[field.Attribute]
			if !ok {
				return false
			}
			switch field.Type {
			case "string", "boolean":
				if prop == nil || !strings.Contains(strings.ToLower(fmt.Sprint(prop)), strings.ToLower(field.Value.String())) {
					return false
				}
			case "number":
				want, ok1 := toFloat(field.Value.Raw())
				got, ok2 := toFloat(prop)
				if !ok1 || !ok2 || want != got {
					return false
				}
			case "date":
				want, ok1 := toTime(field.Value.Get("startDate").Raw())
				got, ok2 := toTime(prop)
				if !ok1 || !ok2 {
					return false
				}
				wy, wm, wd := want.Date()
				gy, gm, gd := got.Date()
				if wy != gy || wm != gm || wd != gd {
					return false
				}
			}
		}
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

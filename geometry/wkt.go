package geometry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

var wktKeyword = regexp.MustCompile(`(?i)^(POINT|LINESTRING|POLYGON|MULTIPOINT|MULTILINESTRING|MULTIPOLYGON|GEOMETRYCOLLECTION)`)

// WKTError is returned by ParseWKT when the text is not a usable WKT literal.
type WKTError struct {
	Text string
	Err  error
}

func (e *WKTError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geometry: invalid WKT %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("geometry: invalid WKT %q", e.Text)
}

func (e *WKTError) Unwrap() error {
	return e.Err
}

// MatchWKT returns the WKT geometry literal at the start of text.
// The end of the literal is found by counting parenthesis depth from the
// first opening paren after the keyword, so nested rings and members of
// multi-geometries are consumed as a whole.
func MatchWKT(text string) (string, bool) {
	loc := wktKeyword.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	i := loc[1]
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r') {
		i++
	}
	if i >= len(text) || text[i] != '(' {
		return "", false
	}

	depth := 1
	for depth > 0 {
		i++
		if i >= len(text) {
			return "", false
		}
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return text[:i+1], true
}

// ParseWKT decodes a WKT literal into an orb geometry.
func ParseWKT(text string) (orb.Geometry, error) {
	lit, ok := MatchWKT(strings.TrimSpace(text))
	if !ok {
		return nil, &WKTError{Text: text}
	}
	g, err := wkt.Unmarshal(normalizeWKT(lit))
	if err != nil {
		return nil, &WKTError{Text: text, Err: err}
	}
	return g, nil
}

// FromWKT is the permissive form of ParseWKT: malformed input yields nil.
func FromWKT(text string) orb.Geometry {
	g, err := ParseWKT(text)
	if err != nil {
		return nil
	}
	return g
}

// normalizeWKT upper-cases the keyword and puts every MULTIPOINT member in
// its own parens, the only member form the orb decoder accepts.
func normalizeWKT(lit string) string {
	loc := wktKeyword.FindStringIndex(lit)
	keyword := strings.ToUpper(lit[:loc[1]])
	body := strings.TrimSpace(lit[loc[1]:])
	if keyword != "MULTIPOINT" {
		return keyword + body
	}

	inner := strings.TrimSpace(body[1 : len(body)-1])
	if strings.Contains(inner, "(") {
		return keyword + body
	}
	members := strings.Split(inner, ",")
	for i, m := range members {
		members[i] = "(" + strings.TrimSpace(m) + ")"
	}
	return keyword + "(" + strings.Join(members, ",") + ")"
}

// ToWKT renders g as WKT with numbers formatted by FormatNumber.
// Unsupported geometries render as an empty string.
func ToWKT(g orb.Geometry) string {
	var sb strings.Builder
	writeWKT(&sb, g)
	return sb.String()
}

func writeWKT(sb *strings.Builder, g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		sb.WriteString("POINT(")
		sb.WriteString(pointText(g, " "))
		sb.WriteByte(')')
	case orb.MultiPoint:
		sb.WriteString("MULTIPOINT(")
		for i, p := range g {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(" + pointText(p, " ") + ")")
		}
		sb.WriteByte(')')
	case orb.LineString:
		sb.WriteString("LINESTRING")
		sb.WriteString(wktPath(g))
	case orb.MultiLineString:
		sb.WriteString("MULTILINESTRING(")
		for i, ls := range g {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(wktPath(ls))
		}
		sb.WriteByte(')')
	case orb.Polygon:
		sb.WriteString("POLYGON")
		sb.WriteString(wktRings(g))
	case orb.MultiPolygon:
		sb.WriteString("MULTIPOLYGON(")
		for i, p := range g {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(wktRings(p))
		}
		sb.WriteByte(')')
	case orb.Collection:
		sb.WriteString("GEOMETRYCOLLECTION(")
		for i, c := range g {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeWKT(sb, c)
		}
		sb.WriteByte(')')
	}
}

func wktPath(ls orb.LineString) string {
	parts := make([]string, len(ls))
	for i, p := range ls {
		parts[i] = pointText(p, " ")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func wktRings(p orb.Polygon) string {
	parts := make([]string, len(p))
	for i, r := range p {
		parts[i] = wktPath(orb.LineString(ClosePolygon(r)))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

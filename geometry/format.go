package geometry

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// FormatNumber renders f in the ECMAScript number-to-string form:
// shortest round-trip digits, plain notation between 1e-6 and 1e21.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pointText(p orb.Point, sep string) string {
	return FormatNumber(p[0]) + sep + FormatNumber(p[1])
}

// ClosePolygon returns ring with its first position repeated at the end
// when the ring is open. The input is never modified.
func ClosePolygon(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring[0].Equal(ring[len(ring)-1]) {
		return ring
	}
	closed := make(orb.Ring, len(ring), len(ring)+1)
	copy(closed, ring)
	return append(closed, ring[0])
}

// JoinCoordinates stringifies a decoded JSON coordinate value. Top-level
// elements are joined with sep and nested arrays collapse to
// comma-separated text, which keeps malformed client geometries printable.
func JoinCoordinates(v any, sep string) string {
	arr, ok := v.([]any)
	if !ok {
		return scalarText(v)
	}
	parts := make([]string, len(arr))
	for i, el := range arr {
		parts[i] = JoinCoordinates(el, ",")
	}
	return strings.Join(parts, sep)
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return FormatNumber(x)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

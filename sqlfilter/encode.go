package sqlfilter

import "strings"

// EncoderOptions configures encoding behavior.
type EncoderOptions struct {
	// ColumnMapping maps filter property names to column names.
	// Properties not in the map use their original names.
	ColumnMapping map[string]string

	// ColumnExpressions maps property names to SQL expressions.
	// Takes precedence over ColumnMapping.
	// Use for computed columns or complex transformations.
	ColumnExpressions map[string]string

	// Functions overrides or extends the translation of filter function
	// calls. Keys are the function names as written in the filter.
	Functions map[string]FunctionEncoder
}

// FunctionEncoder renders a function call from its encoded arguments.
// It returns ok=false when the call cannot be expressed in SQL.
type FunctionEncoder func(args []string) (sql string, ok bool)

// escapeString escapes single quotes in a string value for SQL.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteLiteral returns a SQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + escapeString(s) + "'"
}

// quoteIdentifier returns a quoted identifier if needed.
// DuckDB uses double quotes for identifiers.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// needsQuoting returns true if the identifier needs quoting.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}

	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	// Reserved words (simplified list)
	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"JOIN", "ON", "AS", "IN", "IS", "LIKE", "ILIKE", "BETWEEN", "EXISTS",
		"CASE", "WHEN", "THEN", "ELSE", "END", "ORDER", "BY", "GROUP", "HAVING",
		"LIMIT", "OFFSET", "UNION", "ALL", "DISTINCT", "CAST", "INTERVAL",
		"DATE", "TIME", "TIMESTAMP":
		return true
	}

	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

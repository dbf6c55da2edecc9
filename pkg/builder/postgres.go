package builder

import "fmt"

// Array helpers. These render SQL fragments for use with OrderBy, SetExpr
// and Expr; they carry no arguments of their own.

// Cardinality returns the element count of a one-dimensional array column.
// Unlike array_length it yields 0 for an empty array instead of NULL.
func Cardinality(column string) string {
	return fmt.Sprintf("cardinality(%s)", column)
}

// ArrayAppend is a SetExpr expression appending one value to column.
func ArrayAppend(column string) string {
	return fmt.Sprintf("array_append(%s, ?)", column)
}

// ArrayRemove is a SetExpr expression removing every occurrence of a value from column.
func ArrayRemove(column string) string {
	return fmt.Sprintf("array_remove(%s, ?)", column)
}

// ArrayRemoveAll is a SetExpr expression removing every element of a text[]
// argument from column.
func ArrayRemoveAll(column string) string {
	return fmt.Sprintf("ARRAY(SELECT e FROM unnest(%s) WITH ORDINALITY AS t(e, n) WHERE NOT (e = ANY(?::text[])) ORDER BY n)", column)
}

// ArrayOverlap matches rows whose array column shares an element with values.
func ArrayOverlap(column string, values []string) Condition {
	return Expr(column+" && ?::text[]", values)
}

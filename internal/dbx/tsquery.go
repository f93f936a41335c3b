package dbx

import "strings"

// AnyToken rewrites an AND-combined tsquery ("a:* & b:*") into its OR form
// ("a:* | b:*"). Used when a query must select rows with every token but a
// single column counts as matched when it holds any of them.
func AnyToken(tsquery string) string {
	return strings.ReplaceAll(tsquery, " & ", " | ")
}

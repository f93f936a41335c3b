package dbx

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern wraps user text into a case-insensitive-substring LIKE pattern,
// escaping the wildcard characters so caller data never acts as one.
func LikePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards in s so it matches literally under
// Postgres' default backslash escape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern returns a LIKE pattern matching any value that contains s.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}

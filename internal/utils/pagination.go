// Package utils carries tiny helpers with no domain knowledge.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 integer and falls back to def when the
// string is empty or malformed. Handlers use it for optional numeric query
// parameters, where absence and garbage should both mean "use the default".
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

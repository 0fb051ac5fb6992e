package utils

import "strings"

var truthyValues = map[string]bool{
	"1":    true,
	"true": true,
	"yes":  true,
	"on":   true,
}

// IsTruthy returns true only for recognised truthy values (1, true, yes, on).
// Anything else, including unparsable input, is false.
func IsTruthy(s string) bool {
	return truthyValues[strings.ToLower(strings.TrimSpace(s))]
}

// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int, falling back to a default when
// the string is empty or not a valid integer. The handlers use it for
// optional numeric query parameters like batch sizes.
//
// Example:
//
//	n := utils.AtoiDefault("250", 100) // returns 250
//	n = utils.AtoiDefault("", 100)     // returns 100
//	n = utils.AtoiDefault("x", 100)    // returns 100
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

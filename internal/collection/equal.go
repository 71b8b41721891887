package collection

import "golang.org/x/text/unicode/norm"

// EqualFunc defines item identity for lookup-based operations.
type EqualFunc[T any] func(a, b T) bool

// Equal is the EqualFunc for comparable types.
func Equal[T comparable](a, b T) bool {
	return a == b
}

// NormalizedEqual compares strings after NFC normalization, so a precomposed
// "é" and "e"+U+0301 address the same item.
func NormalizedEqual(a, b string) bool {
	if a == b {
		return true
	}
	return norm.NFC.String(a) == norm.NFC.String(b)
}

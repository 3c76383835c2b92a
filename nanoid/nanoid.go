// Package nanoid generates collision-resistant identifiers for records.
package nanoid

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Character sets
const (
	Number        = "0123456789"
	Lowercase     = "abcdefghijklmnopqrstuvwxyz"
	Uppercase     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	NumLowerUpper = Number + Lowercase + Uppercase
)

const (
	primaryKeyAlphabet = NumLowerUpper
	primaryKeySize     = 16

	defaultSize = 16
)

func getSize(l ...int) int {
	size := defaultSize
	if len(l) > 0 {
		size = l[0]
	}
	return size
}

// Must generates an optional length nanoid with the default alphabet
func Must(l ...int) string {
	size := getSize(l...)
	return gonanoid.Must(size)
}

// String generates an optional length nanoid from letters only
func String(l ...int) string {
	size := getSize(l...)
	return gonanoid.MustGenerate(Lowercase+Uppercase, size)
}

// Lower generates an optional length lowercase nanoid
func Lower(l ...int) string {
	size := getSize(l...)
	return gonanoid.MustGenerate(Lowercase, size)
}

// Digits generates an optional length numeric nanoid
func Digits(l ...int) string {
	size := getSize(l...)
	return gonanoid.MustGenerate(Number, size)
}

// PrimaryKey returns a generator for record primary keys
func PrimaryKey(l ...int) func() string {
	size := primaryKeySize
	if len(l) > 0 {
		size = l[0]
	}
	return func() string {
		return gonanoid.MustGenerate(primaryKeyAlphabet, size)
	}
}

// IsPrimaryKey reports whether id looks like a generated primary key
func IsPrimaryKey(id string) bool {
	if id == "" {
		return false
	}
	if len(id) != primaryKeySize {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(primaryKeyAlphabet, r) {
			return false
		}
	}
	return true
}

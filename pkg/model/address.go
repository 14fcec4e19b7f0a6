package model

import (
	"regexp"
	"strings"
)

var (
	addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	nameRe    = regexp.MustCompile(`^[a-z0-9-]+\.base\.eth$`)
)

// NormalizeAddress canonicalizes an address to its lowercase form.
// Every map key in the engine uses this form; equality is case-insensitive.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsAddress reports whether s looks like a 20-byte hex address.
func IsAddress(s string) bool {
	return addressRe.MatchString(s)
}

// NormalizeCommunity canonicalizes a community slug. Slugs are
// case-insensitive; lowercase is the stored form.
func NormalizeCommunity(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// IsBasename reports whether s is a well-formed basename
// (<label>.base.eth) after lowercasing.
func IsBasename(s string) bool {
	return nameRe.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

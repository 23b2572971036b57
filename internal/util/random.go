// Package util provides small shared helpers for the MovePilot application.
package util

import (
	"math/rand"
	"strings"
)

// GenerateRandomID generates a random ID in the format "{prefix}{hex}".
// Uses math/rand; these ids are correlation handles, not secrets.
func GenerateRandomID(prefix string, hexLength int) string {
	return prefix + GenerateRandomHex(hexLength)
}

// GenerateRandomHex generates a random hexadecimal string of the given length.
func GenerateRandomHex(length int) string {
	if length <= 0 {
		return ""
	}

	const hexChars = "0123456789abcdef"
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		builder.WriteByte(hexChars[rand.Intn(16)])
	}
	return builder.String()
}

// GenerateRandomAlphaNumeric generates a random alphanumeric string of the
// given length.
func GenerateRandomAlphaNumeric(length int) string {
	if length <= 0 {
		return ""
	}

	const chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		builder.WriteByte(chars[rand.Intn(len(chars))])
	}
	return builder.String()
}

// GenerateSessionID generates a session correlation id with "s_" prefix,
// assigned when a chat request arrives without one.
func GenerateSessionID() string {
	return GenerateRandomID("s_", 32)
}

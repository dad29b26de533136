// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scrub redacts sensitive content from log messages before they
// are persisted or echoed.
//
// A pipeline is an ordered list of [Scrubber] values applied left to
// right by [Apply]. Each scrubber is a pure text transform: no state, no
// I/O, and applying it twice gives the same result as applying it once.
package scrub

import "regexp"

// Redacted replaces every scrubbed value.
const Redacted = "[FILTERED]"

// Scrubber transforms a message, removing what it considers sensitive.
type Scrubber interface {
	Scrub(input string) string
}

// Func adapts a plain function to the Scrubber interface.
type Func func(input string) string

// Scrub calls f.
func (f Func) Scrub(input string) string { return f(input) }

// Apply runs input through every scrubber in order.
func Apply(scrubbers []Scrubber, input string) string {
	for _, scrubber := range scrubbers {
		input = scrubber.Scrub(input)
	}
	return input
}

// Defaults returns the standard pipeline: passwords, then email
// addresses.
func Defaults() []Scrubber {
	return []Scrubber{Password{}, Email{}}
}

// emailPattern matches the address shape accepted by Android's
// Patterns.EMAIL_ADDRESS, which collectors already filter against.
var emailPattern = regexp.MustCompile(
	`[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(?:\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+`)

// Email replaces every email address with Redacted.
type Email struct{}

// Scrub implements Scrubber.
func (Email) Scrub(input string) string {
	return emailPattern.ReplaceAllLiteralString(input, Redacted)
}

var (
	// passwordPair matches password=value in query strings and form
	// bodies. The value runs to the next & or #.
	passwordPair = regexp.MustCompile(`(?i)(password)=[^&#]*`)

	// passwordField matches a JSON "password" member with a string
	// value. Escaped quotes inside the value are part of the value.
	passwordField = regexp.MustCompile(`(?i)("password"\s*:\s*)"(?:[^"\\]|\\.)*"`)
)

// Password replaces password values in key=value pairs and JSON
// members with Redacted, keeping the key.
type Password struct{}

// Scrub implements Scrubber.
func (Password) Scrub(input string) string {
	input = passwordPair.ReplaceAllString(input, "${1}="+Redacted)
	return passwordField.ReplaceAllString(input, `${1}"`+Redacted+`"`)
}

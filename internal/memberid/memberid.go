// Package memberid formats and validates club member identifiers of the
// form NI-2025-0001. The numeric suffix restarts at 1 each calendar year;
// allocation itself happens through an atomic counter in the repository layer.
package memberid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Prefix is the club tag every member id starts with.
const Prefix = "NI"

var pattern = regexp.MustCompile(`^[A-Z]+-\d{4}-\d{4}$`)

// Format builds the canonical id for a year and sequence number.
// The sequence is zero-padded to 4 digits.
func Format(year, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", Prefix, year, seq)
}

// Valid reports whether s looks like a well-formed member id.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// Parse splits a member id into its year and sequence number.
func Parse(s string) (year, seq int, err error) {
	if !Valid(s) {
		return 0, 0, fmt.Errorf("malformed member id %q", s)
	}
	parts := strings.Split(s, "-")
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, err
	}
	return year, seq, nil
}

package models

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what happens to the output artifact when a run fails
// after the output has been opened.
type FailurePolicy string

const (
	// FailureKeep leaves whatever was written before the failure in place.
	FailureKeep FailurePolicy = "keep"
	// FailureRemove deletes the partially written output.
	FailureRemove FailurePolicy = "remove"
	// FailureAtomic writes to a temp file and renames it over the output only on
	// success, so a failed run never touches the existing output.
	FailureAtomic FailurePolicy = "atomic"
)

// ParseFailurePolicy converts a config or flag value into a FailurePolicy.
// An empty string yields FailureKeep.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return FailureKeep, nil
	case FailureKeep, FailureRemove, FailureAtomic:
		return p, nil
	default:
		return "", fmt.Errorf("invalid failure policy %q (valid: keep, remove, atomic)", s)
	}
}

package models

import "fmt"

// IncludeKind identifies which delimiter form an include directive used.
type IncludeKind int

const (
	// KindQuoted is `#include "target"`, resolved against the including file's
	// directory before the search directories.
	KindQuoted IncludeKind = iota + 1
	// KindAngled is `#include <target>`, resolved against the search directories only.
	KindAngled
)

// String returns the string representation of IncludeKind.
func (k IncludeKind) String() string {
	switch k {
	case KindQuoted:
		return "quoted"
	case KindAngled:
		return "angled"
	default:
		return "unknown"
	}
}

// IncludeDirective is a single parsed include line.
type IncludeDirective struct {
	Kind   IncludeKind // Delimiter form
	Target string      // Path text taken verbatim from between the delimiters
}

// String renders the directive back in its canonical source form.
func (d IncludeDirective) String() string {
	if d.Kind == KindAngled {
		return fmt.Sprintf("#include <%s>", d.Target)
	}
	return fmt.Sprintf("#include \"%s\"", d.Target)
}

// Package directive recognises include directives in single lines of text.
//
// A line is a directive only when the whole line has one of the two shapes
//
//	<ws>#<ws>include<ws>"target"<ws>
//	<ws>#<ws>include<ws><target><ws>
//
// where <ws> is zero or more ASCII whitespace characters. Everything else,
// including an `#include` preceded by other tokens or followed by trailing
// text, is ordinary content.
package directive

import (
	"strings"

	"github.com/harrison/flattener/internal/models"
)

const keyword = "include"

// Classify reports whether line is exactly one include directive and, if so,
// returns it. The target is taken verbatim from between the delimiters and may
// be empty.
func Classify(line string) (models.IncludeDirective, bool) {
	i := skipSpace(line, 0)
	if i >= len(line) || line[i] != '#' {
		return models.IncludeDirective{}, false
	}
	i = skipSpace(line, i+1)
	if !strings.HasPrefix(line[i:], keyword) {
		return models.IncludeDirective{}, false
	}
	i = skipSpace(line, i+len(keyword))
	if i >= len(line) {
		return models.IncludeDirective{}, false
	}

	var kind models.IncludeKind
	var closing byte
	switch line[i] {
	case '"':
		kind, closing = models.KindQuoted, '"'
	case '<':
		kind, closing = models.KindAngled, '>'
	default:
		return models.IncludeDirective{}, false
	}

	// The target stops at the first closing delimiter; anything but whitespace
	// after it disqualifies the line.
	start := i + 1
	end := strings.IndexByte(line[start:], closing)
	if end < 0 {
		return models.IncludeDirective{}, false
	}
	end += start
	if skipSpace(line, end+1) != len(line) {
		return models.IncludeDirective{}, false
	}

	return models.IncludeDirective{Kind: kind, Target: line[start:end]}, true
}

// IsDirective is a convenience wrapper around Classify.
func IsDirective(line string) bool {
	_, ok := Classify(line)
	return ok
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

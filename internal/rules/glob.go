package rules

import (
	"strings"

	"github.com/danwakefield/fnmatch"
)

// glob is a compiled shell-style pattern. '*' matches any run of characters
// including '/' and '.', '?' matches exactly one character and "[seq]" /
// "[!seq]" match a character class. Everything else is literal.
type glob struct {
	// expr is the pattern in fnmatch(3) syntax with backslash escapes.
	expr string
}

// compileGlob rewrites pattern for fnmatch(3). BSD fnmatch differs from
// shell-style patterns in three places, which are escaped here: '^' at the
// start of a class negates it, a ']' right after "[" or "[!" closes an empty
// class, and an unterminated '[' never matches. A backslash is literal.
func compileGlob(pattern string) glob {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '[':
			end := classEnd(runes, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			writeClass(&b, runes[i+1:end])
			i = end
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(c)
		}
	}
	return glob{expr: b.String()}
}

// Match reports whether name matches the whole pattern.
func (g glob) Match(name string) bool {
	return fnmatch.Match(g.expr, name, 0)
}

// isCatchAll reports whether the pattern matches every string.
func isCatchAll(pattern string) bool {
	return pattern != "" && strings.Trim(pattern, "*") == ""
}

// classEnd returns the index of the ']' closing the class opened at start,
// or -1. A ']' directly after "[" or "[!" belongs to the class.
func classEnd(runes []rune, start int) int {
	j := start + 1
	if j < len(runes) && runes[j] == '!' {
		j++
	}
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for ; j < len(runes); j++ {
		if runes[j] == ']' {
			return j
		}
	}
	return -1
}

func writeClass(b *strings.Builder, class []rune) {
	b.WriteByte('[')
	if len(class) > 0 && class[0] == '!' {
		b.WriteByte('!')
		class = class[1:]
	}
	for i, r := range class {
		switch {
		case r == '\\', r == ']':
			b.WriteByte('\\')
		case r == '^' && i == 0:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte(']')
}

package javalyzer

import (
	"regexp"
	"strings"
)

// Category groups the names extracted from Java sources.
type Category string

const (
	Package Category = "package"
	Import  Category = "import"
	Class   Category = "class"
	Method  Category = "method"
)

// Categories lists every category in report order.
var Categories = []Category{Package, Import, Class, Method}

var (
	packageRe = regexp.MustCompile(`\bpackage\s+([\w.]+)\s*;`)
	importRe  = regexp.MustCompile(`\bimport\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)
	classRe   = regexp.MustCompile(`\b(?:class|interface|enum|record)\s+([A-Za-z_$][\w$]*)`)
	// A declaration ends in a body or, for abstract and interface methods,
	// in ';'. Parameters may hold one level of parentheses for annotation
	// arguments such as @Named("x").
	methodRe = regexp.MustCompile(`(\S+)\s+([A-Za-z_$][\w$]*)\s*\((?:[^()]|\([^()]*\))*\)\s*(?:throws\s+[\w$.,\s]+|default\s+[^;{}]*)?[{;]`)
)

// statementWords can precede a parenthesised expression and a block but are
// never method names.
var statementWords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {}, "synchronized": {},
	"try": {}, "do": {}, "else": {}, "return": {}, "new": {}, "throw": {},
	"super": {}, "this": {},
}

// callPrefixes are words that turn a following "name(...);" into a call.
var callPrefixes = map[string]struct{}{
	"return": {}, "throw": {}, "new": {}, "else": {}, "yield": {}, "assert": {},
	"case": {}, "do": {}, "record": {},
}

// declaresReturnType reports whether prev can end the return type of a method
// declaration: an identifier, a generic type or an array type.
func declaresReturnType(prev string) bool {
	if _, ok := callPrefixes[prev]; ok || prev == "->" {
		return false
	}
	last := prev[len(prev)-1]
	switch {
	case last == '>', last == ']', last == '_', last == '$':
		return true
	case last >= 'a' && last <= 'z', last >= 'A' && last <= 'Z', last >= '0' && last <= '9':
		return true
	}
	return false
}

// Names holds the extracted names per category in source order, without
// duplicates.
type Names map[Category][]string

func (n Names) add(c Category, name string) {
	for _, existing := range n[c] {
		if existing == name {
			return
		}
	}
	n[c] = append(n[c], name)
}

// Scan extracts the names declared or referenced by one Java source file.
func Scan(src string) Names {
	code := stripCommentsAndLiterals(src)
	names := make(Names)

	for _, m := range packageRe.FindAllStringSubmatch(code, -1) {
		names.add(Package, m[1])
	}
	for _, m := range importRe.FindAllStringSubmatch(code, -1) {
		names.add(Import, m[1])
	}
	for _, m := range classRe.FindAllStringSubmatch(code, -1) {
		names.add(Class, m[1])
	}
	classes := make(map[string]struct{}, len(names[Class]))
	for _, c := range names[Class] {
		classes[c] = struct{}{}
	}
	for _, m := range methodRe.FindAllStringSubmatch(code, -1) {
		prev, name := m[1], m[2]
		if _, ok := statementWords[name]; ok {
			continue
		}
		if !declaresReturnType(prev) {
			continue
		}
		// constructors
		if _, ok := classes[name]; ok {
			continue
		}
		names.add(Method, name)
	}
	return names
}

// stripCommentsAndLiterals blanks out comments and the contents of string,
// text block and char literals, keeping newlines so that positions stay
// meaningful.
func stripCommentsAndLiterals(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	const (
		code = iota
		lineComment
		blockComment
		stringLit
		textBlock
		charLit
	)
	state := code
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case code:
			switch {
			case strings.HasPrefix(src[i:], "//"):
				state = lineComment
				b.WriteString("  ")
				i++
			case strings.HasPrefix(src[i:], "/*"):
				state = blockComment
				b.WriteString("  ")
				i++
			case strings.HasPrefix(src[i:], `"""`):
				state = textBlock
				b.WriteString(`"""`)
				i += 2
			case c == '"':
				state = stringLit
				b.WriteByte(c)
			case c == '\'':
				state = charLit
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = code
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case blockComment:
			if strings.HasPrefix(src[i:], "*/") {
				state = code
				b.WriteString("  ")
				i++
			} else {
				b.WriteByte(blank(c))
			}
		case textBlock:
			if strings.HasPrefix(src[i:], `"""`) {
				state = code
				b.WriteString(`"""`)
				i += 2
			} else {
				b.WriteByte(blank(c))
			}
		case stringLit, charLit:
			quote := byte('"')
			if state == charLit {
				quote = '\''
			}
			switch {
			case c == '\\' && i+1 < len(src):
				b.WriteString("  ")
				i++
			case c == quote:
				state = code
				b.WriteByte(c)
			case c == '\n':
				state = code
				b.WriteByte(c)
			default:
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func blank(c byte) byte {
	if c == '\n' {
		return '\n'
	}
	return ' '
}

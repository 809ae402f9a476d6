// internal/template/transform.go
//
// Variable substitution and control-tag stripping.
//
// Context
// -------
// `{{name}}` spans are replaced with a JSON literal: the caller-supplied
// default when one exists, otherwise a value inferred from the variable name
// (with an IMPLICIT_CONVERSION warning, so every fabricated value stays
// auditable).  `{% ... %}` spans are removed without evaluation; this is a
// structural approximation sufficient for static validation, not an
// interpreter.
//
// Both token kinds on a line are collected first and rewritten in one
// left-to-right pass, so original columns always refer to the untouched
// line and transformed columns to the rewritten one.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	variablePattern = regexp.MustCompile(`\{\{(.*?)\}\}`)
	controlPattern  = regexp.MustCompile(`\{%\s*\w+[^%]*%\}`)
)

// tokenMatch is one template token found on a line.
type tokenMatch struct {
	start, end int // byte offsets into the original line
	token      TokenType
	name       string // variable name, empty for controls
}

// findTokens collects variable and control spans on one line, ordered by
// start offset.  The two grammars cannot overlap, so a plain sort suffices.
func findTokens(line string) []tokenMatch {
	var out []tokenMatch
	for _, m := range variablePattern.FindAllStringSubmatchIndex(line, -1) {
		out = append(out, tokenMatch{
			start: m[0],
			end:   m[1],
			token: TokenVariable,
			name:  strings.TrimSpace(line[m[2]:m[3]]),
		})
	}
	for _, m := range controlPattern.FindAllStringIndex(line, -1) {
		out = append(out, tokenMatch{start: m[0], end: m[1], token: TokenControl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// transformLine rewrites one line, emitting mappings (when sm is non-nil),
// warnings, and per-kind counters.  origLine is 1-based within file;
// transLine is the 1-based line the output will occupy in the transformed
// document.
func (p *Parser) transformLine(line, file string, origLine, transLine int, sm *SourceMap, st *parseState) string {
	tokens := findTokens(line)
	if len(tokens) == 0 {
		return line
	}

	var b strings.Builder
	last := 0
	for _, tok := range tokens {
		b.WriteString(line[last:tok.start])
		transCol := b.Len() + 1

		switch tok.token {
		case TokenVariable:
			st.variableCount++
			lit, inferred := p.defaultFor(tok.name)
			if inferred {
				st.warnings = append(st.warnings, ParseWarning{
					Kind: WarnImplicitConversion,
					Message: fmt.Sprintf("variable %q has no supplied value; substituted %s",
						tok.name, lit),
					Position: Position{Line: origLine, Column: tok.start + 1},
					File:     file,
				})
			}
			b.WriteString(lit)
		case TokenControl:
			st.controlCount++
			// Stripped whole; nothing is written.
		}

		if sm != nil {
			sm.Add(Mapping{
				OriginalLine:      origLine,
				OriginalColumn:    tok.start + 1,
				TransformedLine:   transLine,
				TransformedColumn: transCol,
				SourceFile:        file,
				Token:             tok.token,
			})
		}
		last = tok.end
	}
	b.WriteString(line[last:])
	return b.String()
}

// defaultFor returns the JSON literal for a variable and whether it was
// inferred (true) rather than supplied by the caller (false).
func (p *Parser) defaultFor(name string) (string, bool) {
	if lit, ok := p.opts.Defaults[name]; ok {
		return lit, false
	}
	return inferDefault(name), true
}

// inferDefault maps a variable name to a plausible JSON literal.  Rules are
// case-insensitive; the first match wins.
func inferDefault(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "is"), strings.HasPrefix(n, "has"),
		strings.Contains(n, "enabled"), strings.Contains(n, "show"):
		return "false"
	case strings.Contains(n, "count"), strings.Contains(n, "size"),
		strings.Contains(n, "length"), strings.Contains(n, "index"):
		return "0"
	case strings.Contains(n, "list"), strings.Contains(n, "items"),
		strings.Contains(n, "array"):
		return "[]"
	case strings.Contains(n, "data"), strings.Contains(n, "config"),
		strings.Contains(n, "options"):
		return "{}"
	case strings.Contains(n, "null"), n == "none":
		return "null"
	default:
		return `""`
	}
}

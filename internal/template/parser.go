// internal/template/parser.go
//
// Pipeline driver: line classification, assembly, and diagnostics.
//
// Context
// -------
// Parse walks the document line by line in original order (later source-map
// entries depend on the cumulative transformed-line counter, so this order
// is a correctness requirement).  Import directives are expanded in place,
// other lines pass through the token transformer, full-line comments become
// empty lines.  The transformed lines are joined, trailing comments outside
// JSON strings are stripped, and the result is parsed; a failure is
// translated back through the source map so the diagnostic names both
// coordinate systems.
//
// A Parser is safe for concurrent use across distinct documents — chain and
// depth state live on the stack of each Parse call.  Defaults must not be
// mutated after New.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yanizio/jsontpl/internal/value"
)

// DefaultMaxImportDepth bounds transitive import hops when Options leaves
// MaxImportDepth unset.
const DefaultMaxImportDepth = 10

// Options configures a Parser.
type Options struct {
	// MaxImportDepth is the maximum number of transitive import hops.
	MaxImportDepth int
	// BasePath anchors relative import paths when the importing document
	// has no path of its own.
	BasePath string
	// Defaults maps variable names to JSON literals.  A supplied default
	// wins over inference and emits no warning.
	Defaults map[string]string
}

// Parser resolves and validates one template dialect document per Parse
// call.
type Parser struct {
	opts Options

	// hook runs before expansion when set.  Failure-injection seam for
	// exercising the recovery boundary in tests.
	hook func()
}

// New returns a Parser.  Zero MaxImportDepth falls back to
// DefaultMaxImportDepth.
func New(opts Options) *Parser {
	if opts.MaxImportDepth <= 0 {
		opts.MaxImportDepth = DefaultMaxImportDepth
	}
	return &Parser{opts: opts}
}

// Stats summarises one parse invocation.
type Stats struct {
	ParseTimeMs    float64 `json:"parseTimeMs"`
	ImportCount    int     `json:"importCount"`
	VariableCount  int     `json:"variableCount"`
	ControlCount   int     `json:"controlCount"`
	TotalSizeBytes int64   `json:"totalSizeBytes"`
}

// Result is the parser output contract.  ExtractedJSON is nil when final
// assembly fails, even if imports and mappings were collected.  JSON
// marshalling lives in result.go.
type Result struct {
	ExtractedJSON *value.Value
	Imports       []ImportInfo
	SourceMap     []Mapping
	Stats         Stats
	Errors        []ParseError
	Warnings      []ParseWarning
}

// OK reports whether assembly succeeded and no errors were recorded.
func (r *Result) OK() bool { return r.ExtractedJSON != nil && len(r.Errors) == 0 }

// parseState accumulates diagnostics and counters across the recursive
// expansion of one document tree.
type parseState struct {
	imports       []ImportInfo
	errors        []ParseError
	warnings      []ParseWarning
	variableCount int
	controlCount  int
	totalSize     int64
}

// ParseFile reads path and parses it with the file's own location as the
// import anchor.
func (p *Parser) ParseFile(path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return p.Parse(src, abs), nil
}

// Parse resolves src into a single JSON document.  originPath may be empty
// for in-memory input; when set it anchors relative imports and seeds the
// cycle-detection chain.  Parse never panics past this boundary.
func (p *Parser) Parse(src []byte, originPath string) (res *Result) {
	start := time.Now()
	res = &Result{}
	defer func() {
		if r := recover(); r != nil {
			res.ExtractedJSON = nil
			res.Errors = append(res.Errors, ParseError{
				Kind:    ErrUnknown,
				Message: fmt.Sprintf("internal error: %v", r),
				File:    originPath,
			})
		}
		res.Stats.ParseTimeMs = float64(time.Since(start).Microseconds()) / 1000
	}()

	if p.hook != nil {
		p.hook()
	}

	st := &parseState{totalSize: int64(len(src))}
	var chain []string
	if originPath != "" {
		// Cycle checks compare resolved absolute paths, so the seed must be
		// absolute too or a relative origin defeats self-import detection.
		seed := originPath
		if abs, err := filepath.Abs(originPath); err == nil {
			seed = abs
		}
		chain = []string{seed}
	}

	sm := &SourceMap{}
	lines := p.expandDocument(string(src), originPath, chain, 0, st, sm)
	assembled := stripComments(strings.Join(lines, "\n"))

	res.Imports = st.imports
	res.SourceMap = sm.Entries()
	res.Errors = st.errors
	res.Warnings = st.warnings
	res.Stats.ImportCount = len(st.imports)
	res.Stats.VariableCount = st.variableCount
	res.Stats.ControlCount = st.controlCount
	res.Stats.TotalSizeBytes = st.totalSize

	val, err := value.Decode([]byte(assembled))
	if err != nil {
		perr := ParseError{Kind: ErrInvalidJSON, File: originPath}
		if off := value.Offset(err); off >= 0 {
			pos := offsetToPosition(assembled, off)
			perr.Position = pos
			if m, ok := sm.Lookup(pos.Line, pos.Column); ok {
				perr.Message = fmt.Sprintf(
					"invalid JSON at %s (source %s:%d:%d): %v",
					pos, m.SourceFile, m.OriginalLine, m.OriginalColumn, err)
			} else {
				perr.Message = fmt.Sprintf("invalid JSON at %s: %v", pos, err)
			}
		} else {
			perr.Message = fmt.Sprintf("invalid JSON: %v", err)
		}
		res.Errors = append(res.Errors, perr)
		return res
	}
	res.ExtractedJSON = &val
	return res
}

// expandDocument transforms one document's text into output lines.  sm is
// nil for imported documents: their text lands inside an embedded region
// whose single import mapping covers it.
func (p *Parser) expandDocument(text, file string, chain []string, depth int, st *parseState, sm *SourceMap) []string {
	rawLines := strings.Split(text, "\n")
	out := make([]string, 0, len(rawLines))
	ctx := &containerTracker{}

	for i, line := range rawLines {
		if m := importPattern.FindStringSubmatch(line); m != nil {
			indent, desc, rawPath := m[1], m[2], m[3]
			pos := Position{Line: i + 1, Column: len(indent) + 1}

			exp, perr := p.resolveImport(indent, desc, rawPath, file, pos, chain, depth, ctx.current(), st)
			if perr != nil {
				st.errors = append(st.errors, *perr)
				out = append(out, "") // directive dropped, line count kept
				continue
			}

			if sm != nil {
				sm.Add(Mapping{
					OriginalLine:      pos.Line,
					OriginalColumn:    pos.Column,
					TransformedLine:   len(out) + 1,
					TransformedColumn: pos.Column,
					SourceFile:        exp.info.Resolved,
					Token:             TokenImport,
				})
			}
			st.imports = append(st.imports, exp.info)

			embedded := exp.lines
			if exp.separable && needsSeparator(rawLines, i+1) {
				embedded[len(embedded)-1] += ","
			}
			for _, e := range embedded {
				ctx.feed(e)
			}
			out = append(out, embedded...)
			continue
		}

		if isCommentLine(line) {
			out = append(out, "")
			continue
		}

		transformed := p.transformLine(line, file, i+1, len(out)+1, sm, st)
		ctx.feed(transformed)
		out = append(out, transformed)
	}
	return out
}

// containerTracker follows the innermost open JSON container across emitted
// lines so import directives know whether they sit in object, array, or
// top-level position.
type containerTracker struct {
	stack []byte
}

// feed scans one emitted line, ignoring string contents and trailing
// comments.
func (t *containerTracker) feed(line string) {
	line = stripComments(line)
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			t.stack = append(t.stack, c)
		case c == '}' || c == ']':
			if n := len(t.stack); n > 0 {
				t.stack = t.stack[:n-1]
			}
		}
	}
}

// current returns '{', '[', or 0 for top level.
func (t *containerTracker) current() byte {
	if n := len(t.stack); n > 0 {
		return t.stack[n-1]
	}
	return 0
}

// needsSeparator reports whether embedded content must end with a comma to
// compose with what follows: yes unless the next content line closes the
// enclosing container or the document ends.  A line is content only if
// something survives control stripping and comment removal, so a bare
// `{% endif %}` line counts the same as a blank one.
func needsSeparator(lines []string, next int) bool {
	for _, line := range lines[next:] {
		if importPattern.MatchString(line) {
			return true // a sibling import expands to content
		}
		rest := strings.TrimSpace(stripComments(controlPattern.ReplaceAllString(line, "")))
		if rest == "" {
			continue
		}
		return rest[0] != '}' && rest[0] != ']'
	}
	return false
}

// isCommentLine reports whether the line holds nothing but a // comment.
// Import directives match this shape too, so test them first.
func isCommentLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "//")
}

// stripComments removes trailing // comments outside JSON strings.  The
// scan tracks string state per line so protocol-relative text such as
// "https://example.com" survives.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		inString := false
		escaped := false
		for j := 0; j < len(line); j++ {
			c := line[j]
			switch {
			case escaped:
				escaped = false
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case c == '/' && !inString && j+1 < len(line) && line[j+1] == '/':
				lines[i] = strings.TrimRight(line[:j], " \t")
				j = len(line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// offsetToPosition converts a byte offset into a 1-based line/column within
// text by counting newlines up to the offset.
func offsetToPosition(text string, offset int64) Position {
	if offset < 0 {
		return Position{}
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	line, col := 1, 1
	for _, c := range []byte(text[:offset]) {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Line: line, Column: col}
}

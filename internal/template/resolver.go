// internal/template/resolver.go
//
// Import-directive expansion.
//
// Context
// -------
// A directive is a structured comment occupying a whole line:
//
//	// [shared palette](file://partials/palette.json)
//
// Relative paths resolve against the importing file's directory, falling
// back to the configured base path when the importing document has no path
// (e.g., it arrived over HTTP).  The target is run through the same line
// pipeline — nested directives, variables, and controls included — then
// parsed as JSON and re-serialised with the directive line's indentation.
//
// Failure policy: a failed directive aborts embedding for that directive
// only.  The error is recorded, the line becomes empty, and the rest of the
// document continues to resolve.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yanizio/jsontpl/internal/value"
)

// importPattern: the exact single-line directive shape.  Any other //-line
// is a plain comment.
var importPattern = regexp.MustCompile(`^(\s*)//\s*\[([^\]]*)\]\(file://([^)]+)\)\s*$`)

// ImportInfo describes one successfully expanded directive.
type ImportInfo struct {
	Path        string   `json:"path"`         // as written in the directive
	Resolved    string   `json:"resolved"`     // absolute path on disk
	Description string   `json:"description"`  // human label from the directive
	Position    Position `json:"position"`     // directive location in its file
	File        string   `json:"file"`         // file containing the directive
	Recursive   bool     `json:"recursive"`    // target contained further imports
	Content     string   `json:"-"`            // embedded content, compact JSON
}

// expansion is the transformed payload a successful directive contributes.
type expansion struct {
	info      ImportInfo
	lines     []string
	separable bool // false when nothing may follow (empty splice, top level)
}

// resolveImport expands one matched directive.  chain holds the resolved
// absolute paths from the root document to (and including) the importing
// file; depth is the number of hops taken so far.  container is the
// innermost open container at the directive: '{' splices the imported
// object's members into place, '[' and top level embed the value verbatim.
func (p *Parser) resolveImport(indent, desc, rawPath, file string, pos Position, chain []string, depth int, container byte, st *parseState) (*expansion, *ParseError) {
	resolved := p.resolvePath(rawPath, file)

	if _, err := os.Stat(resolved); err != nil {
		return nil, &ParseError{
			Kind:     ErrFileNotFound,
			Message:  fmt.Sprintf("import target %q not found (resolved %s)", rawPath, resolved),
			Position: pos,
			File:     file,
		}
	}
	if depth >= p.opts.MaxImportDepth {
		return nil, &ParseError{
			Kind: ErrImport,
			Message: fmt.Sprintf("import depth %d exceeds maximum %d for %q",
				depth+1, p.opts.MaxImportDepth, rawPath),
			Position: pos,
			File:     file,
		}
	}
	for _, seen := range chain {
		if seen == resolved {
			return nil, &ParseError{
				Kind: ErrCircularImport,
				Message: fmt.Sprintf("circular import: %s -> %s",
					strings.Join(chain, " -> "), resolved),
				Position: pos,
				File:     file,
			}
		}
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &ParseError{
			Kind:     ErrImport,
			Message:  fmt.Sprintf("read %s: %v", resolved, err),
			Position: pos,
			File:     file,
		}
	}
	st.totalSize += int64(len(raw))

	// Recursive pass: nested directives extend the chain; their diagnostics
	// land in the shared state with positions inside the imported file.  No
	// source-map entries are emitted here — the embedded text has its own
	// coordinate space, and the directive's single entry covers the region.
	before := len(st.imports)
	subLines := p.expandDocument(string(raw), resolved, append(chain, resolved), depth+1, st, nil)
	recursive := len(st.imports) > before

	cleaned := stripComments(strings.Join(subLines, "\n"))
	val, err := value.Decode([]byte(cleaned))
	if err != nil {
		perr := &ParseError{
			Kind:    ErrInvalidJSON,
			Message: fmt.Sprintf("imported file is not valid JSON: %v", err),
			File:    resolved,
		}
		if off := value.Offset(err); off >= 0 {
			perr.Position = offsetToPosition(cleaned, off)
		}
		return nil, perr
	}

	rendered, separable, perr := renderEmbedding(val, container, indent, rawPath, pos, file)
	if perr != nil {
		return nil, perr
	}
	exp := &expansion{
		info: ImportInfo{
			Path:        rawPath,
			Resolved:    resolved,
			Description: desc,
			Position:    pos,
			File:        file,
			Recursive:   recursive,
			Content:     value.Encode(val),
		},
		lines:     strings.Split(rendered, "\n"),
		separable: separable,
	}
	return exp, nil
}

// renderEmbedding serialises val for its surrounding container.  Inside an
// object the import must itself be an object and its members are spliced in
// without braces; inside an array, or at top level, the value embeds
// verbatim.  Top-level embeds never take a separator.
func renderEmbedding(val value.Value, container byte, indent, rawPath string, pos Position, file string) (string, bool, *ParseError) {
	switch container {
	case '{':
		if val.Kind() != value.Object {
			return "", false, &ParseError{
				Kind: ErrImport,
				Message: fmt.Sprintf("import %q is a %s; only objects can embed into an object member position",
					rawPath, val.Kind()),
				Position: pos,
				File:     file,
			}
		}
		members := val.Members()
		if len(members) == 0 {
			return "", false, nil
		}
		var b strings.Builder
		for i, m := range members {
			if i > 0 {
				b.WriteString(",\n")
			}
			b.WriteString(indent)
			b.WriteString(value.Encode(value.StringValue(m.Key)))
			b.WriteString(": ")
			b.WriteString(value.EncodeIndent(m.Value, indent, value.DefaultIndent))
		}
		return b.String(), true, nil
	case '[':
		return indent + value.EncodeIndent(val, indent, value.DefaultIndent), true, nil
	default:
		return indent + value.EncodeIndent(val, indent, value.DefaultIndent), false, nil
	}
}

// resolvePath turns a directive path into a cleaned absolute path.
func (p *Parser) resolvePath(rawPath, importingFile string) string {
	if filepath.IsAbs(rawPath) {
		return filepath.Clean(rawPath)
	}
	base := p.opts.BasePath
	if importingFile != "" {
		base = filepath.Dir(importingFile)
	}
	if base == "" {
		base = "."
	}
	abs, err := filepath.Abs(filepath.Join(base, rawPath))
	if err != nil {
		return filepath.Clean(filepath.Join(base, rawPath))
	}
	return abs
}

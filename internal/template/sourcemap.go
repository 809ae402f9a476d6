// internal/template/sourcemap.go
//
// Transformed-to-original coordinate mapping.
//
// Context
// -------
// Every replaced token (import directive, variable, control tag) appends
// exactly one entry while the transformer walks the document, so entries are
// naturally ordered by transformed line.  Untouched text emits nothing; an
// implicit 1:1 mapping is assumed there, which holds because dropped lines
// are replaced by empty lines rather than removed.
package template

// TokenType tags the template construct a mapping entry was emitted for.
type TokenType string

const (
	TokenImport   TokenType = "import"
	TokenVariable TokenType = "variable"
	TokenControl  TokenType = "control"
)

// priority orders token kinds for tie-breaking: import > variable > control.
func (t TokenType) priority() int {
	switch t {
	case TokenImport:
		return 3
	case TokenVariable:
		return 2
	case TokenControl:
		return 1
	}
	return 0
}

// Mapping links one transformed position back to its original source.
// SourceFile is the file the emitted content came from: the imported file
// for import entries, the file containing the token otherwise.
type Mapping struct {
	OriginalLine      int       `json:"originalLine"`
	OriginalColumn    int       `json:"originalColumn"`
	TransformedLine   int       `json:"transformedLine"`
	TransformedColumn int       `json:"transformedColumn"`
	SourceFile        string    `json:"sourceFile,omitempty"`
	Token             TokenType `json:"tokenType"`
}

// SourceMap is an append-only list of Mappings in transform order.
type SourceMap struct {
	entries []Mapping
}

// Add appends one entry.
func (m *SourceMap) Add(e Mapping) { m.entries = append(m.entries, e) }

// Entries returns the backing slice.  Callers must treat it as read-only.
func (m *SourceMap) Entries() []Mapping { return m.entries }

// Len reports the number of entries.
func (m *SourceMap) Len() int { return len(m.entries) }

// Lookup returns the nearest entry at or before the transformed position.
// Among entries at the same position the higher-priority token kind wins.
func (m *SourceMap) Lookup(line, col int) (Mapping, bool) {
	var best Mapping
	found := false
	for _, e := range m.entries {
		if e.TransformedLine > line ||
			(e.TransformedLine == line && e.TransformedColumn > col) {
			continue
		}
		if !found || closer(e, best) {
			best = e
			found = true
		}
	}
	return best, found
}

// closer reports whether a supersedes b as the nearest preceding entry.
func closer(a, b Mapping) bool {
	if a.TransformedLine != b.TransformedLine {
		return a.TransformedLine > b.TransformedLine
	}
	if a.TransformedColumn != b.TransformedColumn {
		return a.TransformedColumn > b.TransformedColumn
	}
	return a.Token.priority() > b.Token.priority()
}

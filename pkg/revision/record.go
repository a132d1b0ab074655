package revision

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type (
	// Record represents a single migration script parsed from a branch's
	// revisions directory.
	Record struct {
		// ID is the script's own revision identifier, an opaque short
		// alphanumeric token. Unique within one branch's revision set.
		ID string

		// DownRevision is the identifier of the revision this script is
		// chained onto, or nil for the root of the branch's history.
		DownRevision *string

		// Path is the repository-relative path of the script as committed
		// to the branch it was read from.
		Path string
	}

	// assignment matches a single Alembic header line. Both template
	// generations are accepted:
	//
	//	revision = 'abc123def456'
	//	revision: str = "abc123def456"
	//	down_revision: str | None = None
	//	down_revision: Union[str, None] = 'abc123def456'
	assignment struct {
		Name       string   `parser:"@Ident"`
		Annotation []string `parser:"( \":\" ( @Ident | @\"[\" | @\"]\" | @\",\" | @\"|\" )* )?"`
		Value      string   `parser:"\"=\" ( @String | @Ident )"`
	}
)

var (
	headerLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `[:=\[\],|]`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
	})

	headerParser = participle.MustBuild[assignment](
		participle.Lexer(headerLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseScript extracts a Record from a migration script's content. The
// content is scanned line by line for revision and down_revision
// assignments; all other lines are ignored.
//
// Returns ok=false when no revision id could be extracted. Callers are
// expected to skip such scripts rather than fail; a stray file in the
// revisions directory must not block planning.
func ParseScript(path, content string) (*Record, bool) {
	rec := &Record{Path: path}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "revision ") || strings.HasPrefix(line, "revision:") || strings.HasPrefix(line, "revision="):
			if v, ok := parseHeaderValue(line); ok && v != nil {
				rec.ID = *v
			}
		case strings.HasPrefix(line, "down_revision"):
			if v, ok := parseHeaderValue(line); ok {
				rec.DownRevision = v
			}
		}
	}

	if rec.ID == "" {
		return nil, false
	}

	return rec, true
}

// parseHeaderValue parses an assignment line and returns its value with
// surrounding quotes stripped. A literal None yields (nil, true).
func parseHeaderValue(line string) (*string, bool) {
	a, err := headerParser.ParseString("", line)
	if err != nil {
		return nil, false
	}

	v := strings.Trim(a.Value, `'"`)
	if v == "None" || v == "" {
		return nil, true
	}

	return &v, true
}

package reference

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrInvalidID indicates a reference id that does not follow the
// "{version}/{BOOK}.{chapter}[.{verse}[-{endVerse}]]" form.
var ErrInvalidID = errors.New("invalid reference id")

// ID is a parsed canonical reference id.
type ID struct {
	VersionID int
	Book      string
	Chapter   int
	Verse     *int
	EndVerse  *int

	// VersionAbbr is the optional trailing abbreviation of bible.com URLs,
	// as in "111/JHN.3.16.NIV".
	VersionAbbr string
}

type idGrammar struct {
	Version     int    `parser:"@Int '/'"`
	Book        string `parser:"@Ident"`
	Chapter     *int   `parser:"( '.' @Int"`
	Verse       *int   `parser:"  ( '.' @Int"`
	EndVerse    *int   `parser:"    ( '-' @Int )? )? )?"`
	VersionAbbr string `parser:"( '.' @Ident )?"`
}

// Book ids may start with a digit ("1CO"), so Ident is tried before Int.
var idLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[0-9]*[A-Za-z][A-Za-z0-9]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[./\-]`},
})

var idParser = participle.MustBuild[idGrammar](
	participle.Lexer(idLexer),
	participle.UseLookahead(2),
)

// ParseID parses a canonical reference id. The chapter defaults to 1 when
// the id names only a book.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, fmt.Errorf("%w: empty", ErrInvalidID)
	}

	parsed, err := idParser.ParseString("", s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q: %v", ErrInvalidID, s, err)
	}

	id := ID{
		VersionID:   parsed.Version,
		Book:        strings.ToUpper(parsed.Book),
		Chapter:     1,
		Verse:       parsed.Verse,
		EndVerse:    parsed.EndVerse,
		VersionAbbr: parsed.VersionAbbr,
	}
	if parsed.Chapter != nil {
		id.Chapter = max(*parsed.Chapter, 1)
	}
	if id.Verse != nil && *id.Verse < 1 {
		id.Verse = intPtr(1)
	}
	return id, nil
}

// IDFromURL extracts the reference id from a reference URL such as
// "https://www.bible.com/bible/111/JHN.3.16.NIV". Input that is already an
// id is returned unchanged.
func IDFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		path = u.Path
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 {
		return path
	}
	return strings.Join(segments[len(segments)-2:], "/")
}

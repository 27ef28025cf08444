package reference

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// queryPattern is the reference grammar over normalized text:
//
//	book     = digit? (letter | space)+ | digit
//	chapter  = digits space?
//	verse    = digits space?            (only after a chapter)
//	endVerse = digits space?            (only after a verse)
//	version  = letter digits? (letter digits? | space)*   (lazy)
//
// The book fragment is greedy and the version tail is lazy, so the book
// gives up nothing to the version: "genesis kjv" is a book fragment alone.
var queryPattern = regexp.MustCompile(
	`^(\d?[\pL\pM ]+|\d)` +
		` ?(?:(\d+) ?(?:(\d+) ?(?:(\d+) ?)?)?)?` +
		`([\pL\pM]\d*(?:[\pL\pM]\d*| )*?)?$`,
)

// Parse decomposes a normalized query into search parameters.
// It returns false when the grammar does not consume the whole string.
func Parse(normalized string) (domain.SearchParams, bool) {
	m := queryPattern.FindStringSubmatch(normalized)
	if m == nil {
		return domain.SearchParams{}, false
	}

	book := strings.TrimSpace(m[1])
	if book == "" {
		return domain.SearchParams{}, false
	}

	params := domain.SearchParams{Book: book}
	if m[2] != "" {
		params.Chapter = intPtr(max(atoi(m[2]), 1))
	}
	if m[3] != "" {
		params.Verse = intPtr(max(atoi(m[3]), 1))
	}
	if m[4] != "" {
		// taken literally, no lower bound
		params.EndVerse = intPtr(atoi(m[4]))
	}
	if m[5] != "" {
		params.Version = Normalize(m[5])
	}

	return params, true
}

// atoi parses a run of ASCII digits, saturating on overflow.
func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}

func intPtr(n int) *int {
	return &n
}

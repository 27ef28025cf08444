package reference

import (
	"sort"
	"strings"

	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// PriorityStride separates word positions in a book match priority.
// Catalog order only breaks ties correctly while a catalog holds fewer
// than PriorityStride books and names have fewer than PriorityStride words.
const PriorityStride = 100

// MatchBooks returns the books whose name has a word suffix starting with
// fragment, ordered by priority. A match on an earlier word always ranks
// ahead of a match on a later word; catalog order breaks ties.
func MatchBooks(books []domain.Book, fragment string, metadata map[string]domain.BookMetadata) []domain.BookMatch {
	var matches []domain.BookMatch
	for i, book := range books {
		w, ok := matchWord(book.Name, fragment)
		if !ok {
			continue
		}
		matches = append(matches, domain.BookMatch{
			Book:     book,
			Priority: (w+1)*PriorityStride + i,
			Metadata: metadata[book.ID],
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Priority < matches[b].Priority
	})
	return matches
}

// matchWord finds the first word of name from which the rest of the name
// starts with fragment.
func matchWord(name, fragment string) (int, bool) {
	words := strings.Fields(Normalize(name))
	for w := range words {
		if strings.HasPrefix(strings.Join(words[w:], " "), fragment) {
			return w, true
		}
	}
	return 0, false
}

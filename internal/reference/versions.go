package reference

import (
	"strings"

	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// MatchVersion resolves a version fragment to a catalog version.
//
// The fragment is tried at every length from longest to shortest, first
// for an exact name match and only then for a name prefix match, so "niv"
// picks "NIV" over "NIVUK". The prefix pass ends with the empty fragment,
// which matches the first version; MatchVersion only fails on an empty
// catalog.
func MatchVersion(versions []domain.Version, fragment string) (domain.Version, bool) {
	names := make([]string, len(versions))
	for i, v := range versions {
		names[i] = Normalize(v.Name)
	}
	runes := []rune(fragment)

	for _, match := range []func(name, prefix string) bool{
		func(name, prefix string) bool { return name == prefix },
		strings.HasPrefix,
	} {
		for n := len(runes); n >= 0; n-- {
			prefix := string(runes[:n])
			for i, name := range names {
				if match(name, prefix) {
					return versions[i], true
				}
			}
		}
	}

	return domain.Version{}, false
}

package filter

import "strings"

// Keywords holds include/exclude substring lists for content matching.
// A nil list means the corresponding predicate never fires; it does not
// mean "match everything".
type Keywords struct {
	Includes []string `json:"includes,omitempty" toml:"includes"`
	Excludes []string `json:"excludes,omitempty" toml:"excludes"`
}

// MatchesIncludes reports whether any text fragment contains any include
// term. Matching is raw case-sensitive substring containment, no
// tokenization.
func (k *Keywords) MatchesIncludes(texts []string) bool {
	if k.Includes == nil {
		return false
	}
	return containsAny(texts, k.Includes)
}

// MatchesExcludes is MatchesIncludes over the exclude list.
func (k *Keywords) MatchesExcludes(texts []string) bool {
	if k.Excludes == nil {
		return false
	}
	return containsAny(texts, k.Excludes)
}

func containsAny(texts, terms []string) bool {
	for _, text := range texts {
		for _, term := range terms {
			if strings.Contains(text, term) {
				return true
			}
		}
	}
	return false
}

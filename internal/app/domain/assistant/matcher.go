package assistant

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// categorySynonyms mirrors the keyword hints of the classifier prompt.
// Order matters: the pattern index maps back to the category.
var categorySynonyms = []struct {
	category string
	words    []string
}{
	{"atm", []string{"atm", "banka", "para çekme"}},
	{"cafe", []string{"kafe", "kahve", "coffee"}},
	{"restaurant", []string{"restoran", "yemek", "lokanta"}},
	{"pharmacy", []string{"eczane", "ilaç"}},
	{"hospital", []string{"hastane", "sağlık"}},
	{"market", []string{"market", "süpermarket", "bakkal"}},
	{"park", []string{"park", "yeşil alan"}},
	{"museum", []string{"müze", "sanat galerisi"}},
}

// categoryMatcher is the offline fallback for the model-based category
// classifier: a keyword automaton over the same synonym table. Matching
// is done on Turkish-lowercased text because ASCII case folding cannot
// handle İ/ı.
type categoryMatcher struct {
	ac         ahocorasick.AhoCorasick
	categories []string
	lower      cases.Caser
}

func newCategoryMatcher() *categoryMatcher {
	patterns := []string{}
	categories := []string{}
	for _, entry := range categorySynonyms {
		for _, word := range entry.words {
			patterns = append(patterns, word)
			categories = append(categories, entry.category)
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchOnlyWholeWords: true,
		MatchKind:           ahocorasick.LeftMostLongestMatch,
	})

	return &categoryMatcher{
		ac:         builder.Build(patterns),
		categories: categories,
		lower:      cases.Lower(language.Turkish),
	}
}

// Match returns the category of the first keyword found in the message,
// or an empty string.
func (m *categoryMatcher) Match(message string) string {
	matches := m.ac.FindAll(m.lower.String(message))
	if len(matches) == 0 {
		return ""
	}
	return m.categories[matches[0].Pattern()]
}

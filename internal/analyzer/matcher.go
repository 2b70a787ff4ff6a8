package analyzer

import (
	"strings"
	"unicode"
)

// TermMatch represents occurrences of a search term within a piece of text.
type TermMatch struct {
	Term      string   `json:"term"`
	URL       string   `json:"url"`
	Count     int      `json:"count"`
	Sentences []string `json:"sentences"`
}

// Terms splits a free-text query into lowercase terms. Search operators such
// as site:example.com are dropped, as are duplicates.
func Terms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ':' && r != '.'
	})

	terms := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if strings.Contains(f, ":") {
			continue
		}
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// Slug turns the last path segments of a URL into plain words, so
// "/products/leather-tote-bag" reads "products leather tote bag".
func Slug(path string) string {
	return strings.Join(strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '-' || r == '_' || r == '.' || r == '+'
	}), " ")
}

// Score rates how well text matches terms. Every distinct term found is worth
// more than any number of repeats, so "tote bag" ranks a page naming both
// words above one repeating "bag".
func Score(text string, terms []string) int {
	if text == "" || len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)

	score := 0
	for _, term := range terms {
		n := strings.Count(lower, strings.ToLower(term))
		if n == 0 {
			continue
		}
		score += 100 + min(n, 99)
	}
	return score
}

// FindTermMatches scans the provided content for each term (case-insensitive) and
// returns a slice of TermMatch. For each occurrence, the surrounding sentence is
// extracted.
func FindTermMatches(content, url string, terms []string) []TermMatch {
	if len(content) == 0 || len(terms) == 0 {
		return nil
	}

	results := make([]TermMatch, 0, len(terms))
	lowerContent := strings.ToLower(content)

	sentences := splitIntoSentences(content)

	for _, term := range terms {
		lowerTerm := strings.ToLower(term)
		count := strings.Count(lowerContent, lowerTerm)
		if count == 0 {
			continue
		}

		var matched []string
		for _, s := range sentences {
			if strings.Contains(s.lower, lowerTerm) {
				matched = append(matched, s.original)
			}
		}

		results = append(results, TermMatch{
			Term:      term,
			URL:       url,
			Count:     count,
			Sentences: matched,
		})
	}
	return results
}

// sentence holds original and lowercase versions together
type sentence struct {
	original string
	lower    string
}

// splitIntoSentences naively splits text into sentences using '.', '!' or '?' as
// delimiters while preserving the delimiter at the end of each sentence.
func splitIntoSentences(text string) []sentence {
	if len(text) == 0 {
		return nil
	}

	// Estimate sentence count: roughly 1 sentence per 50 chars average
	estimated := max(len(text)/50, 1)

	sentences := make([]sentence, 0, estimated)
	start := 0

	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			end := i + 1
			for end < len(text) && unicode.IsSpace(rune(text[end])) {
				end++
			}
			orig := strings.TrimSpace(text[start:end])
			sentences = append(sentences, sentence{
				original: orig,
				lower:    strings.ToLower(orig),
			})
			start = end
		}
	}

	if start < len(text) {
		orig := strings.TrimSpace(text[start:])
		sentences = append(sentences, sentence{
			original: orig,
			lower:    strings.ToLower(orig),
		})
	}

	return sentences
}

package collect

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/company-brief/internal/types"
)

// Sentence length bounds, in characters, for DedupeSentences.
const (
	MinSentenceLength = 30
	MaxSentenceLength = 300
)

// FilterByDomain keeps results whose normalized domain contains one of the
// preferred substrings (case-insensitive). An empty preferred list keeps every
// domain. At most one result per domain is kept, first occurrence wins, and
// the output is truncated to limit when limit > 0.
func FilterByDomain(results []types.SearchResult, preferred []string, limit int) []types.SearchResult {
	needles := make([]string, 0, len(preferred))
	for _, p := range preferred {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			needles = append(needles, p)
		}
	}

	seen := make(map[string]bool)
	filtered := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		if limit > 0 && len(filtered) >= limit {
			break
		}

		domain := r.Domain
		if domain == "" {
			domain = types.NormalizeDomain(r.URL)
		}
		if domain == "" || seen[domain] {
			continue
		}
		if len(needles) > 0 && !matchesAny(domain, needles) {
			continue
		}

		seen[domain] = true
		r.Domain = domain
		filtered = append(filtered, r)
	}
	return filtered
}

func matchesAny(domain string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(domain, n) {
			return true
		}
	}
	return false
}

// DedupeSentences splits text into sentences, drops sentences outside the
// length bounds and case-insensitive exact repeats, and stops after
// maxSentences (0 means no limit). Kept sentences are joined by single
// spaces in their original order. Applying it twice gives the same result
// as applying it once.
func DedupeSentences(text string, maxSentences int) string {
	seen := make(map[string]bool)
	var kept []string

	for _, sentence := range splitSentences(text) {
		if maxSentences > 0 && len(kept) >= maxSentences {
			break
		}
		n := utf8.RuneCountInString(sentence)
		if n < MinSentenceLength || n > MaxSentenceLength {
			continue
		}
		key := strings.ToLower(sentence)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, sentence)
	}

	return strings.Join(kept, " ")
}

// splitSentences breaks text after runs of '.', '!' or '?' that are followed
// by whitespace or the end of text. Terminators stay with their sentence, so
// "$10.5M" and "example.com" are not split.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")

	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		j := i
		for j+1 < len(text) && isTerminator(text[j+1]) {
			j++
		}
		if j+1 == len(text) || text[j+1] == ' ' {
			if s := strings.TrimSpace(text[start : j+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// BuildSnippetContext formats results as TITLE/URL/SNIPPET blocks separated
// by "---" lines.
func BuildSnippetContext(results []types.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("TITLE: %s\nURL: %s\nSNIPPET: %s", r.Title, r.URL, r.Snippet))
	}
	return strings.Join(blocks, "\n---\n")
}

// Qualifying returns the results that can serve as a source: those with a
// URL that resolves to a domain.
func Qualifying(results []types.SearchResult) []types.SearchResult {
	var out []types.SearchResult
	for _, r := range results {
		if r.URL != "" && types.NormalizeDomain(r.URL) != "" {
			out = append(out, r)
		}
	}
	return out
}

// AppendDocument adds uploaded document text to the end of every section's
// context. Empty document text leaves the context unchanged.
func AppendDocument(ctx types.SectionContext, documentText string) types.SectionContext {
	documentText = strings.TrimSpace(documentText)
	if documentText == "" {
		return ctx
	}
	out := make(types.SectionContext, len(ctx))
	for i, s := range ctx {
		out[i] = types.SectionText{Label: s.Label, Text: joinNonEmpty(" ", s.Text, documentText)}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// Package feedback supplies few-shot correction examples to the reasoning
// engine: keyword extraction for overlap matching, two-tier retrieval over
// the feedback store, and prompt formatting.
package feedback

import (
	"regexp"
	"strings"
)

// minKeywordLength is the shortest token considered meaningful.
const minKeywordLength = 3

// stopwords filters common English words plus domain filler that appears in
// nearly every product description and carries no matching signal.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "up": {}, "about": {}, "into": {}, "over": {}, "after": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "shall": {}, "can": {}, "need": {}, "dare": {},
	"ought": {}, "used": {}, "it": {}, "its": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "i": {}, "you": {}, "he": {}, "she": {},
	"we": {}, "they": {}, "what": {}, "which": {}, "who": {}, "whom": {},
	"when": {}, "where": {}, "why": {}, "how": {}, "all": {}, "each": {},
	"every": {}, "both": {}, "few": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "such": {}, "no": {}, "nor": {}, "not": {}, "only": {},
	"own": {}, "same": {}, "so": {}, "than": {}, "too": {}, "very": {},
	"just": {}, "also": {}, "now": {}, "here": {}, "there": {}, "then": {},
	"once": {}, "any": {}, "if": {},
	"product": {}, "item": {}, "box": {}, "package": {}, "description": {},
	"approximately": {}, "approx": {}, "around": {}, "roughly": {},
	"exactly": {}, "please": {}, "thanks": {},
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// tokenize splits text into lowercase alphanumeric tokens.
func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// ExtractKeywords pulls up to maxKeywords meaningful keywords from text,
// filtering stopwords and short tokens, deduplicated in original order.
func ExtractKeywords(text string, maxKeywords int) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var keywords []string

	for _, token := range tokenize(text) {
		if len(token) < minKeywordLength {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}

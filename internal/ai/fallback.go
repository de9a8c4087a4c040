package ai

import (
	"fmt"
	"strings"
)

// MaxTags caps the number of tags attached to a book.
const MaxTags = 6

// FallbackNote is attached to every result produced without the external service.
const FallbackNote = "Fallback AI used (OpenAI quota/billing issue)."

type keywordGroup struct {
	keywords []string
	tags     []string
}

// keywordGroups is evaluated in order; every matching group contributes its tags.
var keywordGroups = []keywordGroup{
	{keywords: []string{"harry", "wizard", "magic"}, tags: []string{"fantasy", "magic", "adventure"}},
	{keywords: []string{"love", "romance"}, tags: []string{"romance", "relationships"}},
	{keywords: []string{"murder", "crime", "detective"}, tags: []string{"mystery", "crime", "thriller"}},
	{keywords: []string{"space", "alien", "robot", "future"}, tags: []string{"sci-fi", "future"}},
	{keywords: []string{"history", "war"}, tags: []string{"history", "war"}},
	{keywords: []string{"business", "money", "startup"}, tags: []string{"business", "career"}},
}

var genericTags = []string{"general", "popular", "recommended"}

// Fallback builds a summary and tags from keywords in the title and author.
// It never calls out and always returns the same result for the same input.
func Fallback(title, author string) Result {
	haystack := strings.ToLower(title + " " + author)

	var tags []string
	for _, g := range keywordGroups {
		for _, kw := range g.keywords {
			if strings.Contains(haystack, kw) {
				tags = append(tags, g.tags...)
				break
			}
		}
	}
	if len(tags) == 0 {
		tags = append(tags, genericTags...)
	}

	return Result{
		Summary: fmt.Sprintf(
			"A short, engaging summary for \"%s\" by %s. "+
				"This book explores key themes and keeps readers engaged from start to finish.",
			title, author,
		),
		Tags:   NormalizeTags(tags),
		Source: SourceFallback,
		Note:   FallbackNote,
	}
}

// NormalizeTags trims tags, drops blanks and duplicates (first occurrence wins)
// and keeps at most MaxTags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, min(len(tags), MaxTags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

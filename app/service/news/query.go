package news

import (
	"regexp"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/lo"
)

const maxKeywords = 4

var wordRe = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'+#.-]*`)

// upper-case forms only, so the pronoun "us" does not select a region
var usAbbrevRe = regexp.MustCompile(`\b(US|USA|U\.S\.A?\.?)(\W|$)`)

var stopWords = []string{
	"news", "latest", "update", "updates", "headline", "headlines", "today",
	"todays", "today's", "top", "recent", "current", "breaking", "the", "a", "an",
	"about", "on", "in", "for", "of", "from", "me", "show", "tell", "give", "get",
	"find", "what", "what's", "whats", "is", "are", "any", "some", "please",
	"regarding", "happening", "stories", "story", "articles", "article", "there",
	"can", "could", "you", "i", "want", "to", "know", "new", "with", "and", "or",
	"this", "week", "us", "anything", "events", "going", "morning", "now",
}

var regionTerms = map[string]string{
	"india":      "in",
	"indian":     "in",
	"uk":         "gb",
	"britain":    "gb",
	"british":    "gb",
	"england":    "gb",
	"usa":        "us",
	"america":    "us",
	"american":   "us",
	"australia":  "au",
	"australian": "au",
	"canada":     "ca",
	"canadian":   "ca",
	"germany":    "de",
	"german":     "de",
	"france":     "fr",
	"french":     "fr",
	"japan":      "jp",
	"japanese":   "jp",
}

var multiWordRegions = []lo.Entry[string, string]{
	{Key: "united states", Value: "us"},
	{Key: "united kingdom", Value: "gb"},
	{Key: "great britain", Value: "gb"},
}

var categories = []string{
	"business", "technology", "sports", "health", "science", "entertainment",
}

var categoryAliases = map[string]string{
	"tech":   "technology",
	"sport":  "sports",
	"movies": "entertainment",
	"music":  "entertainment",
}

type query struct {
	Region   string
	Category string
	Keywords string
}

func words(text string) []string {
	return pie.Map(wordRe.FindAllString(strings.ToLower(text), -1), func(w string) string {
		return strings.TrimRight(w, ".")
	})
}

// detectRegion returns the country code named in text, or fallback.
func detectRegion(text, fallback string) string {
	lower := strings.ToLower(text)
	// earliest mention wins
	code, first := "", -1
	for _, region := range multiWordRegions {
		if i := strings.Index(lower, region.Key); i >= 0 && (first < 0 || i < first) {
			code, first = region.Value, i
		}
	}
	if code != "" {
		return code
	}

	if usAbbrevRe.MatchString(text) {
		return "us"
	}

	for _, w := range words(text) {
		if code, ok := regionTerms[w]; ok {
			return code
		}
	}

	return fallback
}

func detectCategory(text string) string {
	for _, w := range words(text) {
		if pie.Contains(categories, w) {
			return w
		}
		if c, ok := categoryAliases[w]; ok {
			return c
		}
	}

	return ""
}

// keywords strips filler, region and category words, keeping order.
func keywords(text string) string {
	lower := strings.ToLower(text)
	for _, region := range multiWordRegions {
		lower = strings.ReplaceAll(lower, region.Key, " ")
	}

	kept := pie.Filter(words(lower), func(w string) bool {
		_, isRegion := regionTerms[w]
		_, isAlias := categoryAliases[w]
		return !isRegion && !isAlias && !pie.Contains(stopWords, w) && !pie.Contains(categories, w)
	})

	kept = lo.Uniq(kept)
	if len(kept) > maxKeywords {
		kept = kept[:maxKeywords]
	}

	return strings.Join(kept, " ")
}

func buildQuery(message, topic, defaultRegion string) query {
	source := lo.Ternary(topic != "", topic, message)

	return query{
		Region:   detectRegion(message+" "+topic, defaultRegion),
		Category: detectCategory(message + " " + topic),
		Keywords: keywords(source),
	}
}

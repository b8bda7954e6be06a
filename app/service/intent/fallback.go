package intent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/elliotchance/pie/v2"
)

var (
	weatherRe = regexp.MustCompile(`\b(weather|forecast|temperature|temp|rain(ing|y)?|snow(ing|y)?|sunny|sunshine|cloudy|clouds|wind(y)?|storm(y)?|humid(ity)?|umbrella|degrees|celsius|fahrenheit|freezing|drizzle|thunder)\b`)
	newsRe    = regexp.MustCompile(`\b(news|headlines?|breaking|latest|current events|updates?|happening|articles?|stories|reports?)\b`)

	// hot/cold alone also mean an illness or a mood
	temperatureRe = regexp.MustCompile(`\b(is it|it's|it is|too|so|very|be)\s+(hot|cold|warm|chilly)\b|\b(hot|cold|warm|chilly)\s+(outside|out there|today|tomorrow|tonight|this weekend)\b`)

	clauseRe   = regexp.MustCompile(`[?!,;:]|\.\s`)
	topicRe    = regexp.MustCompile(`(?i)\b(?:about|on|regarding|for)\s+([^?.!,]+)`)
	activityRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bgo\s+(\p{L}+ing)\b`),
		regexp.MustCompile(`(?i)\bfor\s+a\s+(\p{L}+)\b`),
	}
)

var locationPrepositions = []string{"in", "at", "for"}

// words that end a place name rather than belong to it
var locationStopWords = []string{
	"today", "tomorrow", "tonight", "now", "this", "next", "right", "please",
	"a", "an", "the", "my", "weekend", "morning", "afternoon", "evening",
	"week", "later", "and", "or", "like", "noon", "midnight",
}

// Fallback classifies without a model: weather keywords win over news
// keywords, anything else is general.
func Fallback(message string) Result {
	lower := strings.ToLower(message)

	switch {
	case weatherRe.MatchString(lower), temperatureRe.MatchString(lower):
		return Result{
			Intent:   Weather,
			Location: extractLocation(message),
			Activity: extractActivity(message),
		}
	case newsRe.MatchString(lower):
		return Result{
			Intent: News,
			Topic:  extractTopic(message),
		}
	default:
		return Result{Intent: General}
	}
}

// extractLocation takes the words following the first "in", "at" or "for"
// that lead to a place name, stopping at punctuation or a time word.
func extractLocation(message string) string {
	for _, clause := range clauseRe.Split(message, -1) {
		words := strings.Fields(clause)

		for i, w := range words {
			if !pie.Contains(locationPrepositions, strings.ToLower(w)) {
				continue
			}

			var kept []string
			for _, next := range words[i+1:] {
				lower := strings.ToLower(next)
				if pie.Contains(locationStopWords, lower) || pie.Contains(locationPrepositions, lower) {
					break
				}
				kept = append(kept, next)
			}

			// "at 5pm", "in 2 hours"
			if len(kept) > 0 && unicode.IsDigit([]rune(kept[0])[0]) {
				continue
			}

			if location := strings.Trim(strings.Join(kept, " "), " .'-"); location != "" {
				return location
			}
		}
	}

	return ""
}

func extractTopic(message string) string {
	m := topicRe.FindStringSubmatch(message)
	if m == nil {
		return ""
	}

	words := strings.Fields(m[1])
	for len(words) > 0 && pie.Contains(locationStopWords, strings.ToLower(words[len(words)-1])) {
		words = words[:len(words)-1]
	}

	return strings.Join(words, " ")
}

func extractActivity(message string) string {
	for _, re := range activityRe {
		if m := re.FindStringSubmatch(message); m != nil {
			return strings.ToLower(m[1])
		}
	}

	return ""
}

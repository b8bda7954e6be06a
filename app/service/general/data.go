package general

const (
	PathSupport      = "support"
	PathConversation = "conversation"
	PathApology      = "apology"
)

const msgApology = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

type Reply struct {
	Text string
	Path string
}

type supportPassage struct {
	SourceText      string `json:"source_text"`
	Transliteration string `json:"transliteration"`
	Meaning         string `json:"meaning"`
}

func (p supportPassage) complete() bool {
	return p.SourceText != "" && p.Transliteration != "" && p.Meaning != ""
}

// creativeKeywords mark requests for long-form content. They also keep such
// requests away from the support path.
var creativeKeywords = []string{
	"write", "essay", "story", "poem", "detailed", "explain", "elaborate",
	"in depth", "in-depth", "comprehensive", "article", "letter", "describe",
	"lyrics", "script", "outline", "long form", "long-form",
}

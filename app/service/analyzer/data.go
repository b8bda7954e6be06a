package analyzer

type Sarcasm struct {
	IsSarcastic     bool   `json:"is_sarcastic"`
	IntendedMeaning string `json:"intended_meaning"`
}

type Mood struct {
	IsLowMood bool `json:"is_low_mood"`
}

var distressKeywords = []string{
	"worried", "sad", "depressed", "anxious", "tired", "lonely", "stressed",
	"hopeless", "upset", "scared", "overwhelmed", "heartbroken", "exhausted",
	"grief", "afraid",
}

package intent

const (
	Weather = "weather"
	News    = "news"
	General = "general"
)

// Result is the routing decision for one message. Empty strings mean the
// field could not be determined.
type Result struct {
	Intent   string `json:"intent"`
	Location string `json:"location"`
	Topic    string `json:"topic"`
	Activity string `json:"activity"`
}

func IsKnown(intent string) bool {
	switch intent {
	case Weather, News, General:
		return true
	default:
		return false
	}
}

package completion

import (
	"chatrouter/app/service/memory"
	"errors"
)

var (
	ErrDisabled             = errors.New("completion backend is disabled")
	ErrAllBackendsExhausted = errors.New("all completion backends exhausted")
	errEmptyResponse        = errors.New("empty completion response")
	errEmptyRequest         = errors.New("empty completion request")
)

// Request is either a single Prompt or, when History is set, a conversation
// that ends with Prompt as the newest user turn.
type Request struct {
	Prompt  string
	System  string
	History []memory.Turn

	// Model is tried first; empty means the configured default.
	Model     string
	MaxTokens int
	JSON      bool
}

type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeRateLimited
	outcomeSkip
	outcomeFatal
	outcomeFault
)

func (o outcome) String() string {
	switch o {
	case outcomeSucceeded:
		return "succeeded"
	case outcomeRateLimited:
		return "rate_limited"
	case outcomeSkip:
		return "skip"
	case outcomeFatal:
		return "fatal"
	default:
		return "fault"
	}
}

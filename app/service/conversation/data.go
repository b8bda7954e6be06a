package conversation

import (
	"chatrouter/app/service/memory"
	"errors"
)

var ErrEmptyMessage = errors.New("message is empty")

const msgFailure = "Sorry, something went wrong while preparing a reply. Please try again."

type Request struct {
	Message   string
	SessionID string
	// History seeds the session only when it has no turns yet
	History []memory.Turn
}

type Response struct {
	Reply     string `json:"reply"`
	Intent    string `json:"intent"`
	Location  string `json:"location"`
	Topic     string `json:"topic"`
	SessionID string `json:"session_id"`
}

package api

import (
	"chatrouter/app/service/memory"
)

type chatRequest struct {
	Message   string        `json:"message" validate:"required"`
	SessionID string        `json:"session_id" validate:"max=128"`
	History   []historyTurn `json:"history" validate:"max=100,dive"`
}

type historyTurn struct {
	Role string `json:"role" validate:"required"`
	Text string `json:"text"`
}

type healthResponse struct {
	Status     string `json:"status"`
	LLMEnabled bool   `json:"llm_enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r chatRequest) turns() ([]memory.Turn, error) {
	result := make([]memory.Turn, 0, len(r.History))

	for _, h := range r.History {
		role, err := memory.ParseRole(h.Role)
		if err != nil {
			return nil, err
		}
		result = append(result, memory.Turn{Role: role, Text: h.Text})
	}

	return result, nil
}

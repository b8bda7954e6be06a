package memory

import "fmt"

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAgent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Turn is one side of a completed exchange.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

func AgentTurn(text string) Turn {
	return Turn{Role: RoleAgent, Text: text}
}

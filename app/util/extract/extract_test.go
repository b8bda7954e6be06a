package extract

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_FencedBlockWithProse(t *testing.T) {
	original := map[string]any{
		"intent":   "weather",
		"location": "Tokyo",
		"nested":   map[string]any{"a": []any{1.0, "two", map[string]any{"b": true}}},
	}
	encoded, err := json.MarshalIndent(original, "", "  ")
	require.NoError(t, err)

	wrappers := []string{
		"Sure! Here is the result:\n```json\n%s\n```\nLet me know if you need more.",
		"```JSON\n%s```",
		"prefix text { not json } and then\n```json\n%s\n```",
		"```\n%s\n```",
	}

	for _, w := range wrappers {
		text := fmt.Sprintf(w, string(encoded))
		assert.Equal(t, original, Object(text), text)
	}
}

func TestObject_BareObjectInProse(t *testing.T) {
	text := `The classification is {"intent": "news", "topic": "AI {beta}", "meta": {"depth": {"x": 1}}} as requested.`

	got := Object(text)
	require.NotNil(t, got)
	assert.Equal(t, "news", got["intent"])
	assert.Equal(t, "AI {beta}", got["topic"])
	assert.Equal(t, map[string]any{"depth": map[string]any{"x": 1.0}}, got["meta"])
}

func TestObject_TrailingBraceInProse(t *testing.T) {
	text := `{"is_low_mood": true} hope that helps :}`

	assert.Equal(t, map[string]any{"is_low_mood": true}, Object(text))
}

func TestObject_NotJSON(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"null",
		"I cannot help with that.",
		"{ this is not json }",
		"```json\nnot an object\n```",
		"[1, 2, 3]",
		"{\"unterminated\": ",
	} {
		assert.Nil(t, Object(text), text)
	}
}

func TestInto_Typed(t *testing.T) {
	var out struct {
		IsSarcastic     bool   `json:"is_sarcastic"`
		IntendedMeaning string `json:"intended_meaning"`
	}

	ok := Into("```json\n{\"is_sarcastic\": true, \"intended_meaning\": \"the weather is awful\"}\n```", &out)
	require.True(t, ok)
	assert.True(t, out.IsSarcastic)
	assert.Equal(t, "the weather is awful", out.IntendedMeaning)
}

func TestBalancedSpan(t *testing.T) {
	span, ok := balancedSpan(`a {"k": "}\"{", "n": {"m": 1}} b {"other": 2}`)
	require.True(t, ok)
	assert.Equal(t, `{"k": "}\"{", "n": {"m": 1}}`, span)

	_, ok = balancedSpan(`{"open": {`)
	assert.False(t, ok)
}

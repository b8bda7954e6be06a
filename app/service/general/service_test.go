package general

import (
	"chatrouter/app/config"
	"chatrouter/app/service/analyzer"
	"chatrouter/app/service/completion"
	"chatrouter/app/service/memory"
	"chatrouter/app/util/llmstub"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

const (
	sarcasmMarker = "is_sarcastic"
	moodMarker    = "is_low_mood"
	supportMarker = "source_text"
)

var notSarcastic = llmstub.Rule{Marker: sarcasmMarker, Reply: `{"is_sarcastic": false}`}

func newService(model llms.Model) *Service {
	completionSvc := completion.NewWithModel(model, config.LLM{Model: "test-model", Timeout: time.Second})

	return NewService(completionSvc, analyzer.NewWithCompletion(completionSvc), config.General{
		SupportSource:     "Bhagavad Gita",
		ConciseMaxTokens:  512,
		DetailedMaxTokens: 2048,
	})
}

func conversationCalls(model *llmstub.Model) []llmstub.Call {
	var result []llmstub.Call
	for _, call := range model.Calls() {
		if call.SystemText() != "" {
			result = append(result, call)
		}
	}

	return result
}

func TestReply_SupportPassage(t *testing.T) {
	model := llmstub.New(
		notSarcastic,
		llmstub.Rule{Marker: supportMarker, Reply: "```json\n" + `{
			"source_text": "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन",
			"transliteration": "karmaṇy-evādhikāras te mā phaleṣhu kadāchana",
			"meaning": "Focus on what you can do today and let go of worrying about the outcome."
		}` + "\n```"},
		llmstub.Rule{Reply: "plain chat"},
	)
	svc := newService(model)

	got := svc.Reply(context.Background(), "I'm so anxious about tomorrow", nil)

	assert.Equal(t, PathSupport, got.Path)
	assert.Contains(t, got.Text, "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन")
	assert.Contains(t, got.Text, "karmaṇy-evādhikāras te mā phaleṣhu kadāchana")
	assert.Contains(t, got.Text, "Focus on what you can do today")
	assert.Contains(t, got.Text, "Bhagavad Gita")
	assert.Zero(t, model.CallsWith(moodMarker))
	assert.Empty(t, conversationCalls(model))
}

func TestReply_SupportFallsThrough(t *testing.T) {
	for _, support := range []llmstub.Rule{
		{Marker: supportMarker, Reply: "null"},
		{Marker: supportMarker, Reply: `{"source_text": "only one field"}`},
		{Marker: supportMarker, Err: errors.New("boom")},
	} {
		model := llmstub.New(notSarcastic, support, llmstub.Rule{Reply: "Tomorrow will be okay. Want to talk about it?"})
		svc := newService(model)

		got := svc.Reply(context.Background(), "I'm so anxious about tomorrow", nil)

		assert.Equal(t, PathConversation, got.Path)
		assert.Equal(t, "Tomorrow will be okay. Want to talk about it?", got.Text)
		assert.Equal(t, 1, model.CallsWith(supportMarker))
	}
}

func TestReply_ModelDetectsLowMood(t *testing.T) {
	model := llmstub.New(
		notSarcastic,
		llmstub.Rule{Marker: moodMarker, Reply: `{"is_low_mood": true}`},
		llmstub.Rule{Marker: supportMarker, Reply: `{"source_text": "a", "transliteration": "b", "meaning": "c"}`},
		llmstub.Rule{Reply: "plain chat"},
	)

	got := newService(model).Reply(context.Background(), "nothing ever goes right for me", nil)
	assert.Equal(t, PathSupport, got.Path)
	assert.Equal(t, 1, model.CallsWith(moodMarker))
}

func TestReply_CreativeSuppressesSupport(t *testing.T) {
	model := llmstub.New(
		notSarcastic,
		llmstub.Rule{Marker: moodMarker, Reply: `{"is_low_mood": true}`},
		llmstub.Rule{Marker: supportMarker, Reply: `{"source_text": "a", "transliteration": "b", "meaning": "c"}`},
		llmstub.Rule{Reply: "A long essay about feeling sad..."},
	)

	got := newService(model).Reply(context.Background(), "Write an essay about feeling sad and anxious", nil)

	assert.Equal(t, PathConversation, got.Path)
	assert.Zero(t, model.CallsWith(moodMarker))
	assert.Zero(t, model.CallsWith(supportMarker))

	calls := conversationCalls(model)
	require.Len(t, calls, 1)
	assert.Equal(t, 2048, calls[0].Options.MaxTokens)
	assert.Contains(t, calls[0].SystemText(), "long-form")
}

func TestReply_ConciseWithHistoryAndSarcasm(t *testing.T) {
	model := llmstub.New(
		llmstub.Rule{Marker: sarcasmMarker, Reply: `{"is_sarcastic": true, "intended_meaning": "Mondays are exhausting"}`},
		llmstub.Rule{Marker: moodMarker, Reply: `{"is_low_mood": false}`},
		llmstub.Rule{Reply: "Ha, Mondays strike again!"},
	)
	history := []memory.Turn{memory.UserTurn("hi"), memory.AgentTurn("hello!")}

	got := newService(model).Reply(context.Background(), "Oh I just love Mondays", history)
	assert.Equal(t, Reply{Text: "Ha, Mondays strike again!", Path: PathConversation}, got)

	calls := conversationCalls(model)
	require.Len(t, calls, 1)
	assert.Equal(t, 512, calls[0].Options.MaxTokens)
	assert.Contains(t, calls[0].SystemText(), "Mondays are exhausting")
	assert.Len(t, calls[0].Messages, 4)
	assert.Equal(t, "Oh I just love Mondays", calls[0].LastText())
}

func TestReply_DisabledApologizes(t *testing.T) {
	got := newService(nil).Reply(context.Background(), "I'm so anxious about tomorrow", nil)

	assert.Equal(t, Reply{Text: msgApology, Path: PathApology}, got)
}

func TestIsCreative(t *testing.T) {
	assert.True(t, IsCreative("Write me a poem"))
	assert.True(t, IsCreative("can you explain quantum computing in depth"))
	assert.True(t, IsCreative("an in-depth look please"))
	assert.False(t, IsCreative("I feel lonely"))
	assert.False(t, IsCreative("rewrite nothing; storyline"))
}

func TestSystemPrompt(t *testing.T) {
	text, err := systemPrompt.Render(map[string]any{"detailed": false, "sarcastic": false, "intended_meaning": ""})
	require.NoError(t, err)
	assert.Contains(t, text, "short and conversational")
	assert.NotContains(t, text, "sarcastic")
}

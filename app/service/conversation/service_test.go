package conversation

import (
	"chatrouter/app/client/newsapi"
	"chatrouter/app/client/weatherapi"
	"chatrouter/app/config"
	"chatrouter/app/service/analyzer"
	"chatrouter/app/service/completion"
	"chatrouter/app/service/general"
	"chatrouter/app/service/intent"
	"chatrouter/app/service/memory"
	"chatrouter/app/service/news"
	"chatrouter/app/service/weather"
	"chatrouter/app/util/llmstub"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

const tokyoForecast = `{
  "location": {"name": "Tokyo", "country": "Japan", "localtime": "2025-04-01 14:05"},
  "current": {"temp_c": 20, "feelslike_c": 20, "humidity": 40, "wind_kph": 5, "wind_dir": "S", "condition": {"text": "Clear"}},
  "forecast": {"forecastday": [{"day": {"maxtemp_c": 22, "mintemp_c": 12, "daily_chance_of_rain": 0}, "astro": {"sunrise": "05:30 AM", "sunset": "06:00 PM"}}]}
}`

type fixture struct {
	svc          *Service
	memory       *memory.Service
	weatherCalls *atomic.Int32
	weatherQuery *atomic.Value
}

func newFixture(t *testing.T, model llms.Model) fixture {
	t.Helper()

	var weatherCalls atomic.Int32
	var weatherQuery atomic.Value
	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		weatherCalls.Add(1)
		weatherQuery.Store(r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, tokyoForecast)
	}))
	t.Cleanup(weatherSrv.Close)

	newsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ok", "articles": [{"source": {"name": "Wire"}, "title": "Rocket launch succeeds", "url": "https://example.com/rocket"}]}`)
	}))
	t.Cleanup(newsSrv.Close)

	newsCfg := config.News{BaseURL: newsSrv.URL, Token: "secret", DefaultRegion: "us", PageSize: 5, Timeout: time.Second}

	mem := memory.NewWithLimit(6)
	completionSvc := completion.NewWithModel(model, config.LLM{Model: "test-model", Timeout: time.Second})
	weatherClient := weatherapi.NewClientWithConfig(config.Weather{BaseURL: weatherSrv.URL, Token: "secret", Timeout: time.Second})

	svc := NewService(
		mem,
		intent.NewWithCompletion(completionSvc),
		weather.NewService(mem, completionSvc, weatherClient),
		news.NewService(newsapi.NewClientWithConfig(newsCfg), newsCfg),
		general.NewService(completionSvc, analyzer.NewWithCompletion(completionSvc), config.General{
			SupportSource:     "Bhagavad Gita",
			ConciseMaxTokens:  512,
			DetailedMaxTokens: 2048,
		}),
	)

	return fixture{
		svc:          svc,
		memory:       mem,
		weatherCalls: &weatherCalls,
		weatherQuery: &weatherQuery,
	}
}

func TestHandleChatRequest_WeatherEndToEnd(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "What's the weather in Tokyo?"})
	require.NoError(t, err)

	assert.Equal(t, intent.Weather, resp.Intent)
	assert.Equal(t, "Tokyo", resp.Location)
	assert.Equal(t, memory.DefaultSession, resp.SessionID)
	assert.Contains(t, resp.Reply, "Tokyo")
	assert.Contains(t, resp.Reply, "20")
	assert.Equal(t, "Tokyo", f.memory.LastLocation())

	history := f.memory.History(memory.DefaultSession)
	require.Len(t, history, 2)
	assert.Equal(t, memory.UserTurn("What's the weather in Tokyo?"), history[0])
	assert.Equal(t, memory.AgentTurn(resp.Reply), history[1])
}

func TestHandleChatRequest_EmptyMessage(t *testing.T) {
	f := newFixture(t, nil)

	for _, message := range []string{"", "   \n\t"} {
		resp, err := f.svc.HandleChatRequest(context.Background(), Request{Message: message, SessionID: "s"})
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Nil(t, resp)
	}
	assert.Empty(t, f.memory.History("s"))
}

func TestHandleChatRequest_LastKnownLocationAcrossSessions(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "weather in Tokyo", SessionID: "alice"})
	require.NoError(t, err)

	resp, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "will it rain?", SessionID: "bob"})
	require.NoError(t, err)

	assert.Equal(t, "Tokyo", resp.Location)
	assert.Equal(t, "Tokyo", f.weatherQuery.Load())
	assert.Equal(t, int32(2), f.weatherCalls.Load())
}

func TestHandleChatRequest_WeatherWithoutLocation(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "what's the forecast?"})
	require.NoError(t, err)

	assert.Equal(t, intent.Weather, resp.Intent)
	assert.Empty(t, resp.Location)
	assert.Contains(t, resp.Reply, "Which city")
	assert.Zero(t, f.weatherCalls.Load())
}

func TestHandleChatRequest_News(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "latest news about rockets", SessionID: "n"})
	require.NoError(t, err)

	assert.Equal(t, intent.News, resp.Intent)
	assert.Equal(t, "rockets", resp.Topic)
	assert.Contains(t, resp.Reply, "Rocket launch succeeds")
}

func TestHandleChatRequest_GeneralWithModel(t *testing.T) {
	model := llmstub.New(
		llmstub.Rule{Marker: "is_sarcastic", Reply: `{"is_sarcastic": false}`},
		llmstub.Rule{Marker: "is_low_mood", Reply: `{"is_low_mood": false}`},
		llmstub.Rule{Marker: "You route messages", Reply: `{"intent": "general"}`},
		llmstub.Rule{Reply: "Hi there!"},
	)
	f := newFixture(t, model)

	resp, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "hello", SessionID: "g"})
	require.NoError(t, err)

	assert.Equal(t, intent.General, resp.Intent)
	assert.Equal(t, "Hi there!", resp.Reply)
	assert.Len(t, f.memory.History("g"), 2)
}

func TestHandleChatRequest_SeedsEmptySessionOnly(t *testing.T) {
	f := newFixture(t, nil)
	seed := []memory.Turn{memory.UserTurn("earlier"), memory.AgentTurn("reply")}

	_, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "weather in Tokyo", SessionID: "s", History: seed})
	require.NoError(t, err)
	assert.Len(t, f.memory.History("s"), 4)

	_, err = f.svc.HandleChatRequest(context.Background(), Request{Message: "weather in Tokyo", SessionID: "s", History: seed})
	require.NoError(t, err)
	history := f.memory.History("s")
	assert.Len(t, history, 6)
	assert.Equal(t, "earlier", history[0].Text)
}

func TestHandleChatRequest_RecoversFromPanic(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.weatherSvc = nil

	resp, err := f.svc.HandleChatRequest(context.Background(), Request{Message: "weather in Tokyo", SessionID: "p"})
	require.NoError(t, err)

	assert.Equal(t, msgFailure, resp.Reply)
	assert.Equal(t, intent.Weather, resp.Intent)
	assert.Equal(t, memory.AgentTurn(msgFailure), f.memory.History("p")[1])
}

func TestRoute_ReportsResponder(t *testing.T) {
	ctx := context.Background()

	disabled := newFixture(t, nil)
	var resp Response
	assert.Equal(t, "general/"+general.PathApology, disabled.svc.route(ctx, "tell me a joke", intent.Result{Intent: "poetry"}, nil, &resp))
	assert.Equal(t, intent.General, resp.Intent)

	resp = Response{}
	assert.Equal(t, intent.News, disabled.svc.route(ctx, "latest news", intent.Result{Intent: intent.News}, nil, &resp))

	model := llmstub.New(
		llmstub.Rule{Marker: "is_sarcastic", Reply: `{"is_sarcastic": false}`},
		llmstub.Rule{Marker: "is_low_mood", Reply: `{"is_low_mood": false}`},
		llmstub.Rule{Reply: "Why did the gopher cross the road?"},
	)
	enabled := newFixture(t, model)

	resp = Response{}
	assert.Equal(t, "general/"+general.PathConversation, enabled.svc.route(ctx, "tell me a joke", intent.Result{Intent: intent.General}, nil, &resp))
	assert.Equal(t, "Why did the gopher cross the road?", resp.Reply)
}

package news

import (
	"chatrouter/app/client/newsapi"
	"chatrouter/app/config"
	"chatrouter/app/service/intent"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/do"
)

const (
	msgNotConfigured = "News lookups are not configured on this server, so I can't fetch headlines right now."
	msgNothingFound  = "I couldn't find any recent headlines%s. Try a different topic or region."
	msgFailed        = "Sorry, I couldn't reach the news service right now. Please try again in a moment."
)

type Reply struct {
	Text string
	// Topic is the keyword query sent to the provider
	Topic string
}

type Service struct {
	client        *newsapi.Client
	defaultRegion string
	pageSize      int
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(do.MustInvoke[*newsapi.Client](di), cfg.News), nil
}

func NewService(client *newsapi.Client, cfg config.News) *Service {
	return &Service{
		client:        client,
		defaultRegion: cfg.DefaultRegion,
		pageSize:      cfg.PageSize,
	}
}

// Reply never fails; every problem becomes a user-facing message.
func (s *Service) Reply(ctx context.Context, message string, in intent.Result) Reply {
	q := buildQuery(message, in.Topic, s.defaultRegion)

	if !s.client.Configured() {
		return Reply{Text: msgNotConfigured, Topic: q.Keywords}
	}

	articles, err := s.client.TopHeadlines(ctx, newsapi.Query{
		Region:   q.Region,
		Category: q.Category,
		Keywords: q.Keywords,
		PageSize: s.pageSize,
	})
	if err != nil {
		slog.Error("Headlines lookup failed",
			"region", q.Region,
			"category", q.Category,
			"keywords", q.Keywords,
			"error", err,
		)
		return Reply{Text: msgFailed, Topic: q.Keywords}
	}

	if len(articles) == 0 {
		return Reply{Text: fmt.Sprintf(msgNothingFound, describe(q)), Topic: q.Keywords}
	}

	return Reply{Text: formatArticles(q, articles), Topic: q.Keywords}
}

func describe(q query) string {
	var sb strings.Builder

	if q.Keywords != "" {
		sb.WriteString(fmt.Sprintf(" about %q", q.Keywords))
	}
	if q.Category != "" {
		sb.WriteString(fmt.Sprintf(" in %s", q.Category))
	}
	sb.WriteString(fmt.Sprintf(" (%s)", strings.ToUpper(q.Region)))

	return sb.String()
}

func formatArticles(q query, articles []newsapi.Article) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Here are the latest headlines%s:\n", describe(q)))

	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("\n%d. **%s** (%s)\n   %s", i+1, a.Title, a.SourceName, a.URL))
	}

	return sb.String()
}

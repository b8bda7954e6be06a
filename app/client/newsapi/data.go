package newsapi

import (
	"strings"

	"github.com/samber/lo"
)

type Query struct {
	// Two-letter country code
	Region   string
	Category string
	Keywords string
	PageSize int
}

type Article struct {
	Title       string
	SourceName  string
	URL         string
	PublishedAt string
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source *struct {
			Name *string `json:"name"`
		} `json:"source"`
		Title       *string `json:"title"`
		URL         *string `json:"url"`
		PublishedAt *string `json:"publishedAt"`
	} `json:"articles"`
}

// articles drops entries without a title or link and the "[Removed]"
// placeholders the provider returns for withdrawn stories.
func (r *headlinesResponse) articles() []Article {
	result := make([]Article, 0, len(r.Articles))

	for _, a := range r.Articles {
		title := strings.TrimSpace(lo.FromPtrOr(a.Title, ""))
		link := strings.TrimSpace(lo.FromPtrOr(a.URL, ""))
		if title == "" || link == "" || title == "[Removed]" {
			continue
		}

		source := "Unknown source"
		if a.Source != nil {
			source = lo.CoalesceOrEmpty(strings.TrimSpace(lo.FromPtrOr(a.Source.Name, "")), source)
		}

		result = append(result, Article{
			Title:       title,
			SourceName:  source,
			URL:         link,
			PublishedAt: lo.FromPtrOr(a.PublishedAt, ""),
		})
	}

	return result
}

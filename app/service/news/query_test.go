package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"latest news from India", "in"},
		{"what's happening in the UK?", "gb"},
		{"Britain election results", "gb"},
		{"news in the United States", "us"},
		{"US politics", "us"},
		{"united states vs united kingdom trade talks", "us"},
		{"United Kingdom and United States summit", "gb"},
		{"great britain or the united states?", "gb"},
		{"tell us the news", "fr"},
		{"Australian open", "au"},
		{"anything new?", "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, detectRegion(tt.text, "fr"))
		})
	}
}

func TestDetectCategory(t *testing.T) {
	assert.Equal(t, "technology", detectCategory("latest tech news"))
	assert.Equal(t, "sports", detectCategory("Sports headlines"))
	assert.Equal(t, "", detectCategory("news about the election"))
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, "ai", keywords("Show me the latest news about AI"))
	assert.Equal(t, "election results", keywords("Britain election results today"))
	assert.Equal(t, "electric cars", keywords("technology news on electric cars in the United States"))
	assert.Equal(t, "", keywords("latest headlines please"))
	assert.Equal(t, "one two three four", keywords("one two three four five"))
}

func TestBuildQuery_PrefersTopic(t *testing.T) {
	q := buildQuery("any cricket updates from India?", "Cricket World Cup", "us")

	assert.Equal(t, query{Region: "in", Keywords: "cricket world cup"}, q)
}

package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `{
  "kind": "Listing",
  "data": {
    "after": "",
    "before": "",
    "children": [
      {"kind": "t3", "data": {"id": "a1", "name": "t3_a1", "title": "Best weeknight pasta?", "selftext": "Garlic, oil, chili.", "score": 420, "permalink": "/r/Cooking/comments/a1/", "subreddit": "Cooking"}},
      {"kind": "t3", "data": {"id": "a2", "name": "t3_a2", "title": "", "selftext": "untitled", "score": 1, "permalink": "/r/Cooking/comments/a2/", "subreddit": "Cooking"}},
      {"kind": "t3", "data": {"id": "a3", "name": "t3_a3", "title": "Fresh pasta in 20 minutes", "selftext": "", "score": 99, "permalink": "/r/pasta/comments/a3/", "subreddit": "pasta"}}
    ]
  }
}`

func TestRedditSource_Search(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listing))
	}))
	defer srv.Close()

	src, err := NewReddit(RedditConfig{Subreddit: "Cooking", Limit: 5, BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "reddit", src.Name())

	findings, err := src.Search(context.Background(), "pasta")
	require.NoError(t, err)

	assert.Contains(t, gotPath, "/r/Cooking/search")
	assert.Equal(t, "pasta", gotQuery)

	require.Len(t, findings, 2, "posts without a title are dropped")
	assert.Equal(t, "Best weeknight pasta?", findings[0].Title)
	assert.Equal(t, "r/Cooking", findings[0].Source)
	assert.Equal(t, 420, findings[0].Score)
	assert.Equal(t, "https://www.reddit.com/r/Cooking/comments/a1/", findings[0].URL)
}

func TestRedditSource_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src, err := NewReddit(RedditConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = src.Search(context.Background(), "pasta")
	assert.Error(t, err)
}

func TestRedditSource_EmptyQuery(t *testing.T) {
	src, err := NewReddit(RedditConfig{})
	require.NoError(t, err)

	findings, err := src.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestNewReddit_Defaults(t *testing.T) {
	src, err := NewReddit(RedditConfig{})
	require.NoError(t, err)
	assert.Equal(t, "all", src.config.Subreddit)
	assert.Equal(t, 5, src.config.Limit)
	assert.Equal(t, "year", src.config.Time)
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "", Digest(nil))

	got := Digest([]Finding{
		{Source: "r/Cooking", Title: "Best pasta", Body: "line one\nline two", Score: 10},
		{Source: "r/pasta", Title: "Quick tips"},
	})
	assert.Equal(t, "- [r/Cooking] Best pasta (score 10)\n  line one line two\n- [r/pasta] Quick tips", got)

	long := Digest([]Finding{{Source: "s", Title: "t", Body: strings.Repeat("x", 500)}})
	assert.Contains(t, long, strings.Repeat("x", 400)+"...")
	assert.NotContains(t, long, strings.Repeat("x", 401))
}

package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// RedditConfig configures a RedditSource.
type RedditConfig struct {
	Subreddit string
	Limit     int
	// Time is the search window: hour, day, week, month, year or all.
	Time string
	// BaseURL overrides the Reddit host.
	BaseURL string
}

// RedditSource searches Reddit posts with a read-only client.
type RedditSource struct {
	client *reddit.Client
	config RedditConfig
}

// NewReddit creates a read-only Reddit source.
func NewReddit(config RedditConfig) (*RedditSource, error) {
	if config.Limit <= 0 {
		config.Limit = 5
	}
	if config.Time == "" {
		config.Time = "year"
	}
	if config.Subreddit == "" {
		config.Subreddit = "all"
	}

	var opts []reddit.Opt
	if config.BaseURL != "" {
		opts = append(opts, reddit.WithBaseURL(config.BaseURL))
	}

	client, err := reddit.NewReadonlyClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("reddit: create client: %w", err)
	}
	return &RedditSource{client: client, config: config}, nil
}

// Name implements Source.
func (r *RedditSource) Name() string { return "reddit" }

// Search implements Source.
func (r *RedditSource) Search(ctx context.Context, query string) ([]Finding, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	posts, _, err := r.client.Subreddit.SearchPosts(ctx, query, r.config.Subreddit, &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: r.config.Limit},
			Time:        r.config.Time,
		},
		Sort: "relevance",
	})
	if err != nil {
		return nil, fmt.Errorf("reddit search %q: %w", query, err)
	}

	findings := make([]Finding, 0, len(posts))
	for _, p := range posts {
		if p == nil || strings.TrimSpace(p.Title) == "" {
			continue
		}
		findings = append(findings, Finding{
			Source: "r/" + p.SubredditName,
			Title:  p.Title,
			Body:   p.Body,
			URL:    "https://www.reddit.com" + p.Permalink,
			Score:  p.Score,
		})
		if len(findings) == r.config.Limit {
			break
		}
	}
	return findings, nil
}

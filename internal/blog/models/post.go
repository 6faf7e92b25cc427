package models

import (
	"strings"
	"time"

	id "civicfund/pkg/domain"
	dErrors "civicfund/pkg/domain-errors"
	pstrings "civicfund/pkg/platform/strings"
)

// wordsPerMinute drives the read-time estimate when a post does not set one.
const wordsPerMinute = 200

// Post is a published article. Posts are read-mostly; only Views changes at
// runtime.
type Post struct {
	ID          id.PostID `json:"id" yaml:"id"`
	Slug        string    `json:"slug" yaml:"slug"`
	Title       string    `json:"title" yaml:"title"`
	Excerpt     string    `json:"excerpt" yaml:"excerpt"`
	Content     string    `json:"content" yaml:"content"`
	Category    string    `json:"category" yaml:"category"`
	Tags        []string  `json:"tags" yaml:"tags"`
	Author      string    `json:"author" yaml:"author"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	ReadMinutes int       `json:"read_minutes" yaml:"read_minutes"`
	Views       int64     `json:"views" yaml:"views"`
	Featured    bool      `json:"featured" yaml:"featured"`
}

// NewPost normalizes a post for storage: slug derived from the title when
// missing, tags lowercased and deduplicated, read time estimated.
func NewPost(p Post) (*Post, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "post title is required")
	}
	if p.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "post id is required")
	}
	if p.PublishedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "post publish date is required")
	}
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = pstrings.Slugify(p.Title)
	}
	p.Category = strings.TrimSpace(p.Category)
	p.Author = strings.TrimSpace(p.Author)
	p.Tags = pstrings.DedupeAndTrimLower(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.ReadMinutes <= 0 {
		p.ReadMinutes = EstimateReadMinutes(p.Content)
	}
	return &p, nil
}

// EstimateReadMinutes rounds up to whole minutes, never below one.
func EstimateReadMinutes(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Clone copies the post including its tag slice.
func (p *Post) Clone() *Post {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

package handler

import (
	"time"

	"civicfund/internal/blog/models"
	"civicfund/internal/blog/service"
)

type PostResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content,omitempty"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"published_at"`
	ReadMinutes int       `json:"read_minutes"`
	Views       int64     `json:"views"`
	Featured    bool      `json:"featured"`
}

type SearchResponse struct {
	Posts    []PostResponse `json:"posts"`
	Total    int            `json:"total"`
	Sort     string         `json:"sort"`
	Category string         `json:"category,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Query    string         `json:"q,omitempty"`
}

// FromPost renders a post; list views omit the body.
func FromPost(p *models.Post, withContent bool) *PostResponse {
	resp := &PostResponse{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Category:    p.Category,
		Tags:        p.Tags,
		Author:      p.Author,
		PublishedAt: p.PublishedAt,
		ReadMinutes: p.ReadMinutes,
		Views:       p.Views,
		Featured:    p.Featured,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if withContent {
		resp.Content = p.Content
	}
	return resp
}

func FromSearchResult(r *service.SearchResult) *SearchResponse {
	posts := make([]PostResponse, 0, len(r.Posts))
	for _, p := range r.Posts {
		posts = append(posts, *FromPost(p, false))
	}
	return &SearchResponse{
		Posts:    posts,
		Total:    r.Total,
		Sort:     string(r.Query.Sort),
		Category: r.Query.Category,
		Tags:     r.Query.Tags,
		Query:    r.Query.Text,
	}
}

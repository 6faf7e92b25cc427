package models

import (
	"sort"
	"strings"

	dErrors "civicfund/pkg/domain-errors"
	pstrings "civicfund/pkg/platform/strings"
)

type Sort string

const (
	SortNewest  Sort = "newest"
	SortOldest  Sort = "oldest"
	SortPopular Sort = "popular"
	SortTitle   Sort = "title"
)

// CategoryAll is the category value that disables category filtering.
const CategoryAll = "all"

var Sorts = []Sort{SortNewest, SortOldest, SortPopular, SortTitle}

// ParseSort maps a query value to a sort order. Empty selects newest.
func ParseSort(raw string) (Sort, error) {
	s := Sort(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return SortNewest, nil
	}
	for _, known := range Sorts {
		if s == known {
			return s, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown sort: "+raw)
}

// Query is a blog search. Zero values match every post.
type Query struct {
	Text     string
	Category string
	Tags     []string
	Sort     Sort
	Limit    int
}

// Normalize trims the text, lowercases the category and dedupes the tags.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)
	if strings.EqualFold(q.Category, CategoryAll) {
		q.Category = ""
	}
	q.Tags = pstrings.DedupeAndTrimLower(q.Tags)
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	return q
}

// Matches applies the text, category and tag conditions to one post.
func (q Query) Matches(p *Post) bool {
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if !pstrings.IntersectsFold(p.Tags, q.Tags) {
		return false
	}
	if q.Text == "" {
		return true
	}
	if pstrings.ContainsFold(p.Title, q.Text) || pstrings.ContainsFold(p.Excerpt, q.Text) || pstrings.ContainsFold(p.Author, q.Text) {
		return true
	}
	for _, tag := range p.Tags {
		if pstrings.ContainsFold(tag, q.Text) {
			return true
		}
	}
	return false
}

// Apply filters posts in one pass and sorts the result. The input slice is
// not modified.
func Apply(posts []*Post, q Query) []*Post {
	q = q.Normalize()
	result := make([]*Post, 0, len(posts))
	for _, p := range posts {
		if q.Matches(p) {
			result = append(result, p)
		}
	}
	SortPosts(result, q.Sort)
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result
}

// SortPosts orders posts in place. Ties break on ID.
func SortPosts(posts []*Post, order Sort) {
	less := lessFor(order)
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID.String() < b.ID.String()
	})
}

func lessFor(order Sort) func(a, b *Post) bool {
	switch order {
	case SortOldest:
		return func(a, b *Post) bool { return a.PublishedAt.Before(b.PublishedAt) }
	case SortPopular:
		return func(a, b *Post) bool {
			if a.Views != b.Views {
				return a.Views > b.Views
			}
			return a.PublishedAt.After(b.PublishedAt)
		}
	case SortTitle:
		return func(a, b *Post) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return func(a, b *Post) bool { return a.PublishedAt.After(b.PublishedAt) }
	}
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories counts posts per category, ordered by name. Categories that
// differ only in case are merged under the first spelling seen.
func Categories(posts []*Post) []CategoryCount {
	index := make(map[string]int)
	var out []CategoryCount
	for _, p := range posts {
		if p.Category == "" {
			continue
		}
		key := strings.ToLower(p.Category)
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, CategoryCount{Name: p.Category, Count: 1})
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

// Tags returns the distinct tags across posts, sorted.
func Tags(posts []*Post) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

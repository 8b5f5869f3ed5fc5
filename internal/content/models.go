// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package content

// Author writes posts.
type Author struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Picture string  `json:"picture" yaml:"picture"`
	Bio     *string `json:"bio,omitempty" yaml:"bio,omitempty"`
}

// OgImage is the social preview image of a post.
type OgImage struct {
	URL string `json:"url" yaml:"url"`
}

// Post is a blog post. Content holds rendered HTML and RawContent the
// markdown it was rendered from.
type Post struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	RawContent string   `json:"rawContent"`
	Date       string   `json:"date"`
	Excerpt    string   `json:"excerpt"`
	Author     Author   `json:"author"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	OgImage    OgImage  `json:"ogImage"`
}

// PostPage is one page of posts.
type PostPage struct {
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalPages int    `json:"total_pages"`
}

// Query selects a page of posts, optionally restricted to one tag.
type Query struct {
	Page    int    `json:"page" validate:"omitempty,min=1"`
	PerPage int    `json:"per_page" validate:"omitempty,min=1,max=100"`
	Tag     string `json:"tag" validate:"omitempty,max=64"`
}

// DefaultPerPage applies when a query leaves PerPage unset.
const DefaultPerPage = 10

// Normalize fills zero fields with defaults.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	return q
}
